package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/config"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/errors"
)

const sampleConfig = `# team dashboard
version: 1
api:
  url: http://localhost:8001
poll:
  interval: 5s
`

func writeSampleConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0644))
	return path
}

func TestSetConfigValue(t *testing.T) {
	isolateEnv(t)
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
		check   func(t *testing.T, cfg *config.Config)
	}{
		{
			name:  "interval",
			key:   "poll.interval",
			value: "10s",
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, 10*time.Second, cfg.Poll.Interval)
			},
		},
		{
			name:  "new section",
			key:   "scales.regions",
			value: "share",
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "share", cfg.Scales.Regions)
			},
		},
		{
			name:  "url",
			key:   "api.url",
			value: "http://api.test:9000",
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "http://api.test:9000", cfg.API.URL)
			},
		},
		{name: "unknown key", key: "poll.speed", value: "fast", wantErr: true},
		{name: "interval too short", key: "poll.interval", value: "100ms", wantErr: true},
		{name: "bad scale", key: "scales.languages", value: "log", wantErr: true},
		{name: "bad url", key: "api.url", value: "not a url", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSampleConfig(t)

			err := setConfigValue(path, tt.key, tt.value)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))

				data, readErr := os.ReadFile(path)
				require.NoError(t, readErr)
				assert.Equal(t, sampleConfig, string(data), "file restored")
				return
			}
			require.NoError(t, err)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Contains(t, string(data), "# team dashboard", "comments kept")

			cfg, err := config.Load(path)
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestSetConfigValue_SuggestsKey(t *testing.T) {
	isolateEnv(t)
	path := writeSampleConfig(t)

	err := setConfigValue(path, "poll.intervl", "2s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Did you mean 'poll.interval'?")
}

func TestShowConfig(t *testing.T) {
	isolateEnv(t)
	path := writeSampleConfig(t)

	var buf bytes.Buffer
	require.NoError(t, showConfig(&buf, path))

	out := buf.String()
	assert.Contains(t, out, "# "+path)
	assert.Contains(t, out, "url: http://localhost:8001")
	assert.Contains(t, out, "interval: 5s")
	assert.Contains(t, out, "categories: share", "defaults filled in")
}

func TestKeyHelp(t *testing.T) {
	help := keyHelp()
	for key := range settableKeys {
		assert.Contains(t, help, key)
	}
}

func TestConfigCommand_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range configCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"show", "path", "set"} {
		assert.True(t, names[want], "missing config %s", want)
	}
}
