package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/config"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/errors"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/fixture"
)

// isolateEnv blanks the variables that would override a loaded config.
// viper treats an empty variable as unset.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DRISHTI_API_URL", "DRISHTI_INTERVAL", "DRISHTI_POLL_INTERVAL", "DRISHTI_LOG_LEVEL", "VITE_API_URL"} {
		t.Setenv(key, "")
	}
}

func TestGetInitDefaults(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want initDefaults
	}{
		{
			name: "nothing set",
			env:  map[string]string{},
			want: initDefaults{},
		},
		{
			name: "drishti vars",
			env: map[string]string{
				"DRISHTI_API_URL":         "http://api.internal:8001",
				"DRISHTI_INTERVAL":        "10s",
				"DRISHTI_NON_INTERACTIVE": "true",
			},
			want: initDefaults{URL: "http://api.internal:8001", Interval: "10s", NonInteractive: true},
		},
		{
			name: "front-end URL as fallback",
			env:  map[string]string{"VITE_API_URL": "http://vite:8001"},
			want: initDefaults{URL: "http://vite:8001"},
		},
		{
			name: "drishti URL wins over front-end URL",
			env: map[string]string{
				"DRISHTI_API_URL": "http://primary:8001",
				"VITE_API_URL":    "http://vite:8001",
			},
			want: initDefaults{URL: "http://primary:8001"},
		},
		{
			name: "CI implies non-interactive",
			env:  map[string]string{"CI": "1"},
			want: initDefaults{NonInteractive: true},
		},
		{
			name: "non-interactive falsey",
			env:  map[string]string{"DRISHTI_NON_INTERACTIVE": "no"},
			want: initDefaults{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"DRISHTI_API_URL", "DRISHTI_INTERVAL", "DRISHTI_NON_INTERACTIVE", "VITE_API_URL", "CI"} {
				t.Setenv(key, "")
				os.Unsetenv(key)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			assert.Equal(t, tt.want, getInitDefaults())
		})
	}
}

func TestBuildInitConfig(t *testing.T) {
	base := initAnswers{
		URL:        "http://localhost:8001",
		Interval:   "5s",
		Categories: "share",
		Languages:  "total",
		Regions:    "max",
	}

	tests := []struct {
		name    string
		mutate  func(a *initAnswers)
		wantErr bool
		check   func(t *testing.T, cfg *config.Config)
	}{
		{
			name: "defaults",
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, 5*time.Second, cfg.Poll.Interval)
				assert.Equal(t, "max", cfg.Scales.Regions)
			},
		},
		{
			name:   "short interval pulls the timeout down",
			mutate: func(a *initAnswers) { a.Interval = "1s" },
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, time.Second, cfg.Poll.Interval)
				assert.Equal(t, time.Second, cfg.Fetch.Timeout)
			},
		},
		{
			name:   "URL whitespace trimmed",
			mutate: func(a *initAnswers) { a.URL = "  http://api:9000 " },
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "http://api:9000", cfg.API.URL)
			},
		},
		{name: "interval below minimum", mutate: func(a *initAnswers) { a.Interval = "100ms" }, wantErr: true},
		{name: "interval garbage", mutate: func(a *initAnswers) { a.Interval = "often" }, wantErr: true},
		{name: "relative URL", mutate: func(a *initAnswers) { a.URL = "localhost:8001" }, wantErr: true},
		{name: "fixed scale without max", mutate: func(a *initAnswers) { a.Regions = "fixed" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := base
			if tt.mutate != nil {
				tt.mutate(&a)
			}
			cfg, err := buildInitConfig(a)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestValidateIntervalInput(t *testing.T) {
	assert.NoError(t, validateIntervalInput("5s"))
	assert.NoError(t, validateIntervalInput(" 500ms "))
	assert.Error(t, validateIntervalInput("499ms"))
	assert.Error(t, validateIntervalInput("soon"))
	assert.Error(t, validateIntervalInput(""))
}

func TestInit_NonInteractive(t *testing.T) {
	isolateEnv(t)
	ts := httptest.NewServer(fixture.NewServer(fixture.ScenarioDemo, 0).Router(""))
	defer ts.Close()

	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	var out bytes.Buffer
	err := Init(InitOptions{
		URL:            ts.URL,
		Interval:       "2s",
		Path:           path,
		NonInteractive: true,
		Out:            &out,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Reached "+ts.URL)
	assert.Contains(t, out.String(), "Created "+path)
	assert.Contains(t, out.String(), "drishti dashboard")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# drishti configuration")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ts.URL, cfg.API.URL)
	assert.Equal(t, 2*time.Second, cfg.Poll.Interval)
	assert.LessOrEqual(t, cfg.Fetch.Timeout, cfg.Poll.Interval)
	require.NoError(t, config.Validate(cfg))
}

func TestInit_ExistingConfig(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0644))

	err := Init(InitOptions{Path: path, NonInteractive: true, SkipProbe: true, Out: &bytes.Buffer{}})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "already exists")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "version: 1\n", string(data), "existing file untouched")
}

func TestInit_ForceOverwrites(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0644))

	err := Init(InitOptions{
		URL:            "http://api.test:8001",
		Path:           path,
		Overwrite:      true,
		NonInteractive: true,
		SkipProbe:      true,
		Out:            &bytes.Buffer{},
	})
	require.NoError(t, err)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://api.test:8001", cfg.API.URL)
}

func TestInit_ProbeFailure(t *testing.T) {
	isolateEnv(t)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	var out bytes.Buffer
	err := Init(InitOptions{
		URL:            ts.URL,
		Path:           path,
		NonInteractive: true,
		Out:            &out,
		HTTPTimeout:    time.Second,
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNetwork))
	assert.Contains(t, out.String(), "Couldn't reach "+ts.URL)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "nothing written when the probe fails")
}

func TestInit_SkipProbe(t *testing.T) {
	isolateEnv(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	err := Init(InitOptions{
		URL:            url,
		Path:           path,
		NonInteractive: true,
		SkipProbe:      true,
		Out:            &bytes.Buffer{},
	})
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "  ", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", ""))
	assert.Equal(t, "", firstNonEmpty())
}
