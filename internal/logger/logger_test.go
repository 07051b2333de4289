package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		expectDebug bool
		expectInfo  bool
	}{
		{name: "debug level logs everything", level: "debug", expectDebug: true, expectInfo: true},
		{name: "info level hides debug", level: "info", expectDebug: false, expectInfo: true},
		{name: "warn level hides info", level: "warn", expectDebug: false, expectInfo: false},
		{name: "unknown level falls back to info", level: "chatty", expectDebug: false, expectInfo: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Unsetenv("DRISHTI_DEBUG")
			var buf bytes.Buffer
			l := New(&buf, "test", tt.level)

			l.Debug("debug %s", "msg")
			l.Info("info %s", "msg")

			assert.Equal(t, tt.expectDebug, bytes.Contains(buf.Bytes(), []byte("debug msg")))
			assert.Equal(t, tt.expectInfo, bytes.Contains(buf.Bytes(), []byte("info msg")))
		})
	}
}

func TestNew_DebugEnvOverridesLevel(t *testing.T) {
	t.Setenv("DRISHTI_DEBUG", "1")
	var buf bytes.Buffer
	l := New(&buf, "poller", "error")

	l.Debug("tick %d", 3)
	assert.Contains(t, buf.String(), "tick 3")
	assert.Contains(t, buf.String(), "poller")
}

func TestNew_WarnAndError(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "", "info")

	l.Warn("slow response: %dms", 4200)
	l.Error("fetch failed: %s", "EOF")

	assert.Contains(t, buf.String(), "slow response: 4200ms")
	assert.Contains(t, buf.String(), "fetch failed: EOF")
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drishti.log")

	l, closer, err := NewFileLogger(path, "dashboard", "info")
	require.NoError(t, err)
	l.Info("started against %s", "http://localhost:8001")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "started against http://localhost:8001")
}

func TestNewFileLogger_BadPath(t *testing.T) {
	_, _, err := NewFileLogger(filepath.Join(t.TempDir(), "missing", "x.log"), "", "info")
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	l := Noop()
	assert.NotPanics(t, func() {
		l.Debug("x")
		l.Info("x")
		l.Warn("x")
		l.Error("x")
	})
}

func TestBufferLogger(t *testing.T) {
	l := NewBufferLogger()

	l.Debug("debug %d", 1)
	l.Info("info %d", 2)
	l.Warn("warn %d", 3)
	l.Error("error %d", 4)

	msgs := l.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, LogMessage{Level: "debug", Message: "debug 1"}, msgs[0])
	assert.Equal(t, LogMessage{Level: "error", Message: "error 4"}, msgs[3])
	assert.True(t, l.HasLevel("warn"))

	l.Clear()
	assert.Empty(t, l.Messages())
	assert.False(t, l.HasLevel("warn"))
}

func TestBufferLogger_Concurrent(t *testing.T) {
	l := NewBufferLogger()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Info("poll %d", i)
		}(i)
	}
	wg.Wait()

	assert.Len(t, l.Messages(), 50)
}

func TestDefaultAndSetDefault(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	buf := NewBufferLogger()
	SetDefault(buf)
	Default().Info("hello")

	assert.True(t, buf.HasLevel("info"))
}
