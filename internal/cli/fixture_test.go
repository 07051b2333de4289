package cli

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/fixture"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/logger"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/stats"
)

func TestRunFixture_ServesUntilCancelled(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	log := logger.NewBufferLogger()
	done := make(chan error, 1)
	go func() {
		done <- runFixture(ctx, ln, fixtureServeOptions{Scenario: fixture.ScenarioDemo, Logger: log})
	}()

	client, err := stats.NewClient("http://"+ln.Addr().String(), "", stats.WithTimeout(2*time.Second))
	require.NoError(t, err)

	snap, err := client.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(124604), snap.Counters.TotalAnalyzed)
	assert.Eventually(t, func() bool { return log.HasLevel("debug") }, time.Second, 10*time.Millisecond, "request logged")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("fixture server did not stop")
	}
}

func TestRunFixture_CustomPath(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = runFixture(ctx, ln, fixtureServeOptions{Scenario: fixture.ScenarioEmpty, Path: "/stats"}) }()

	client, err := stats.NewClient("http://"+ln.Addr().String(), "/stats", stats.WithTimeout(2*time.Second))
	require.NoError(t, err)

	snap, err := client.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.IsZeroActivity())
}

func TestScenarioNames(t *testing.T) {
	names := scenarioNames()
	for _, s := range fixture.Scenarios {
		assert.Contains(t, names, string(s))
	}
}
