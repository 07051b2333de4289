package poller

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/errors"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/logger"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/stats"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/telemetry"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func snapshotWithTotal(total int64) *stats.Snapshot {
	return &stats.Snapshot{Counters: stats.Counters{Present: true, TotalAnalyzed: total, HighRiskCount: total / 4}}
}

// recorder collects delivered results.
type recorder struct {
	mu        sync.Mutex
	snapshots []uint64
	totals    []int64
	errs      []error
}

func (r *recorder) onSnapshot(seq uint64, snap *stats.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, seq)
	r.totals = append(r.totals, snap.Counters.TotalAnalyzed)
}

func (r *recorder) onError(_ uint64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *recorder) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snapshots), len(r.errs)
}

func (r *recorder) seqs() []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uint64(nil), r.snapshots...)
}

func TestNew_Defaults(t *testing.T) {
	c := New(func(context.Context) (*stats.Snapshot, error) { return nil, nil }, Options{})

	assert.Equal(t, DefaultInterval, c.Interval())
	assert.False(t, c.Running())
	_, err := uuid.Parse(c.ID())
	assert.NoError(t, err)

	other := New(nil, Options{})
	assert.NotEqual(t, c.ID(), other.ID(), "each controller gets a fresh ID")
}

func TestStart_FetchesImmediately(t *testing.T) {
	var calls atomic.Int32
	c := New(func(context.Context) (*stats.Snapshot, error) {
		calls.Add(1)
		return snapshotWithTotal(100), nil
	}, Options{Interval: time.Hour})
	defer c.Stop()

	rec := &recorder{}
	require.NoError(t, c.Start(context.Background(), rec.onSnapshot, rec.onError))

	assert.Eventually(t, func() bool {
		n, _ := rec.counts()
		return n == 1
	}, waitFor, tick)
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, c.Running())
}

func TestStart_PollsOnInterval(t *testing.T) {
	var calls atomic.Int32
	c := New(func(context.Context) (*stats.Snapshot, error) {
		n := calls.Add(1)
		return snapshotWithTotal(int64(n)), nil
	}, Options{Interval: 20 * time.Millisecond})
	defer c.Stop()

	rec := &recorder{}
	require.NoError(t, c.Start(context.Background(), rec.onSnapshot, rec.onError))

	assert.Eventually(t, func() bool {
		n, _ := rec.counts()
		return n >= 3
	}, waitFor, tick)
}

func TestSlowFetchDoesNotDelayNextTick(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	defer close(release)

	c := New(func(ctx context.Context) (*stats.Snapshot, error) {
		if calls.Add(1) == 1 {
			<-release
		}
		return snapshotWithTotal(1), nil
	}, Options{Interval: 20 * time.Millisecond})
	defer c.Stop()

	require.NoError(t, c.Start(context.Background(), nil, nil))

	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, waitFor, tick,
		"ticks keep firing while the first fetch hangs")
}

func TestStop_DiscardsInFlightResult(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	// Resolves only when released, ignoring cancellation.
	c := New(func(context.Context) (*stats.Snapshot, error) {
		close(entered)
		<-release
		return snapshotWithTotal(42), nil
	}, Options{Interval: time.Hour})

	var delivered atomic.Bool
	require.NoError(t, c.Start(context.Background(),
		func(uint64, *stats.Snapshot) { delivered.Store(true) },
		func(uint64, error) { delivered.Store(true) },
	))

	<-entered
	c.Stop()
	close(release)
	c.Wait()

	assert.False(t, delivered.Load(), "no callback may run after Stop")
	assert.False(t, c.Running())
}

func TestStop_CancelsFetchContext(t *testing.T) {
	cancelled := make(chan struct{})
	c := New(func(ctx context.Context) (*stats.Snapshot, error) {
		<-ctx.Done()
		close(cancelled)
		return nil, ctx.Err()
	}, Options{Interval: time.Hour})

	rec := &recorder{}
	require.NoError(t, c.Start(context.Background(), rec.onSnapshot, rec.onError))
	c.Stop()

	select {
	case <-cancelled:
	case <-time.After(waitFor):
		t.Fatal("fetch context was not cancelled by Stop")
	}
	c.Wait()

	_, errs := rec.counts()
	assert.Zero(t, errs, "the cancellation error is not delivered")
}

func TestStop_NoCallbacksAfterReturn(t *testing.T) {
	var afterStop atomic.Bool
	var stopped atomic.Bool

	c := New(func(context.Context) (*stats.Snapshot, error) {
		return snapshotWithTotal(1), nil
	}, Options{Interval: 2 * time.Millisecond})

	require.NoError(t, c.Start(context.Background(), func(uint64, *stats.Snapshot) {
		if stopped.Load() {
			afterStop.Store(true)
		}
	}, nil))

	time.Sleep(30 * time.Millisecond)
	c.Stop()
	stopped.Store(true)

	assert.Never(t, afterStop.Load, 100*time.Millisecond, tick)
	c.Wait()
}

func TestFailureKeepsLoopRunning(t *testing.T) {
	var calls atomic.Int32
	c := New(func(context.Context) (*stats.Snapshot, error) {
		n := calls.Add(1)
		if n == 2 {
			return nil, errors.New(errors.ErrNetwork, "Can't reach the API", "")
		}
		return snapshotWithTotal(int64(n)), nil
	}, Options{Interval: 20 * time.Millisecond})
	defer c.Stop()

	rec := &recorder{}
	require.NoError(t, c.Start(context.Background(), rec.onSnapshot, rec.onError))

	assert.Eventually(t, func() bool {
		n, _ := rec.counts()
		return n >= 3
	}, waitFor, tick)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.errs, 1)
	assert.True(t, errors.IsCode(rec.errs[0], errors.ErrNetwork))
	assert.Equal(t, int64(1), rec.totals[0])
	assert.Equal(t, int64(3), rec.totals[1], "poll 2 failed, poll 3 is next")
}

func TestNilSnapshotIsMalformed(t *testing.T) {
	c := New(func(context.Context) (*stats.Snapshot, error) { return nil, nil }, Options{Interval: time.Hour})
	defer c.Stop()

	errCh := make(chan error, 1)
	require.NoError(t, c.Start(context.Background(), nil, func(_ uint64, err error) { errCh <- err }))

	select {
	case err := <-errCh:
		assert.True(t, errors.IsCode(err, errors.ErrMalformed))
	case <-time.After(waitFor):
		t.Fatal("no error delivered")
	}
}

func TestStaleResultIsDropped(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(reg)

	release := make(chan struct{})
	var calls atomic.Int32
	c := New(func(context.Context) (*stats.Snapshot, error) {
		n := calls.Add(1)
		if n == 1 {
			<-release
		}
		return snapshotWithTotal(int64(n)), nil
	}, Options{Interval: time.Hour, Metrics: metrics})
	defer c.Stop()

	rec := &recorder{}
	require.NoError(t, c.Start(context.Background(), rec.onSnapshot, rec.onError))
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, waitFor, tick)

	require.True(t, c.Refresh())
	assert.Eventually(t, func() bool {
		n, _ := rec.counts()
		return n == 1
	}, waitFor, tick)

	close(release)
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.DiscardedResults.WithLabelValues(telemetry.DiscardStale)) == 1
	}, waitFor, tick)

	assert.Equal(t, []uint64{2}, rec.seqs(), "poll 1 resolved after poll 2 and was dropped")
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Polls.WithLabelValues(telemetry.OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.LastTotalAnalyzed))
}

func TestInconsistentCountersKeepLastPercent(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(reg)

	var calls atomic.Int32
	c := New(func(context.Context) (*stats.Snapshot, error) {
		if calls.Add(1) == 1 {
			return snapshotWithTotal(400), nil
		}
		return &stats.Snapshot{Counters: stats.Counters{Present: true, TotalAnalyzed: 100, HighRiskCount: 150}}, nil
	}, Options{Interval: time.Hour, Metrics: metrics})
	defer c.Stop()

	rec := &recorder{}
	require.NoError(t, c.Start(context.Background(), rec.onSnapshot, rec.onError))
	assert.Eventually(t, func() bool {
		n, _ := rec.counts()
		return n == 1
	}, waitFor, tick)
	assert.Equal(t, 25.0, testutil.ToFloat64(metrics.LastHighRiskPct))

	require.True(t, c.Refresh())
	assert.Eventually(t, func() bool {
		n, _ := rec.counts()
		return n == 2
	}, waitFor, tick)

	assert.Equal(t, 100.0, testutil.ToFloat64(metrics.LastTotalAnalyzed))
	assert.Equal(t, 25.0, testutil.ToFloat64(metrics.LastHighRiskPct), "150 of 100 is not published as a percentage")
}

func TestInconsistentFirstSnapshotLeavesPercentUnset(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(reg)

	c := New(func(context.Context) (*stats.Snapshot, error) {
		return &stats.Snapshot{Counters: stats.Counters{Present: true, TotalAnalyzed: 100, HighRiskCount: 150}}, nil
	}, Options{Interval: time.Hour, Metrics: metrics})
	defer c.Stop()

	rec := &recorder{}
	require.NoError(t, c.Start(context.Background(), rec.onSnapshot, rec.onError))
	assert.Eventually(t, func() bool {
		n, _ := rec.counts()
		return n == 1
	}, waitFor, tick)

	assert.Equal(t, 100.0, testutil.ToFloat64(metrics.LastTotalAnalyzed))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.LastHighRiskPct))
}

func TestDeliveryIsSerialized(t *testing.T) {
	c := New(func(context.Context) (*stats.Snapshot, error) {
		return snapshotWithTotal(1), nil
	}, Options{Interval: time.Millisecond})
	defer c.Stop()

	var inCallback, overlap atomic.Int32
	var delivered atomic.Int32
	require.NoError(t, c.Start(context.Background(), func(uint64, *stats.Snapshot) {
		if inCallback.Add(1) > 1 {
			overlap.Add(1)
		}
		time.Sleep(time.Millisecond)
		inCallback.Add(-1)
		delivered.Add(1)
	}, nil))

	for i := 0; i < 20; i++ {
		c.Refresh()
	}

	assert.Eventually(t, func() bool { return delivered.Load() >= 10 }, waitFor, tick)
	assert.Zero(t, overlap.Load())
}

func TestDeliveredSequenceIsMonotonic(t *testing.T) {
	var calls atomic.Int32
	c := New(func(context.Context) (*stats.Snapshot, error) {
		n := calls.Add(1)
		// Earlier polls take longer so results arrive out of order.
		time.Sleep(time.Duration(10-n%10) * time.Millisecond)
		return snapshotWithTotal(int64(n)), nil
	}, Options{Interval: 2 * time.Millisecond})

	rec := &recorder{}
	require.NoError(t, c.Start(context.Background(), rec.onSnapshot, rec.onError))
	assert.Eventually(t, func() bool {
		n, _ := rec.counts()
		return n >= 5
	}, waitFor, tick)
	c.Stop()
	c.Wait()

	seqs := rec.seqs()
	for i := 1; i < len(seqs); i++ {
		assert.Greater(t, seqs[i], seqs[i-1])
	}
}

func TestLifecycleErrors(t *testing.T) {
	c := New(func(context.Context) (*stats.Snapshot, error) {
		return snapshotWithTotal(1), nil
	}, Options{Interval: time.Hour})

	assert.False(t, c.Refresh(), "refresh before start is a no-op")

	require.NoError(t, c.Start(context.Background(), nil, nil))
	assert.True(t, stderrors.Is(c.Start(context.Background(), nil, nil), ErrAlreadyStarted))

	c.Stop()
	c.Stop()
	assert.True(t, stderrors.Is(c.Start(context.Background(), nil, nil), ErrStopped))
	assert.False(t, c.Refresh())
	c.Wait()
}

func TestStopBeforeStart(t *testing.T) {
	c := New(func(context.Context) (*stats.Snapshot, error) { return nil, nil }, Options{})
	c.Stop()
	assert.ErrorIs(t, c.Start(context.Background(), nil, nil), ErrStopped)
}

func TestParentContextCancelStopsSchedule(t *testing.T) {
	var calls atomic.Int32
	c := New(func(context.Context) (*stats.Snapshot, error) {
		calls.Add(1)
		return snapshotWithTotal(1), nil
	}, Options{Interval: 5 * time.Millisecond})
	defer c.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, c.Start(ctx, nil, nil))
	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, waitFor, tick)

	cancel()
	time.Sleep(20 * time.Millisecond)
	after := calls.Load()
	assert.Never(t, func() bool { return calls.Load() > after }, 50*time.Millisecond, tick)
}

func TestFailuresAreLogged(t *testing.T) {
	log := logger.NewBufferLogger()
	c := New(func(context.Context) (*stats.Snapshot, error) {
		return nil, errors.New(errors.ErrNetwork, "Stats endpoint returned 503", "")
	}, Options{Interval: time.Hour, Logger: log})
	defer c.Stop()

	require.NoError(t, c.Start(context.Background(), nil, nil))
	assert.Eventually(t, func() bool { return log.HasLevel("warn") }, waitFor, tick)
}
