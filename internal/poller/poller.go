// Package poller drives periodic stats fetches for one dashboard activation.
//
// A Controller fetches once immediately on Start and then once per interval,
// whether or not the previous fetch has finished. Each fetch runs in its own
// goroutine with a context derived from the controller's; Stop cancels that
// context. Results reach the callbacks one at a time, in poll order, and
// never after Stop has returned.
package poller

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/errors"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/logger"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/projector"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/stats"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/telemetry"
)

// DefaultInterval is the refresh period when Options.Interval is unset.
const DefaultInterval = 5 * time.Second

var (
	// ErrAlreadyStarted is returned by a second Start call.
	ErrAlreadyStarted = stderrors.New("poller: controller already started")
	// ErrStopped is returned by Start after Stop. Controllers are single-use.
	ErrStopped = stderrors.New("poller: controller stopped")
)

// FetchFunc performs one poll. It should honour ctx cancellation, but the
// controller does not rely on it.
type FetchFunc func(ctx context.Context) (*stats.Snapshot, error)

// SnapshotFunc receives each delivered snapshot.
type SnapshotFunc func(seq uint64, snap *stats.Snapshot)

// ErrorFunc receives each delivered fetch failure.
type ErrorFunc func(seq uint64, err error)

// Options configures a Controller.
type Options struct {
	Interval time.Duration
	Logger   logger.Logger
	// Metrics may be nil.
	Metrics *telemetry.Metrics
}

type state int

const (
	stateIdle state = iota
	stateRunning
	stateStopped
)

// Controller owns the polling loop for one dashboard activation.
type Controller struct {
	id       string
	fetch    FetchFunc
	interval time.Duration
	log      logger.Logger
	metrics  *telemetry.Metrics
	tracer   trace.Tracer

	mu        sync.Mutex // guards the fields below
	state     state
	ctx       context.Context
	cancel    context.CancelFunc
	issued    uint64
	delivered uint64

	onSnapshot SnapshotFunc
	onError    ErrorFunc

	// deliverMu serializes callbacks and lets Stop wait out one in progress.
	deliverMu sync.Mutex
	wg        sync.WaitGroup
}

// New creates an idle controller.
func New(fetch FetchFunc, opts Options) *Controller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}
	return &Controller{
		id:       uuid.NewString(),
		fetch:    fetch,
		interval: opts.Interval,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		tracer:   otel.Tracer("github.com/AbhishekGiri04/SATYA-DRISHTI/internal/poller"),
	}
}

// ID identifies this controller instance in logs.
func (c *Controller) ID() string {
	return c.id
}

// Interval returns the refresh period.
func (c *Controller) Interval() time.Duration {
	return c.interval
}

// Running reports whether Start has been called and Stop has not.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateRunning
}

// Start issues the first fetch immediately and schedules the rest. Either
// callback may be nil. Callbacks must not call Stop.
func (c *Controller) Start(ctx context.Context, onSnapshot SnapshotFunc, onError ErrorFunc) error {
	c.mu.Lock()
	switch c.state {
	case stateRunning:
		c.mu.Unlock()
		return ErrAlreadyStarted
	case stateStopped:
		c.mu.Unlock()
		return ErrStopped
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.onSnapshot = onSnapshot
	c.onError = onError
	c.state = stateRunning
	c.launchLocked()
	c.mu.Unlock()

	c.log.Debug("controller %s started, interval %s", c.id, c.interval)

	c.wg.Add(1)
	go c.loop()
	return nil
}

// Refresh issues one extra fetch outside the schedule. It reports false when
// the controller is not running. The result follows the normal delivery rules.
func (c *Controller) Refresh() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateRunning {
		return false
	}
	c.launchLocked()
	return true
}

// Stop cancels the schedule and any in-flight fetch. When Stop returns no
// callback is running and none will run again. Stop is idempotent and does
// not wait for fetch goroutines to exit; use Wait for that.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.state == stateStopped {
		c.mu.Unlock()
		return
	}
	wasRunning := c.state == stateRunning
	c.state = stateStopped
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()

	// A delivery that passed the state check before the flip finishes first.
	c.deliverMu.Lock()
	c.deliverMu.Unlock() //nolint:staticcheck // Empty critical section waits out the callback

	if wasRunning {
		c.log.Debug("controller %s stopped", c.id)
	}
}

// Wait blocks until the loop and every fetch goroutine have returned.
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) loop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.state == stateRunning {
				c.launchLocked()
			}
			c.mu.Unlock()
		}
	}
}

// launchLocked starts one fetch goroutine. c.mu must be held.
func (c *Controller) launchLocked() {
	c.issued++
	seq := c.issued
	ctx := c.ctx

	c.wg.Add(1)
	go c.poll(ctx, seq)
}

func (c *Controller) poll(parent context.Context, seq uint64) {
	defer c.wg.Done()

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "poll",
		trace.WithAttributes(
			attribute.String("controller.id", c.id),
			attribute.Int64("poll.seq", int64(seq)),
		))
	defer span.End()

	start := time.Now()
	snap, err := c.fetch(ctx)
	if err == nil && snap == nil {
		err = errors.New(errors.ErrMalformed, "Stats endpoint returned no snapshot", "")
	}
	elapsed := time.Since(start)

	c.metrics.ObservePoll(elapsed, err, errors.CodeOf(err))
	if err != nil {
		span.RecordError(err)
	}

	c.deliver(seq, snap, err, elapsed)
}

func (c *Controller) deliver(seq uint64, snap *stats.Snapshot, err error, elapsed time.Duration) {
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()

	c.mu.Lock()
	if c.state != stateRunning {
		c.mu.Unlock()
		c.metrics.Discarded(telemetry.DiscardInactive)
		c.log.Debug("controller %s: discarding poll %d, controller inactive", c.id, seq)
		return
	}
	if seq <= c.delivered {
		latest := c.delivered
		c.mu.Unlock()
		c.metrics.Discarded(telemetry.DiscardStale)
		c.log.Debug("controller %s: discarding poll %d, poll %d already delivered", c.id, seq, latest)
		return
	}
	c.delivered = seq
	onSnapshot, onError := c.onSnapshot, c.onError
	c.mu.Unlock()

	if err != nil {
		c.log.Warn("poll %d failed after %s: %s", seq, elapsed.Round(time.Millisecond), errors.ShortMessage(err))
		if onError != nil {
			onError(seq, err)
		}
		return
	}

	if counters := snap.Counters; counters.Present {
		c.metrics.SetLastTotal(counters.TotalAnalyzed)
		if counters.HighRiskCount <= counters.TotalAnalyzed {
			c.metrics.SetLastHighRiskPercent(projector.Percent(counters.HighRiskCount, counters.TotalAnalyzed))
		}
	}
	for _, issue := range snap.Issues {
		c.log.Warn("poll %d: %s", seq, errors.ShortMessage(issue))
	}
	c.log.Debug("poll %d delivered after %s", seq, elapsed.Round(time.Millisecond))
	if onSnapshot != nil {
		onSnapshot(seq, snap)
	}
}
