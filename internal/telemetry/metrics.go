// Package telemetry exposes poll metrics for Prometheus and installs the
// OpenTelemetry tracer used by the stats fetcher.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "drishti"

// Poll outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Discard reasons.
const (
	DiscardInactive = "inactive"
	DiscardStale    = "stale"
)

// Metrics holds the dashboard's collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	Polls             *prometheus.CounterVec
	PollFailures      *prometheus.CounterVec
	DiscardedResults  *prometheus.CounterVec
	FetchDuration     prometheus.Histogram
	LastTotalAnalyzed prometheus.Gauge
	LastHighRiskPct   prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Polls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "polls_total",
				Help:      "Total number of completed stats polls",
			},
			[]string{"outcome"},
		),
		PollFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "poll_failures_total",
				Help:      "Total number of failed stats polls by error kind",
			},
			[]string{"kind"},
		),
		DiscardedResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "discarded_results_total",
				Help:      "Poll results dropped before delivery",
			},
			[]string{"reason"},
		),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of stats fetches, retries included",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2, 4, 8},
		}),
		LastTotalAnalyzed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_total_analyzed",
			Help:      "Total analyzed content in the last delivered snapshot",
		}),
		LastHighRiskPct: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_high_risk_percent",
			Help:      "High-risk percentage in the last delivered snapshot",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.Polls,
			m.PollFailures,
			m.DiscardedResults,
			m.FetchDuration,
			m.LastTotalAnalyzed,
			m.LastHighRiskPct,
		)
	}
	return m
}

// ObservePoll records one finished fetch. kind is the error code for failures
// and ignored on success.
func (m *Metrics) ObservePoll(d time.Duration, err error, kind string) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
	if err == nil {
		m.Polls.WithLabelValues(OutcomeSuccess).Inc()
		return
	}
	m.Polls.WithLabelValues(OutcomeFailure).Inc()
	if kind == "" {
		kind = "unknown"
	}
	m.PollFailures.WithLabelValues(kind).Inc()
}

// Discarded records a result that was dropped instead of delivered.
func (m *Metrics) Discarded(reason string) {
	if m == nil {
		return
	}
	m.DiscardedResults.WithLabelValues(reason).Inc()
}

// SetLastTotal updates the total-analyzed gauge.
func (m *Metrics) SetLastTotal(totalAnalyzed int64) {
	if m == nil {
		return
	}
	m.LastTotalAnalyzed.Set(float64(totalAnalyzed))
}

// SetLastHighRiskPercent updates the high-risk percentage gauge. Callers skip
// it for snapshots whose counts contradict each other, so the gauge keeps the
// last consistent reading.
func (m *Metrics) SetLastHighRiskPercent(pct float64) {
	if m == nil {
		return
	}
	m.LastHighRiskPct.Set(pct)
}
