// Package fixture serves canned statistics payloads shaped like the
// governance API, for demos and for exercising the dashboard without a
// running backend.
package fixture

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/stats"
)

// Scenario selects what the fixture endpoint returns.
type Scenario string

const (
	// ScenarioDemo returns realistic numbers that grow on every request.
	ScenarioDemo Scenario = "demo"
	// ScenarioEmpty returns the backend's no-database response: all zeros.
	ScenarioEmpty Scenario = "empty"
	// ScenarioFlaky behaves like demo but fails every third request with 503.
	ScenarioFlaky Scenario = "flaky"
	// ScenarioInconsistent reports more high-risk items than analyzed items.
	ScenarioInconsistent Scenario = "inconsistent"
	// ScenarioMalformed returns a body that is not JSON.
	ScenarioMalformed Scenario = "malformed"
)

// Scenarios lists every known scenario, in help-text order.
var Scenarios = []Scenario{ScenarioDemo, ScenarioEmpty, ScenarioFlaky, ScenarioInconsistent, ScenarioMalformed}

// ParseScenario validates a scenario name.
func ParseScenario(s string) (Scenario, error) {
	for _, sc := range Scenarios {
		if string(sc) == strings.ToLower(strings.TrimSpace(s)) {
			return sc, nil
		}
	}
	return "", fmt.Errorf("unknown scenario %q", s)
}

// Server holds per-scenario request counters.
type Server struct {
	mu       sync.Mutex
	scenario Scenario
	requests int
	latency  time.Duration
	now      func() time.Time
}

// NewServer creates a fixture server. latency delays every stats response.
func NewServer(scenario Scenario, latency time.Duration) *Server {
	return &Server{
		scenario: scenario,
		latency:  latency,
		now:      time.Now,
	}
}

// Requests returns how many stats requests have been served.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// Router returns the HTTP handler. statsPath defaults to the governance route.
func (s *Server) Router(statsPath string) http.Handler {
	if statsPath == "" {
		statsPath = stats.DefaultStatsPath
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/"+strings.TrimLeft(statsPath, "/"), s.handleStats)

	return r
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests++
	n := s.requests
	s.mu.Unlock()

	if s.latency > 0 {
		select {
		case <-time.After(s.latency):
		case <-r.Context().Done():
			return
		}
	}

	switch s.scenario {
	case ScenarioMalformed:
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>502 Bad Gateway</html>"))
		return
	case ScenarioFlaky:
		if n%3 == 0 {
			http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
			return
		}
	}

	body, err := json.Marshal(s.payload(n))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func (s *Server) payload(n int) Payload {
	ts := s.now().UTC().Format("2006-01-02T15:04:05.000000")

	switch s.scenario {
	case ScenarioEmpty:
		return Payload{
			DailyAnalysis: DailyAnalysis{},
			Categories:    OrderedCounts{},
			Languages:     OrderedCounts{},
			Timestamp:     ts,
		}
	case ScenarioInconsistent:
		p := demoPayload(n, ts)
		p.DailyAnalysis.HighRiskDetected = p.DailyAnalysis.TotalContentAnalyzed + 10
		return p
	default:
		return demoPayload(n, ts)
	}
}

// demoPayload mirrors the numbers the original front-end hardcoded, nudged
// upward on each request so the dashboard visibly moves.
func demoPayload(n int, ts string) Payload {
	grow := func(base int64, rate int64) int64 { return base + int64(n)*rate }

	total := grow(124567, 37)
	return Payload{
		DailyAnalysis: DailyAnalysis{
			TotalContentAnalyzed: total,
			HighRiskDetected:     grow(2847, 1),
			ReportsGenerated:     grow(847, 1),
			FalsePositives:       12,
		},
		Categories: OrderedCounts{
			{Key: "hate_speech", Count: grow(847, 1)},
			{Key: "misinformation", Count: 742},
			{Key: "nsfw_content", Count: grow(662, 1)},
			{Key: "violence", Count: 397},
		},
		Languages: OrderedCounts{
			{Key: "hi", Count: total * 45 / 100},
			{Key: "en", Count: total * 35 / 100},
			{Key: "bn", Count: total * 8 / 100},
			{Key: "ta", Count: total * 6 / 100},
			{Key: "others", Count: total * 6 / 100},
		},
		Regions: []RegionPayload{
			{State: "Maharashtra", Count: grow(456, 1), Risk: "medium"},
			{State: "Delhi", Count: 389, Risk: "high"},
			{State: "Karnataka", Count: 312, Risk: "medium"},
			{State: "Tamil Nadu", Count: 267, Risk: "low"},
		},
		Timestamp: ts,
	}
}

// Payload is the wire shape of the governance stats response.
type Payload struct {
	DailyAnalysis DailyAnalysis   `json:"daily_analysis"`
	Categories    OrderedCounts   `json:"threat_categories"`
	Languages     OrderedCounts   `json:"language_distribution"`
	Regions       []RegionPayload `json:"regions,omitempty"`
	Timestamp     string          `json:"timestamp"`
}

// DailyAnalysis is the headline counter block.
type DailyAnalysis struct {
	TotalContentAnalyzed int64 `json:"total_content_analyzed"`
	HighRiskDetected     int64 `json:"high_risk_detected"`
	ReportsGenerated     int64 `json:"reports_generated"`
	FalsePositives       int64 `json:"false_positives"`
}

// RegionPayload is one regional row.
type RegionPayload struct {
	State string `json:"state"`
	Count int64  `json:"count"`
	Risk  string `json:"risk"`
}

// OrderedCounts marshals as a JSON object whose keys keep slice order.
type OrderedCounts []stats.Entry

// MarshalJSON implements json.Marshaler.
func (o OrderedCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", e.Count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
