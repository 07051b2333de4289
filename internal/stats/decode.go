package stats

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/errors"
)

// Wire field names used by the governance stats endpoint.
const (
	fieldCounters   = "daily_analysis"
	fieldCategories = "threat_categories"
	fieldLanguages  = "language_distribution"
	fieldRegions    = "regions"
	fieldTimestamp  = "timestamp"
)

// timestampLayouts are tried in order. The backend emits Python's naive
// isoformat(), which has no zone and is UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

type wireCounters struct {
	TotalAnalyzed    *int64 `json:"total_content_analyzed"`
	HighRisk         *int64 `json:"high_risk_detected"`
	ReportsGenerated *int64 `json:"reports_generated"`
	FalsePositives   *int64 `json:"false_positives"`
}

type wireRegion struct {
	State string `json:"state"`
	Name  string `json:"name"`
	Count *int64 `json:"count"`
	Risk  string `json:"risk"`
}

// Decode parses a stats payload. A body that is not a JSON object fails the
// whole snapshot with a MALFORMED error. A section with the wrong shape is
// dropped (marked absent) and recorded in Snapshot.Issues; the remaining
// sections are kept.
func Decode(body []byte) (*Snapshot, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.New(errors.ErrMalformed,
			"Stats response is not a JSON object",
			"Check that the API URL points at the statistics endpoint")
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &top); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrMalformed,
			"Stats response is not valid JSON",
			"Check that the API URL points at the statistics endpoint")
	}

	snap := &Snapshot{}

	if raw, ok := present(top, fieldCounters); ok {
		c, err := decodeCounters(raw)
		if err != nil {
			snap.Issues = append(snap.Issues, sectionIssue(fieldCounters, err))
		} else {
			snap.Counters = c
		}
	}

	if raw, ok := present(top, fieldCategories); ok {
		b, err := decodeBreakdown(raw)
		if err != nil {
			snap.Issues = append(snap.Issues, sectionIssue(fieldCategories, err))
		} else {
			snap.Categories = b
		}
	}

	if raw, ok := present(top, fieldLanguages); ok {
		b, err := decodeBreakdown(raw)
		if err != nil {
			snap.Issues = append(snap.Issues, sectionIssue(fieldLanguages, err))
		} else {
			snap.Languages = b
		}
	}

	if raw, ok := present(top, fieldRegions); ok {
		regions, err := decodeRegions(raw)
		if err != nil {
			snap.Issues = append(snap.Issues, sectionIssue(fieldRegions, err))
		} else {
			snap.Regions = regions
			snap.RegionsPresent = true
		}
	}

	if raw, ok := present(top, fieldTimestamp); ok {
		ts, err := decodeTimestamp(raw)
		if err != nil {
			snap.Issues = append(snap.Issues, sectionIssue(fieldTimestamp, err))
		} else {
			snap.CapturedAt = ts
		}
	}

	return snap, nil
}

// present returns the raw value for key unless it is missing or JSON null.
func present(top map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	raw, ok := top[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}
	return raw, true
}

func sectionIssue(field string, err error) error {
	return errors.WrapWithCode(err, errors.ErrMalformed,
		fmt.Sprintf("Dropped malformed %q section", field), "")
}

func decodeCounters(raw json.RawMessage) (Counters, error) {
	var w wireCounters
	if err := json.Unmarshal(raw, &w); err != nil {
		return Counters{}, err
	}
	if w.TotalAnalyzed == nil || w.HighRisk == nil {
		return Counters{}, fmt.Errorf("total_content_analyzed and high_risk_detected are required")
	}

	c := Counters{
		Present:       true,
		TotalAnalyzed: *w.TotalAnalyzed,
		HighRiskCount: *w.HighRisk,
	}
	if w.ReportsGenerated != nil {
		c.ReportsGenerated = *w.ReportsGenerated
	}
	if w.FalsePositives != nil {
		c.FalsePositives = *w.FalsePositives
	}

	for name, v := range map[string]int64{
		"total_content_analyzed": c.TotalAnalyzed,
		"high_risk_detected":     c.HighRiskCount,
		"reports_generated":      c.ReportsGenerated,
		"false_positives":        c.FalsePositives,
	} {
		if v < 0 {
			return Counters{}, fmt.Errorf("%s is negative (%d)", name, v)
		}
	}
	return c, nil
}

// decodeBreakdown walks a JSON object token by token so the key order of the
// payload survives. Values must be non-negative integers.
func decodeBreakdown(raw json.RawMessage) (Breakdown, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return Breakdown{}, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return Breakdown{}, fmt.Errorf("expected an object, got %v", tok)
	}

	b := Breakdown{Present: true}
	index := make(map[string]int)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Breakdown{}, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return Breakdown{}, fmt.Errorf("expected a key, got %v", keyTok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return Breakdown{}, err
		}
		count, err := strconv.ParseInt(strings.TrimSpace(string(value)), 10, 64)
		if err != nil {
			return Breakdown{}, fmt.Errorf("count for %q is not an integer: %s", key, value)
		}
		if count < 0 {
			return Breakdown{}, fmt.Errorf("count for %q is negative (%d)", key, count)
		}

		// Duplicate keys keep their first position and the last value.
		if i, seen := index[key]; seen {
			b.Entries[i].Count = count
			continue
		}
		index[key] = len(b.Entries)
		b.Entries = append(b.Entries, Entry{Key: key, Count: count})
	}

	if _, err := dec.Token(); err != nil {
		return Breakdown{}, err
	}
	if b.Entries == nil {
		b.Entries = []Entry{}
	}
	return b, nil
}

func decodeRegions(raw json.RawMessage) ([]Region, error) {
	var wire []wireRegion
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, err
	}

	regions := make([]Region, 0, len(wire))
	for i, w := range wire {
		name := w.State
		if name == "" {
			name = w.Name
		}
		if name == "" {
			return nil, fmt.Errorf("region %d has no name", i)
		}
		if w.Count == nil {
			return nil, fmt.Errorf("region %q has no count", name)
		}
		if *w.Count < 0 {
			return nil, fmt.Errorf("region %q count is negative (%d)", name, *w.Count)
		}
		regions = append(regions, Region{
			Name:  name,
			Count: *w.Count,
			Tier:  ParseRiskTier(w.Risk),
		})
	}
	return regions, nil
}

func decodeTimestamp(raw json.RawMessage) (time.Time, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, err
	}
	return ParseTimestamp(s)
}

// ParseTimestamp parses the backend's capture time. Zone-less values are UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
