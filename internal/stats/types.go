// Package stats defines the aggregate statistics snapshot served by the
// moderation platform and the HTTP client that fetches it.
package stats

import (
	"strings"
	"time"
)

// RiskTier is the coarse risk level the backend assigns to a region.
type RiskTier string

const (
	RiskLow     RiskTier = "LOW"
	RiskMedium  RiskTier = "MEDIUM"
	RiskHigh    RiskTier = "HIGH"
	RiskUnknown RiskTier = "UNKNOWN"
)

// ParseRiskTier maps the wire spelling ("low", "Medium", "HIGH") to a tier.
// Anything else is RiskUnknown.
func ParseRiskTier(s string) RiskTier {
	switch RiskTier(strings.ToUpper(strings.TrimSpace(s))) {
	case RiskLow:
		return RiskLow
	case RiskMedium:
		return RiskMedium
	case RiskHigh:
		return RiskHigh
	default:
		return RiskUnknown
	}
}

// Entry is one key/count pair of a breakdown.
type Entry struct {
	Key   string
	Count int64
}

// Breakdown is a keyed set of counts that keeps the order the keys arrived in.
type Breakdown struct {
	// Present is false when the section was missing from the payload or could
	// not be decoded. A present breakdown with no entries means zero activity.
	Present bool
	Entries []Entry
}

// Len returns the number of entries.
func (b Breakdown) Len() int { return len(b.Entries) }

// Get returns the count for key and whether it exists.
func (b Breakdown) Get(key string) (int64, bool) {
	for _, e := range b.Entries {
		if e.Key == key {
			return e.Count, true
		}
	}
	return 0, false
}

// Region is one row of the regional breakdown.
type Region struct {
	Name  string
	Count int64
	Tier  RiskTier
}

// Counters is the headline block. Present is false when the block was missing
// or malformed.
type Counters struct {
	Present          bool
	TotalAnalyzed    int64
	HighRiskCount    int64
	ReportsGenerated int64
	FalsePositives   int64
}

// Snapshot is one fetched copy of the aggregate statistics. It is never
// modified after decoding; each poll produces a new value.
type Snapshot struct {
	Counters   Counters
	Categories Breakdown
	Languages  Breakdown
	// RegionsPresent is false when the regions array was missing or malformed.
	RegionsPresent bool
	Regions        []Region
	// CapturedAt is zero when the payload carried no usable timestamp.
	CapturedAt time.Time
	// Issues lists the fields dropped while decoding. Each is a MALFORMED error.
	Issues []error
}

// Partial reports whether any field was dropped while decoding.
func (s *Snapshot) Partial() bool {
	return s != nil && len(s.Issues) > 0
}

// IsZeroActivity reports whether the snapshot is valid and every count is zero.
// Used to tell "zero activity" apart from "no data yet".
func (s *Snapshot) IsZeroActivity() bool {
	if s == nil || !s.Counters.Present {
		return false
	}
	c := s.Counters
	if c.TotalAnalyzed != 0 || c.HighRiskCount != 0 || c.ReportsGenerated != 0 || c.FalsePositives != 0 {
		return false
	}
	for _, e := range s.Categories.Entries {
		if e.Count != 0 {
			return false
		}
	}
	for _, e := range s.Languages.Entries {
		if e.Count != 0 {
			return false
		}
	}
	for _, r := range s.Regions {
		if r.Count != 0 {
			return false
		}
	}
	return true
}
