// Package projector derives bounded, renderable quantities from a stats
// snapshot. Everything here is a pure function of its inputs: projecting the
// same snapshot twice gives the same result.
package projector

import (
	"fmt"
	"math"
	"time"

	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/errors"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/stats"
)

// DerivedMetric is one renderable row.
type DerivedMetric struct {
	Key   string
	Label string
	Count int64
	// Percentage is in [0,100]. For breakdown rows it is the item's share of
	// the section; for headline metrics it is relative to TotalAnalyzed.
	Percentage float64
	// BarWidthPercent is in [0,100], sized by the section's Scale.
	BarWidthPercent float64
	// Tier is set for region rows only.
	Tier stats.RiskTier
	// Clamped is set when the raw proportion exceeded 100 and was cut down.
	Clamped bool
	// Invalid marks a metric whose inputs contradict each other. Renderers
	// show a placeholder instead of the value.
	Invalid bool
}

// Section is one projected breakdown.
type Section struct {
	// Present is false when the snapshot had no usable data for the section.
	Present bool
	Scale   Scale
	// Denominator is the value bar widths were computed against.
	Denominator int64
	Metrics     []DerivedMetric
}

// Empty reports whether the section exists but has no rows (zero activity).
func (s Section) Empty() bool {
	return s.Present && len(s.Metrics) == 0
}

// Headline holds the top-line counters.
type Headline struct {
	Present          bool
	TotalAnalyzed    int64
	ReportsGenerated int64
	FalsePositives   int64
	HighRisk         DerivedMetric
	Safe             DerivedMetric
}

// Projection is the full derived view of one snapshot.
type Projection struct {
	// HasData is false when there is no snapshot at all ("no data yet").
	HasData      bool
	ZeroActivity bool
	Headline     Headline
	Categories   Section
	Languages    Section
	Regions      Section
	CapturedAt   time.Time
	// Issues lists INCONSISTENT errors found while projecting.
	Issues []error
}

// Percent returns count/denom*100 bounded to [0,100]. A zero or negative
// denominator yields 0 rather than Inf or NaN.
func Percent(count, denom int64) float64 {
	p, _ := ratio(count, denom)
	return p
}

// ratio is Percent plus whether the raw value had to be clamped.
func ratio(count, denom int64) (float64, bool) {
	if denom <= 0 || count <= 0 {
		return 0, false
	}
	p := float64(count) / float64(denom) * 100
	if p > 100 {
		return 100, true
	}
	return p, false
}

// Project derives every display section from snap. A nil snapshot projects
// to an empty Projection with HasData false.
func Project(snap *stats.Snapshot, opts Options) Projection {
	if snap == nil {
		return Projection{}
	}
	opts = opts.withDefaults()

	p := Projection{
		HasData:      true,
		ZeroActivity: snap.IsZeroActivity(),
		CapturedAt:   snap.CapturedAt,
	}

	var issue error
	p.Headline, issue = projectHeadline(snap.Counters)
	if issue != nil {
		p.Issues = append(p.Issues, issue)
	}

	total, haveTotal := snap.Counters.TotalAnalyzed, snap.Counters.Present

	p.Categories, issue = projectBreakdown("threat categories", snap.Categories, opts.Categories, opts.FixedMax, total, haveTotal, NormalizeLabel)
	if issue != nil {
		p.Issues = append(p.Issues, issue)
	}

	p.Languages, issue = projectBreakdown("languages", snap.Languages, opts.Languages, opts.FixedMax, total, haveTotal, NormalizeCode)
	if issue != nil {
		p.Issues = append(p.Issues, issue)
	}

	p.Regions, issue = projectRegions(snap, opts.Regions, opts.FixedMax, total, haveTotal)
	if issue != nil {
		p.Issues = append(p.Issues, issue)
	}

	return p
}

func projectHeadline(c stats.Counters) (Headline, error) {
	if !c.Present {
		return Headline{}, nil
	}

	h := Headline{
		Present:          true,
		TotalAnalyzed:    c.TotalAnalyzed,
		ReportsGenerated: c.ReportsGenerated,
		FalsePositives:   c.FalsePositives,
		HighRisk:         DerivedMetric{Key: "high_risk", Label: "High risk", Count: c.HighRiskCount},
		Safe:             DerivedMetric{Key: "safe", Label: "Safe content", Count: c.TotalAnalyzed - c.HighRiskCount},
	}

	if c.HighRiskCount > c.TotalAnalyzed {
		h.HighRisk.Invalid = true
		h.Safe.Invalid = true
		h.Safe.Count = 0
		return h, errors.New(errors.ErrInconsistent,
			fmt.Sprintf("High-risk count %d exceeds total analyzed %d", c.HighRiskCount, c.TotalAnalyzed),
			"Headline percentages are hidden until the backend reports consistent counts")
	}

	h.HighRisk.Percentage = Percent(c.HighRiskCount, c.TotalAnalyzed)
	h.HighRisk.BarWidthPercent = h.HighRisk.Percentage
	if c.TotalAnalyzed > 0 {
		h.Safe.Percentage = 100 - h.HighRisk.Percentage
		h.Safe.BarWidthPercent = h.Safe.Percentage
	}
	return h, nil
}

type labelFunc func(string) string

func projectBreakdown(name string, b stats.Breakdown, scale Scale, fixedMax, total int64, haveTotal bool, label labelFunc) (Section, error) {
	if !b.Present {
		return Section{Scale: scale}, nil
	}

	counts := make([]int64, len(b.Entries))
	for i, e := range b.Entries {
		counts[i] = e.Count
	}
	denom, scale := denominator(counts, scale, fixedMax, total, haveTotal)
	sum := sumOf(counts)

	sec := Section{
		Present:     true,
		Scale:       scale,
		Denominator: denom,
		Metrics:     make([]DerivedMetric, 0, len(b.Entries)),
	}

	var over []string
	for _, e := range b.Entries {
		m := DerivedMetric{
			Key:        e.Key,
			Label:      label(e.Key),
			Count:      e.Count,
			Percentage: Percent(e.Count, sum),
		}
		m.BarWidthPercent, m.Clamped = ratio(e.Count, denom)
		if scale == ScaleTotal && e.Count > total {
			m.Clamped = true
			over = append(over, e.Key)
		}
		sec.Metrics = append(sec.Metrics, m)
	}

	return sec, exceedsTotal(name, over, total)
}

func projectRegions(snap *stats.Snapshot, scale Scale, fixedMax, total int64, haveTotal bool) (Section, error) {
	if !snap.RegionsPresent {
		return Section{Scale: scale}, nil
	}

	counts := make([]int64, len(snap.Regions))
	for i, r := range snap.Regions {
		counts[i] = r.Count
	}
	denom, scale := denominator(counts, scale, fixedMax, total, haveTotal)
	sum := sumOf(counts)

	sec := Section{
		Present:     true,
		Scale:       scale,
		Denominator: denom,
		Metrics:     make([]DerivedMetric, 0, len(snap.Regions)),
	}

	var over []string
	for _, r := range snap.Regions {
		m := DerivedMetric{
			Key:        r.Name,
			Label:      NormalizeLabel(r.Name),
			Count:      r.Count,
			Percentage: Percent(r.Count, sum),
			Tier:       r.Tier,
		}
		m.BarWidthPercent, m.Clamped = ratio(r.Count, denom)
		if scale == ScaleTotal && r.Count > total {
			m.Clamped = true
			over = append(over, r.Name)
		}
		sec.Metrics = append(sec.Metrics, m)
	}

	return sec, exceedsTotal("regions", over, total)
}

// denominator picks the bar denominator for a set of counts and returns the
// scale actually applied. ScaleTotal without a reported total, and ScaleFixed
// without a positive constant, fall back to ScaleMax.
func denominator(counts []int64, scale Scale, fixedMax, total int64, haveTotal bool) (int64, Scale) {
	switch scale {
	case ScaleShare:
		return sumOf(counts), ScaleShare
	case ScaleTotal:
		if haveTotal {
			return total, ScaleTotal
		}
	case ScaleFixed:
		if fixedMax > 0 {
			return fixedMax, ScaleFixed
		}
	}
	return maxOf(counts), ScaleMax
}

func exceedsTotal(section string, keys []string, total int64) error {
	if len(keys) == 0 {
		return nil
	}
	return errors.New(errors.ErrInconsistent,
		fmt.Sprintf("%d %s entries exceed total analyzed %d (%v)", len(keys), section, total, keys),
		"Bars for those entries are clamped to 100%")
}

// sumOf saturates at math.MaxInt64. Counts are never negative.
func sumOf(counts []int64) int64 {
	var s int64
	for _, c := range counts {
		if c > math.MaxInt64-s {
			return math.MaxInt64
		}
		s += c
	}
	return s
}

func maxOf(counts []int64) int64 {
	var m int64
	for _, c := range counts {
		if c > m {
			m = c
		}
	}
	return m
}
