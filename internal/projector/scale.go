package projector

import (
	"fmt"
	"strings"
)

// Scale is the denominator convention used for bar widths in a section.
type Scale string

const (
	// ScaleShare sizes each bar by its share of the section's sum.
	ScaleShare Scale = "share"
	// ScaleMax sizes each bar relative to the largest item in the section.
	ScaleMax Scale = "max"
	// ScaleTotal sizes each bar relative to the snapshot's analyzed total.
	ScaleTotal Scale = "total"
	// ScaleFixed sizes each bar relative to a configured constant.
	ScaleFixed Scale = "fixed"
)

// Scales lists the accepted scale names.
var Scales = []Scale{ScaleShare, ScaleMax, ScaleTotal, ScaleFixed}

// ParseScale validates a scale name. Empty input is an error so callers
// can decide their own default.
func ParseScale(s string) (Scale, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, sc := range Scales {
		if string(sc) == s {
			return sc, nil
		}
	}
	return "", fmt.Errorf("unknown scale %q (want one of share, max, total, fixed)", s)
}

// Options selects the scale for each section.
type Options struct {
	Categories Scale
	Languages  Scale
	Regions    Scale
	// FixedMax is the denominator for ScaleFixed. Non-positive values make
	// ScaleFixed behave like ScaleMax.
	FixedMax int64
}

// DefaultOptions returns the scales the dashboard uses out of the box:
// category bars show their share of all flagged items, language bars their
// share of analyzed content, and region bars are relative to the busiest
// region.
func DefaultOptions() Options {
	return Options{
		Categories: ScaleShare,
		Languages:  ScaleTotal,
		Regions:    ScaleMax,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Categories == "" {
		o.Categories = d.Categories
	}
	if o.Languages == "" {
		o.Languages = d.Languages
	}
	if o.Regions == "" {
		o.Regions = d.Regions
	}
	return o
}
