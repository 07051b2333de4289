package monitor

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/errors"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/projector"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/stats"
)

// readyModel returns a model showing snap as if it had just been delivered.
func readyModel(snap *stats.Snapshot) Model {
	m := newTestModel(nil)
	m.state = StateLoading
	m.applySnapshot(snapshotMsg{seq: 1, snap: snap, at: testNow})
	return m
}

func TestModel_LayoutMode(t *testing.T) {
	tests := []struct {
		width int
		want  LayoutMode
	}{
		{0, LayoutCompact},
		{60, LayoutMinimal},
		{79, LayoutMinimal},
		{80, LayoutCompact},
		{119, LayoutCompact},
		{120, LayoutWide},
		{200, LayoutWide},
	}

	for _, tt := range tests {
		m := Model{width: tt.width}
		assert.Equal(t, tt.want, m.LayoutMode(), "width %d", tt.width)
	}
}

func TestModel_ShowFooter(t *testing.T) {
	assert.True(t, Model{height: 0}.ShowFooter())
	assert.False(t, Model{height: 10}.ShowFooter())
	assert.True(t, Model{height: HeightMinimal}.ShowFooter())
}

func TestModel_UpdatedText(t *testing.T) {
	m := newTestModel(nil)
	assert.Equal(t, "never", m.UpdatedText())

	m.updatedAt = testNow
	assert.Equal(t, "just now", m.UpdatedText())

	m.updatedAt = testNow.Add(-12 * time.Second)
	assert.Equal(t, "12s ago", m.UpdatedText())
}

func TestModel_CapturedText(t *testing.T) {
	m := newTestModel(nil)
	assert.Equal(t, "N/A", m.CapturedText())

	snap := sampleSnapshot()
	snap.CapturedAt = snap.CapturedAt.Local()
	m = readyModel(snap)
	assert.Equal(t, snap.CapturedAt.Format(capturedLayout), m.CapturedText())

	// A snapshot without a usable timestamp
	snap = sampleSnapshot()
	snap.CapturedAt = time.Time{}
	m = readyModel(snap)
	assert.Equal(t, "N/A", m.CapturedText())
}

func TestModel_renderHeader(t *testing.T) {
	m := readyModel(sampleSnapshot())

	header := m.renderHeader()
	assert.Contains(t, header, "drishti")
	assert.Contains(t, header, testEndpoint)
	assert.Contains(t, header, "live")
	assert.Contains(t, header, "updated just now")
	assert.Contains(t, header, "captured ")
}

func TestModel_renderBadge(t *testing.T) {
	m := newTestModel(nil)
	assert.Contains(t, m.renderBadge(), "inactive")

	m.state = StateLoading
	assert.Contains(t, m.renderBadge(), "loading")

	m = readyModel(sampleSnapshot())
	assert.Contains(t, m.renderBadge(), "live")

	partial := sampleSnapshot()
	partial.Issues = []error{errors.New(errors.ErrMalformed, "Field regions dropped", "")}
	m = readyModel(partial)
	assert.Contains(t, m.renderBadge(), "partial")

	m.applyFailure(fetchErrorMsg{seq: 2, err: networkErr(), at: testNow})
	assert.Contains(t, m.renderBadge(), "unable to refresh")
}

func TestModel_renderDashboard_NoDataYet(t *testing.T) {
	m := newTestModel(nil)
	m.state = StateLoading

	view := m.View()
	assert.Contains(t, view, "no data yet")
	assert.Contains(t, view, "updated never")
	assert.Contains(t, view, "captured N/A")
	assert.NotContains(t, view, "unable to refresh")
	assert.NotContains(t, view, "zero activity")
}

func TestModel_renderDashboard_UnableToRefreshWithoutData(t *testing.T) {
	m := newTestModel(nil)
	m.state = StateLoading
	m.applyFailure(fetchErrorMsg{seq: 1, err: networkErr(), at: testNow})

	view := m.View()
	assert.Contains(t, view, "unable to refresh")
	assert.Contains(t, view, "Stats endpoint unreachable")
	assert.Contains(t, view, "no data yet")
	assert.NotContains(t, view, "zero activity")
}

func TestModel_renderDashboard_UnableToRefreshKeepsData(t *testing.T) {
	m := readyModel(sampleSnapshot())
	m.applyFailure(fetchErrorMsg{seq: 2, err: networkErr(), at: testNow})
	m.applyFailure(fetchErrorMsg{seq: 3, err: networkErr(), at: testNow})

	view := m.View()
	assert.Contains(t, view, "unable to refresh")
	assert.Contains(t, view, "2 consecutive failures")
	assert.Contains(t, view, "showing last data")
	assert.Contains(t, view, "12,000")
	assert.Contains(t, view, "25.0%")
}

func TestModel_renderDashboard_ZeroActivity(t *testing.T) {
	snap := &stats.Snapshot{
		Counters:       stats.Counters{Present: true},
		Categories:     stats.Breakdown{Present: true},
		Languages:      stats.Breakdown{Present: true},
		RegionsPresent: true,
	}
	m := readyModel(snap)

	view := m.View()
	assert.Contains(t, view, "zero activity")
	assert.Contains(t, view, noActivityText)
	assert.NotContains(t, view, "no data yet")
	assert.NotContains(t, view, "unable to refresh")
	assert.NotContains(t, view, "NaN")
}

func TestModel_renderDashboard_Ready(t *testing.T) {
	m := readyModel(sampleSnapshot())

	view := m.View()
	assert.Contains(t, view, "Overview")
	assert.Contains(t, view, "Threat categories")
	assert.Contains(t, view, "hate speech")
	assert.Contains(t, view, "Languages")
	assert.Contains(t, view, "EN")
	assert.Contains(t, view, "Regions")
	assert.Contains(t, view, "Delhi")
	assert.Contains(t, view, "HIGH")
	assert.Contains(t, view, "12,000")
	assert.Contains(t, view, "q quit")
}

func TestModel_renderDashboard_AbsentSections(t *testing.T) {
	snap := sampleSnapshot()
	snap.Languages = stats.Breakdown{}
	snap.RegionsPresent = false
	snap.Regions = nil
	m := readyModel(snap)

	assert.Contains(t, m.renderSectionPanel(FocusLanguages, 80), noDataText)
	assert.Contains(t, m.renderSectionPanel(FocusRegions, 80), noDataText)
	assert.NotContains(t, m.renderSectionPanel(FocusCategories, 80), noDataText)
}

func TestModel_renderDashboard_InconsistentHeadline(t *testing.T) {
	snap := sampleSnapshot()
	snap.Counters.HighRiskCount = 20000
	m := readyModel(snap)

	view := m.View()
	assert.Contains(t, view, invalidText)
	assert.Contains(t, view, BadgeFlagged)
}

func TestModel_renderDashboard_PanelsFitWidth(t *testing.T) {
	for _, width := range []int{60, 100, 140} {
		m := readyModel(sampleSnapshot())
		m.width = width

		for _, line := range strings.Split(m.renderBody(m.contentWidth()), "\n") {
			assert.LessOrEqual(t, lipgloss.Width(line), width, "width %d", width)
		}
	}
}

func TestModel_renderDashboard_WithHelp(t *testing.T) {
	m := readyModel(sampleSnapshot())
	m.showHelp = true

	assert.Contains(t, m.View(), "Keyboard Shortcuts")
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "25.0%", formatPercent(projector.DerivedMetric{Percentage: 25}))
	assert.Equal(t, "66.7%", formatPercent(projector.DerivedMetric{Percentage: 66.666}))
	assert.Equal(t, invalidText, formatPercent(projector.DerivedMetric{Percentage: 25, Invalid: true}))
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "0", formatCount(0))
	assert.Equal(t, "999", formatCount(999))
	assert.Equal(t, "1,234,567", formatCount(1234567))
}

func TestTruncateWithEllipsis(t *testing.T) {
	assert.Equal(t, "short", truncateWithEllipsis("short", 10))
	assert.Equal(t, "abcdefg...", truncateWithEllipsis("abcdefghijklmnop", 10))
	assert.Equal(t, "हिन्...", truncateWithEllipsis("हिन्दीभाषा", 7))
	assert.Equal(t, "abc", truncateWithEllipsis("abc", 2))
}

func TestRenderMetricRow_Invalid(t *testing.T) {
	row := renderMetricRow(projector.DerivedMetric{Label: "High risk", Count: 5, Invalid: true}, 76, ColorCritical, false, true)
	assert.Contains(t, row, invalidText)
	assert.Contains(t, row, "·")
	assert.NotContains(t, row, "━")
}

func TestRenderMetricRow_NoBarWhenNarrow(t *testing.T) {
	row := renderMetricRow(projector.DerivedMetric{Label: "violence", Count: 600, Percentage: 60, BarWidthPercent: 60}, 30, ColorGraph, false, true)
	assert.NotContains(t, row, "━")
	assert.Contains(t, row, "600")
	assert.Contains(t, row, "60.0%")
}
