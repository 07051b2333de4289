package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/projector"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/stats"
)

// Row layout constants
const (
	rowLabelWidth   = 18
	rowTierWidth    = 7
	rowCountWidth   = 10
	rowPercentWidth = 7
	rowMinBarWidth  = 8
	trendMinPoints  = 2
)

// Placeholders for sections without rows.
const (
	noDataText     = "no data"
	noActivityText = "no activity"
	invalidText    = "n/a"
)

// truncateWithEllipsis truncates a string to maxLen runes, adding ellipsis if needed.
func truncateWithEllipsis(s string, maxLen int) string {
	if maxLen <= 3 {
		return s
	}
	r := []rune(s)
	if len(r) > maxLen {
		return string(r[:maxLen-3]) + "..."
	}
	return s
}

// padRight pads s with spaces to width display columns.
func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// padLeft right-aligns s in width display columns.
func padLeft(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return strings.Repeat(" ", width-w) + s
	}
	return s
}

// formatCount renders a count with thousands separators.
func formatCount(n int64) string {
	return humanize.Comma(n)
}

// formatPercent renders a percentage with one decimal, or a placeholder for
// contradictory inputs.
func formatPercent(dm projector.DerivedMetric) string {
	if dm.Invalid {
		return invalidText
	}
	return fmt.Sprintf("%.1f%%", dm.Percentage)
}

// tierLabel is the short tag shown next to a region.
func tierLabel(t stats.RiskTier) string {
	switch t {
	case stats.RiskHigh:
		return "HIGH"
	case stats.RiskMedium:
		return "MED"
	case stats.RiskLow:
		return "LOW"
	default:
		return "?"
	}
}

// renderPanel frames lines in a titled box. The focused panel gets a marker.
func renderPanel(title, value string, lines []string, width int, focused bool) string {
	if focused {
		title = "▸ " + title
	}
	out := make([]string, 0, len(lines)+2)
	out = append(out, SectionHeader(title, value, width))
	for _, line := range lines {
		out = append(out, SectionContentLine(line, width))
	}
	out = append(out, SectionFooter(width))
	return strings.Join(out, "\n")
}

// rowBarWidth returns the bar width left over in a row, or 0 when there is
// no room for a readable bar.
func rowBarWidth(inner int, extra int) int {
	w := inner - rowLabelWidth - rowCountWidth - rowPercentWidth - extra - 3
	if w < rowMinBarWidth {
		return 0
	}
	return w
}

// renderMetricRow renders "label  [tier]  bar  count  pct" for one metric.
func renderMetricRow(dm projector.DerivedMetric, inner int, color lipgloss.Color, showTier, showBar bool) string {
	var b strings.Builder
	b.WriteString(padRight(LabelStyle.Render(truncateWithEllipsis(dm.Label, rowLabelWidth)), rowLabelWidth))

	extra := 0
	if showTier {
		extra = rowTierWidth
		tag := lipgloss.NewStyle().Foreground(TierColor(dm.Tier)).Render(tierLabel(dm.Tier))
		b.WriteString(" ")
		b.WriteString(padRight(tag, rowTierWidth-1))
	}

	if barWidth := rowBarWidth(inner, extra); showBar && barWidth > 0 {
		b.WriteString(" ")
		if dm.Invalid {
			b.WriteString(MutedStyle.Render(strings.Repeat("·", barWidth)))
		} else {
			b.WriteString(ProgressBar(barWidth, dm.BarWidthPercent, color))
		}
	}

	b.WriteString(" ")
	b.WriteString(padLeft(ValueStyle.Render(formatCount(dm.Count)), rowCountWidth))
	b.WriteString(" ")
	pct := formatPercent(dm)
	if dm.Invalid {
		b.WriteString(padLeft(MutedStyle.Render(pct), rowPercentWidth))
	} else {
		b.WriteString(padLeft(lipgloss.NewStyle().Foreground(color).Render(pct), rowPercentWidth))
	}
	return b.String()
}

// renderCountRow renders a plain "label  count" line.
func renderCountRow(label string, n int64) string {
	return padRight(LabelStyle.Render(label), rowLabelWidth) + " " + ValueStyle.Render(formatCount(n))
}

// renderHeadlinePanel renders the top-line counters with the high-risk trend.
func (m Model) renderHeadlinePanel(width int) string {
	h := m.proj.Headline
	focused := m.focus == FocusHeadline
	if !h.Present {
		return renderPanel(FocusHeadline.String(), "", []string{MutedStyle.Render(noDataText)}, width, focused)
	}

	inner := width - 4
	showBar := m.LayoutMode() != LayoutMinimal
	riskColor := RiskColor(h.HighRisk.Percentage)
	if h.HighRisk.Invalid {
		riskColor = ColorTextMuted
	}

	lines := []string{
		renderCountRow("Analyzed", h.TotalAnalyzed),
		renderMetricRow(h.HighRisk, inner, riskColor, false, showBar),
		renderMetricRow(h.Safe, inner, ColorHealthy, false, showBar),
		renderCountRow("Reports", h.ReportsGenerated),
		renderCountRow("False positives", h.FalsePositives),
	}

	if showBar && m.history.Count(SeriesHighRiskPct) >= trendMinPoints {
		trendWidth := inner - rowLabelWidth - 1
		data := m.history.Last(SeriesHighRiskPct, trendWidth)
		lines = append(lines, padRight(LabelStyle.Render("High-risk trend"), rowLabelWidth)+" "+RenderRiskSparkline(data, trendWidth))
	}

	value := formatPercent(h.HighRisk) + " high risk"
	return renderPanel(FocusHeadline.String(), value, lines, width, focused)
}

// renderSectionPanel renders one breakdown as bar rows.
func (m Model) renderSectionPanel(f Focus, width int) string {
	sec := m.section(f)
	focused := m.focus == f

	switch {
	case !sec.Present:
		return renderPanel(f.String(), "", []string{MutedStyle.Render(noDataText)}, width, focused)
	case sec.Empty():
		return renderPanel(f.String(), "", []string{MutedStyle.Render(noActivityText)}, width, focused)
	}

	inner := width - 4
	showBar := m.LayoutMode() != LayoutMinimal
	lines := make([]string, 0, len(sec.Metrics))
	for _, dm := range sec.Metrics {
		color := ColorGraph
		if f == FocusRegions {
			color = TierColor(dm.Tier)
		}
		lines = append(lines, renderMetricRow(dm, inner, color, f == FocusRegions, showBar))
	}

	value := fmt.Sprintf("%d · %s", len(sec.Metrics), sec.Scale)
	return renderPanel(f.String(), value, lines, width, focused)
}

// section returns the projected breakdown for f. FocusHeadline has none.
func (m Model) section(f Focus) projector.Section {
	switch f {
	case FocusCategories:
		return m.proj.Categories
	case FocusLanguages:
		return m.proj.Languages
	case FocusRegions:
		return m.proj.Regions
	default:
		return projector.Section{}
	}
}
