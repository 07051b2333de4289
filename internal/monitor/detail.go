package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Detail view styles
var (
	detailContainerStyle = lipgloss.NewStyle().
				Padding(1, 2)

	detailSectionStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorder).
				Padding(0, 1).
				MarginBottom(1)
)

// detailGraphHeight is the braille graph height in rows.
const detailGraphHeight = 3

// renderDetailView renders the expanded view of the focused section.
func (m Model) renderDetailView() string {
	var b strings.Builder
	b.WriteString(m.renderDetailHeader())
	b.WriteString("\n\n")

	if m.viewportReady {
		b.WriteString(m.detailViewport.View())
	} else {
		b.WriteString(m.renderDetailContent(m.detailWidth()))
	}

	b.WriteString("\n")
	b.WriteString(m.renderDetailFooter())
	return b.String()
}

// updateDetailViewportContent re-renders the focused section into the viewport.
func (m *Model) updateDetailViewportContent() {
	if !m.viewportReady {
		return
	}
	m.detailViewport.SetContent(m.renderDetailContent(m.detailWidth()))
}

// detailWidth is the content width inside the detail container.
func (m Model) detailWidth() int {
	w := m.contentWidth() - 6
	if w < 40 {
		w = 40
	}
	return w
}

// renderDetailHeader renders the section title with the state badge.
func (m Model) renderDetailHeader() string {
	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render(m.focus.String())

	sep := LabelStyle.Render(" | ")
	return HeaderStyle.Render(title + sep + m.renderBadge() + sep + LabelStyle.Render("updated "+m.UpdatedText()))
}

// renderDetailContent renders every row of the focused section with its raw
// key, scale and clamping information.
func (m Model) renderDetailContent(width int) string {
	if !m.proj.HasData {
		return detailSectionStyle.Width(width).Render(LabelStyle.Render("no data yet"))
	}
	if m.focus == FocusHeadline {
		return m.renderDetailHeadline(width)
	}

	sec := m.section(m.focus)
	switch {
	case !sec.Present:
		return detailSectionStyle.Width(width).Render(MutedStyle.Render(noDataText))
	case sec.Empty():
		return detailSectionStyle.Width(width).Render(MutedStyle.Render(noActivityText))
	}

	inner := width - 4
	var lines []string
	lines = append(lines, TitleStyle.Render(m.focus.String()))
	lines = append(lines, LabelStyle.Render(fmt.Sprintf("scale %s, denominator %s", sec.Scale, formatCount(sec.Denominator))))
	lines = append(lines, "")

	for _, dm := range sec.Metrics {
		color := ColorGraph
		if m.focus == FocusRegions {
			color = TierColor(dm.Tier)
		}
		lines = append(lines, renderMetricRow(dm, inner, color, m.focus == FocusRegions, true))

		meta := "key " + dm.Key
		if dm.Clamped {
			meta += ", bar clamped at 100%"
		}
		lines = append(lines, MutedStyle.Render("  "+meta))
	}

	return detailSectionStyle.Width(width).Render(strings.Join(lines, "\n"))
}

// renderDetailHeadline renders the counters with braille trend graphs.
func (m Model) renderDetailHeadline(width int) string {
	h := m.proj.Headline
	if !h.Present {
		return detailSectionStyle.Width(width).Render(MutedStyle.Render(noDataText))
	}

	inner := width - 4
	riskColor := RiskColor(h.HighRisk.Percentage)

	var lines []string
	lines = append(lines, TitleStyle.Render(FocusHeadline.String()))
	lines = append(lines, "")
	lines = append(lines, renderCountRow("Analyzed", h.TotalAnalyzed))
	lines = append(lines, renderMetricRow(h.HighRisk, inner, riskColor, false, true))
	lines = append(lines, renderMetricRow(h.Safe, inner, ColorHealthy, false, true))
	lines = append(lines, renderCountRow("Reports", h.ReportsGenerated))
	lines = append(lines, renderCountRow("False positives", h.FalsePositives))

	if data := m.history.Last(SeriesHighRiskPct, inner); len(data) >= trendMinPoints {
		lines = append(lines, "")
		lines = append(lines, LabelStyle.Render(fmt.Sprintf("High-risk %% (last %d polls)", len(data))))
		lines = append(lines, RenderBrailleSparkline(data, inner, detailGraphHeight, riskColor))
	}
	if data := m.history.Last(SeriesTotalAnalyzed, inner); len(data) >= trendMinPoints {
		lines = append(lines, "")
		lines = append(lines, LabelStyle.Render(fmt.Sprintf("Analyzed (last %d polls)", len(data))))
		lines = append(lines, RenderBrailleSparkline(data, inner, detailGraphHeight, ColorGraph))
	}

	return detailSectionStyle.Width(width).Render(strings.Join(lines, "\n"))
}

// renderDetailFooter renders navigation hints for the detail view.
func (m Model) renderDetailFooter() string {
	hints := []string{"Esc back", "tab next section", "↑↓ scroll", "r refresh", "q quit"}
	return FooterStyle.Render(strings.Join(hints, " | "))
}
