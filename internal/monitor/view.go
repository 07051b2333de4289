package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/errors"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/util"
)

// capturedLayout formats the snapshot's CapturedAt in the header.
const capturedLayout = "2006-01-02 15:04:05"

// defaultWidth is used before the first WindowSizeMsg.
const defaultWidth = 80

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	width := m.contentWidth()

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if banner := m.renderBanner(width); banner != "" {
		b.WriteString(banner)
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderBody(width))

	if m.ShowFooter() {
		b.WriteString("\n")
		b.WriteString(m.renderFooter())
	}

	return b.String()
}

// contentWidth is the width available to panels.
func (m Model) contentWidth() int {
	if m.width == 0 {
		return defaultWidth
	}
	if m.width < 40 {
		return 40
	}
	return m.width
}

// renderHeader renders the title bar: endpoint, state badge, update age and
// the snapshot's own timestamp.
func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render("drishti")

	sep := LabelStyle.Render(" | ")
	parts := []string{
		LabelStyle.Render(m.endpoint),
		m.renderBadge(),
		LabelStyle.Render("updated " + m.UpdatedText()),
		LabelStyle.Render("captured " + m.CapturedText()),
	}

	return HeaderStyle.Render(title + sep + strings.Join(parts, sep))
}

// renderBadge renders the state badge.
func (m Model) renderBadge() string {
	switch m.state {
	case StateLoading:
		return BadgeLoadingStyle.Render(m.spinner.View() + " " + m.state.String())
	case StateReady:
		if m.snapshot.Partial() {
			return BadgePartialStyle.Render(BadgePartial + " partial")
		}
		return BadgeReadyStyle.Render(BadgeLive + " " + m.state.String())
	case StateErrorTransient:
		return BadgeErrorStyle.Render(BadgeError + " " + m.state.String())
	default:
		return MutedStyle.Render(m.state.String())
	}
}

// UpdatedText describes the time since the last delivered snapshot.
func (m Model) UpdatedText() string {
	switch secs := m.SecondsSinceUpdate(); secs {
	case -1:
		return "never"
	case 0:
		return "just now"
	default:
		return fmt.Sprintf("%ds ago", secs)
	}
}

// CapturedText is the snapshot's CapturedAt, or N/A when it carried none.
func (m Model) CapturedText() string {
	if m.snapshot == nil || m.snapshot.CapturedAt.IsZero() {
		return "N/A"
	}
	return m.snapshot.CapturedAt.Local().Format(capturedLayout)
}

// renderBanner renders the error, zero-activity and data-quality notices.
func (m Model) renderBanner(width int) string {
	var blocks []string

	if m.state == StateErrorTransient && m.lastErr != nil {
		lines := []string{"unable to refresh: " + errors.ShortMessage(m.lastErr)}
		if m.failures > 1 {
			lines = append(lines, fmt.Sprintf("%d consecutive failures", m.failures))
		}
		if m.snapshot != nil {
			lines = append(lines, "showing last data from "+m.UpdatedText())
		}
		blocks = append(blocks, ErrorBannerStyle.Width(width-2).Render(strings.Join(lines, "\n")))
	}

	if m.proj.HasData && m.proj.ZeroActivity {
		blocks = append(blocks, NoticeBannerStyle.Width(width-2).Render(
			"zero activity: the endpoint reports no analyzed content"))
	}

	var warnings []string
	if m.snapshot.Partial() {
		warnings = append(warnings, fmt.Sprintf("%s partial snapshot: %d %s dropped", BadgeFlagged, len(m.snapshot.Issues),
			util.Pluralize(len(m.snapshot.Issues), "field", "fields")))
	}
	for _, issue := range m.proj.Issues {
		warnings = append(warnings, BadgeFlagged+" "+errors.ShortMessage(issue))
	}
	if len(warnings) > 0 {
		blocks = append(blocks, BadgePartialStyle.Render(strings.Join(warnings, "\n")))
	}

	return strings.Join(blocks, "\n")
}

// renderBody renders the panels, or a placeholder before the first snapshot.
func (m Model) renderBody(width int) string {
	if !m.proj.HasData {
		return m.renderNoData(width)
	}

	headline := m.renderHeadlinePanel(width)

	if m.LayoutMode() == LayoutWide {
		half := width / 2
		top := lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderSectionPanel(FocusCategories, half),
			m.renderSectionPanel(FocusLanguages, width-half),
		)
		return lipgloss.JoinVertical(lipgloss.Left, headline, top, m.renderSectionPanel(FocusRegions, width))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		headline,
		m.renderSectionPanel(FocusCategories, width),
		m.renderSectionPanel(FocusLanguages, width),
		m.renderSectionPanel(FocusRegions, width),
	)
}

// renderNoData renders the "no data yet" placeholder.
func (m Model) renderNoData(width int) string {
	var line string
	switch m.state {
	case StateLoading:
		line = m.spinner.View() + " " + LabelStyle.Render("no data yet, waiting for the first response")
	case StateErrorTransient:
		line = MutedStyle.Render("no data yet")
	default:
		line = MutedStyle.Render("inactive")
	}
	return renderPanel("Dashboard", "", []string{line}, width, false)
}

// renderFooter renders the keyboard help footer.
func (m Model) renderFooter() string {
	hints := []string{
		"q quit",
		"r refresh",
		"tab focus",
		"enter open",
		"? help",
	}

	return FooterStyle.Render(strings.Join(hints, " | "))
}
