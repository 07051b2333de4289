package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/stats"
)

// Dashboard color palette
const (
	// Background colors (glassmorphism-inspired)
	ColorDarkBg    = lipgloss.Color("#0A0A0F") // Deep void
	ColorSurfaceBg = lipgloss.Color("#12121A") // Dark surface
	ColorBorder    = lipgloss.Color("#2A2A4A") // Glass border (purple tint)

	// Semantic colors for metrics - neon style
	ColorHealthy  = lipgloss.Color("#39FF14") // Neon green
	ColorWarning  = lipgloss.Color("#FFAA00") // Electric amber
	ColorCritical = lipgloss.Color("#FF0055") // Hot red-pink

	// Text colors
	ColorTextPrimary   = lipgloss.Color("#FFFFFF") // Pure white
	ColorTextSecondary = lipgloss.Color("#B4B4D0") // Lavender gray
	ColorTextMuted     = lipgloss.Color("#6B6B8D") // Purple-gray

	// Accent colors - neon pink primary, cyan secondary
	ColorAccent    = lipgloss.Color("#FF2E97") // Neon pink
	ColorAccentDim = lipgloss.Color("#BF40FF") // Neon purple

	// Graph colors
	ColorGraph = lipgloss.Color("#00FFFF") // Neon cyan
)

// Thresholds for the high-risk share, in percent of analyzed content.
const (
	RiskWarningPercent  = 5.0
	RiskCriticalPercent = 15.0
)

// Base styles for the dashboard
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	// Badge styles, one per ViewState
	BadgeLoadingStyle = lipgloss.NewStyle().
				Foreground(ColorTextSecondary)

	BadgeReadyStyle = lipgloss.NewStyle().
			Foreground(ColorHealthy).
			Bold(true)

	BadgePartialStyle = lipgloss.NewStyle().
				Foreground(ColorWarning).
				Bold(true)

	BadgeErrorStyle = lipgloss.NewStyle().
			Foreground(ColorCritical).
			Bold(true)

	// Banner styles for the error and zero-activity notices
	ErrorBannerStyle = lipgloss.NewStyle().
				Foreground(ColorCritical).
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(ColorCritical).
				PaddingLeft(1)

	NoticeBannerStyle = lipgloss.NewStyle().
				Foreground(ColorTextSecondary).
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(ColorGraph).
				PaddingLeft(1)
)

// Badge glyphs
const (
	BadgeLive    = "◉"
	BadgePartial = "◔"
	BadgeError   = "◌"
	BadgeFlagged = "⚠"
)

// ConnectingSpinnerFrames are the animation frames for the loading state.
// Rotates through half-circle positions for a smooth spin effect.
var ConnectingSpinnerFrames = []string{"◐", "◓", "◑", "◒"}

// RiskColor returns the color for a high-risk percentage.
func RiskColor(percent float64) lipgloss.Color {
	return MetricColorWithThresholds(percent, RiskWarningPercent, RiskCriticalPercent)
}

// MetricColorWithThresholds returns the appropriate color for a percentage-based metric
// using the provided warning and critical threshold values.
func MetricColorWithThresholds(percent, warning, critical float64) lipgloss.Color {
	switch {
	case percent >= critical:
		return ColorCritical
	case percent >= warning:
		return ColorWarning
	default:
		return ColorHealthy
	}
}

// TierColor returns the color for a region's risk tier.
func TierColor(tier stats.RiskTier) lipgloss.Color {
	switch tier {
	case stats.RiskHigh:
		return ColorCritical
	case stats.RiskMedium:
		return ColorWarning
	case stats.RiskLow:
		return ColorHealthy
	default:
		return ColorTextMuted
	}
}

// clampPercent bounds percent to [0,100].
func clampPercent(percent float64) float64 {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// ProgressBar renders a bar of the given width filled to percent.
// Uses ━ for filled segments and ─ for empty segments.
func ProgressBar(width int, percent float64, color lipgloss.Color) string {
	if width < 1 {
		width = 1
	}

	filled := int(clampPercent(percent) / 100.0 * float64(width))
	if filled > width {
		filled = width
	}

	filledStyle := lipgloss.NewStyle().Foreground(color)
	emptyStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	return filledStyle.Render(strings.Repeat("━", filled)) +
		emptyStyle.Render(strings.Repeat("─", width-filled))
}

// SectionHeader renders a section header with the title on the left and value on the right.
// Format: ╭─ Title ────────────────────────────────────── Value ╮
func SectionHeader(title, value string, width int) string {
	if width < 10 {
		width = 10
	}

	// Calculate visible widths using lipgloss.Width for ANSI-aware measurement
	// Left: "╭─ " (3 chars) + title + " " (1 char)
	leftWidth := 3 + lipgloss.Width(title) + 1

	// Right: " " (1 char) + value + " ╮" (2 chars)
	rightWidth := 1 + lipgloss.Width(value) + 2

	// Calculate middle fill width
	fillWidth := width - leftWidth - rightWidth
	if fillWidth < 1 {
		fillWidth = 1
	}

	// Build middle with ─ characters
	middle := strings.Repeat("─", fillWidth)

	// Style the parts - neon pink title, cyan value
	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	titleStyle := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(ColorGraph).Bold(true)

	return borderStyle.Render("╭─ ") +
		titleStyle.Render(title) +
		borderStyle.Render(" "+middle+" ") +
		valueStyle.Render(value) +
		borderStyle.Render(" ╮")
}

// SectionFooter renders the bottom border of a section.
// Format: ╰────────────────────────────────────────────────────╯
func SectionFooter(width int) string {
	if width < 2 {
		width = 2
	}

	// ╰ and ╯ are each 1 display character
	middle := strings.Repeat("─", width-2)

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	return borderStyle.Render("╰" + middle + "╯")
}

// SectionContentLine renders a content line with left and right borders, properly padded to width.
// Format: │ content                                              │
func SectionContentLine(content string, width int) string {
	if width < 4 {
		width = 4
	}

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)

	// Calculate the visible width of the content (accounting for ANSI codes)
	contentWidth := lipgloss.Width(content)

	// Inner width is total width minus the borders and padding: "│ " on left and " │" on right
	innerWidth := width - 4

	// Pad content to fill the inner width
	padding := innerWidth - contentWidth
	if padding < 0 {
		padding = 0
	}

	return borderStyle.Render("│") + " " + content + strings.Repeat(" ", padding) + " " + borderStyle.Render("│")
}
