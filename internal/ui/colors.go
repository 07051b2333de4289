package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Semantic colors for status indication. ANSI codes keep one-shot command
// output readable on any terminal theme.
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

// GradientColors are cycled by the spinner while it animates.
var GradientColors = []lipgloss.Color{ColorInfo, ColorSecondary, ColorSuccess, ColorWarning}

// DisableColors switches lipgloss to plain ASCII output. Used for --no-color,
// NO_COLOR and output that is not a terminal.
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}
