// Package ui provides the small set of terminal components used by drishti's
// one-shot commands (init, snapshot, fixture). The full-screen dashboard has
// its own styling in the monitor package.
//
//	Spinner    - Animated status line for a probe or a single fetch
//	NewTable   - Bubbles table styled for printed output
//
// Colors are ANSI codes for broad terminal compatibility. DisableColors
// switches lipgloss to the ASCII profile for --no-color and NO_COLOR.
//
// The spinner writes to stderr by default so stdout can be piped:
//
//	s := ui.NewSpinner("Fetching " + url)
//	s.Start()
//	// ... do work ...
//	s.Success() // or s.Fail() or s.Skip()
package ui
