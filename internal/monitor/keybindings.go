package monitor

import tea "github.com/charmbracelet/bubbletea"

// Focus selects which dashboard section is highlighted and shown in the
// detail view.
type Focus int

const (
	FocusHeadline Focus = iota
	FocusCategories
	FocusLanguages
	FocusRegions
)

// focusCount is the number of Focus values.
const focusCount = 4

// String returns the section title.
func (f Focus) String() string {
	switch f {
	case FocusHeadline:
		return "Overview"
	case FocusCategories:
		return "Threat categories"
	case FocusLanguages:
		return "Languages"
	case FocusRegions:
		return "Regions"
	default:
		return "Overview"
	}
}

// Next cycles to the next section.
func (f Focus) Next() Focus {
	return Focus((int(f) + 1) % focusCount)
}

// Prev cycles to the previous section.
func (f Focus) Prev() Focus {
	return Focus((int(f) + focusCount - 1) % focusCount)
}

// ViewMode defines the current display mode of the dashboard.
type ViewMode int

const (
	ViewDashboard ViewMode = iota
	ViewDetail
)

// Key bindings as constants for consistency.
const (
	KeyQuit       = "q"
	KeyQuitAlt    = "ctrl+c"
	KeyRefresh    = "r"
	KeyFocusNext  = "tab"
	KeyFocusPrev  = "shift+tab"
	KeyExpand     = "enter"
	KeyCollapse   = "esc"
	KeyToggleHelp = "?"
)

// HandleKeyMsg processes keyboard input and returns updated model state and command.
// Returns true if the key was handled, false otherwise.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	// Help toggle takes priority
	if key == KeyToggleHelp {
		m.showHelp = !m.showHelp
		return true, nil
	}

	// If help is showing, Esc closes it
	if m.showHelp && key == KeyCollapse {
		m.showHelp = false
		return true, nil
	}

	switch key {
	case KeyQuit, KeyQuitAlt:
		m.Teardown()
		m.quitting = true
		return true, tea.Quit

	case KeyRefresh:
		m.refresh()
		return true, nil

	case KeyFocusNext:
		m.focus = m.focus.Next()
		m.syncDetail()
		return true, nil

	case KeyFocusPrev:
		m.focus = m.focus.Prev()
		m.syncDetail()
		return true, nil

	case KeyExpand:
		if m.viewMode == ViewDashboard {
			m.viewMode = ViewDetail
			m.syncDetail()
		}
		return true, nil

	case KeyCollapse:
		m.viewMode = ViewDashboard
		return true, nil
	}

	return false, nil
}

// syncDetail refreshes the viewport after the focused section changes.
func (m *Model) syncDetail() {
	if m.viewMode != ViewDetail {
		return
	}
	m.updateDetailViewportContent()
	if m.viewportReady {
		m.detailViewport.GotoTop()
	}
}
