package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/logger"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/poller"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/projector"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/stats"
)

// LayoutMode represents the responsive layout mode based on terminal size.
type LayoutMode int

const (
	// LayoutMinimal is for terminals < 80 columns: no bars, no sparklines
	LayoutMinimal LayoutMode = iota
	// LayoutCompact is for terminals 80-120 columns: single column of panels
	LayoutCompact
	// LayoutWide is for terminals 120+ columns: breakdown panels side by side
	LayoutWide
)

// Width breakpoints for layout modes
const (
	BreakpointCompact = 80
	BreakpointWide    = 120
)

// HeightMinimal is the height below which the footer is dropped.
const HeightMinimal = 24

// clockInterval drives the "updated Xs ago" counter.
const clockInterval = time.Second

// Options configures a dashboard Model.
type Options struct {
	// Endpoint is shown in the header.
	Endpoint string
	// Fetch performs one poll. Required.
	Fetch poller.FetchFunc
	// Poller configures the controller built on activation.
	Poller    poller.Options
	Projector projector.Options
	Logger    logger.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Model is the Bubble Tea model for the moderation dashboard. It owns one
// polling controller for the lifetime of the activation.
type Model struct {
	endpoint  string
	fetch     poller.FetchFunc
	pollOpts  poller.Options
	projOpts  projector.Options
	log       logger.Logger
	now       func() time.Time
	session   *session
	state     ViewState
	snapshot  *stats.Snapshot // last known good
	proj      projector.Projection
	lastErr   error
	failures  int // consecutive
	updatedAt time.Time
	history   *History
	focus     Focus
	viewMode  ViewMode
	showHelp  bool
	quitting  bool
	tornDown  bool
	width     int
	height    int
	spinner   spinner.Model

	// Detail view viewport for scrollable content
	detailViewport viewport.Model
	viewportReady  bool
}

// session links the controller's goroutines to the Bubble Tea loop. It is
// shared by every copy of the Model.
type session struct {
	controller *poller.Controller
	events     chan tea.Msg
	done       chan struct{}
	once       sync.Once
}

// send hands msg to the Update loop unless the session was torn down.
func (s *session) send(msg tea.Msg) {
	select {
	case s.events <- msg:
	case <-s.done:
	}
}

// teardown unblocks pending sends, then stops the controller. Stop waits
// for an in-progress callback, which may be blocked in send.
func (s *session) teardown() {
	s.once.Do(func() {
		close(s.done)
		s.controller.Stop()
	})
}

// activateMsg starts polling.
type activateMsg struct{}

// snapshotMsg carries a delivered snapshot.
type snapshotMsg struct {
	seq  uint64
	snap *stats.Snapshot
	at   time.Time
}

// fetchErrorMsg carries a delivered fetch failure.
type fetchErrorMsg struct {
	seq uint64
	err error
	at  time.Time
}

// clockTickMsg re-renders the relative update time.
type clockTickMsg time.Time

// NewModel creates a dashboard model in StateInactive. Polling begins when
// the program runs Init.
func NewModel(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Poller.Logger == nil {
		opts.Poller.Logger = opts.Logger
	}

	s := spinner.New()
	s.Spinner = spinner.Spinner{Frames: ConnectingSpinnerFrames, FPS: 150 * time.Millisecond}
	s.Style = lipgloss.NewStyle().Foreground(ColorAccent)

	return Model{
		endpoint: opts.Endpoint,
		fetch:    opts.Fetch,
		pollOpts: opts.Poller,
		projOpts: opts.Projector,
		log:      opts.Logger,
		now:      opts.Now,
		state:    StateInactive,
		history:  NewHistory(DefaultHistorySize),
		spinner:  s,
	}
}

// Init activates the dashboard and starts the spinner and clock.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return activateMsg{} },
		m.spinner.Tick,
		clockTickCmd(),
	)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg)
		if handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Reserve space for header and footer
		headerHeight := 3
		footerHeight := 2
		viewportHeight := m.height - headerHeight - footerHeight
		if viewportHeight < 1 {
			viewportHeight = 1
		}

		if !m.viewportReady {
			m.detailViewport = viewport.New(m.width, viewportHeight)
			m.detailViewport.YPosition = headerHeight
			m.viewportReady = true
		} else {
			m.detailViewport.Width = m.width
			m.detailViewport.Height = viewportHeight
		}

		if m.viewMode == ViewDetail {
			m.updateDetailViewportContent()
		}

	case activateMsg:
		return m, m.activate()

	case snapshotMsg:
		m.applySnapshot(msg)
		return m, m.waitForEvent()

	case fetchErrorMsg:
		m.applyFailure(msg)
		return m, m.waitForEvent()

	case clockTickMsg:
		if m.quitting {
			return m, nil
		}
		return m, clockTickCmd()

	case spinner.TickMsg:
		// Only the loading badge animates; let the tick chain lapse afterwards.
		if m.state != StateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.viewMode == ViewDetail && m.viewportReady {
		var cmd tea.Cmd
		m.detailViewport, cmd = m.detailViewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	if m.viewMode == ViewDetail {
		content = m.renderDetailView()
	} else {
		content = m.renderDashboard()
	}

	if m.showHelp {
		return m.renderHelpOverlay(content)
	}
	return content
}

// activate builds a fresh controller and starts it. A model that was torn
// down stays inactive.
func (m *Model) activate() tea.Cmd {
	next := Next(m.state, EventActivate)
	if next == m.state || m.tornDown || m.session != nil || m.fetch == nil {
		return nil
	}

	s := &session{
		controller: poller.New(m.fetch, m.pollOpts),
		events:     make(chan tea.Msg),
		done:       make(chan struct{}),
	}
	now := m.now
	err := s.controller.Start(context.Background(),
		func(seq uint64, snap *stats.Snapshot) {
			s.send(snapshotMsg{seq: seq, snap: snap, at: now()})
		},
		func(seq uint64, err error) {
			s.send(fetchErrorMsg{seq: seq, err: err, at: now()})
		},
	)
	if err != nil {
		m.log.Error("start polling: %v", err)
		return nil
	}

	m.session = s
	m.state = next
	m.log.Info("dashboard active, controller %s polling %s every %s",
		s.controller.ID(), m.endpoint, s.controller.Interval())
	return m.waitForEvent()
}

// waitForEvent returns a command that receives the next controller message.
// Update re-issues it after every delivery.
func (m Model) waitForEvent() tea.Cmd {
	s := m.session
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case msg := <-s.events:
			return msg
		case <-s.done:
			return nil
		}
	}
}

// clockTickCmd returns a command that fires once per clockInterval.
func clockTickCmd() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg {
		return clockTickMsg(t)
	})
}

// applySnapshot replaces the displayed data with a newly delivered snapshot.
func (m *Model) applySnapshot(msg snapshotMsg) {
	if m.state == StateInactive || msg.snap == nil {
		return
	}
	m.state = Next(m.state, EventSnapshot)
	m.snapshot = msg.snap
	m.proj = projector.Project(msg.snap, m.projOpts)
	m.lastErr = nil
	m.failures = 0
	m.updatedAt = msg.at

	if msg.snap.Counters.Present {
		// An inconsistent pair has no meaningful percentage to graph.
		if !m.proj.Headline.HighRisk.Invalid {
			m.history.Push(SeriesHighRiskPct, m.proj.Headline.HighRisk.Percentage)
		}
		m.history.Push(SeriesTotalAnalyzed, float64(msg.snap.Counters.TotalAnalyzed))
	}

	if m.viewMode == ViewDetail {
		m.updateDetailViewportContent()
	}
}

// applyFailure records a failed poll. The last snapshot stays on screen.
func (m *Model) applyFailure(msg fetchErrorMsg) {
	if m.state == StateInactive {
		return
	}
	m.state = Next(m.state, EventFailure)
	m.lastErr = msg.err
	m.failures++
}

// refresh asks the controller for one fetch outside the schedule. The
// result follows the same discard rules as scheduled polls.
func (m *Model) refresh() bool {
	if m.session == nil || !m.session.controller.Refresh() {
		return false
	}
	m.log.Debug("manual refresh requested")
	return true
}

// Teardown stops polling. In-flight results are discarded and no further
// messages are delivered. Safe to call more than once and from any copy of
// the Model.
func (m *Model) Teardown() {
	m.state = Next(m.state, EventTeardown)
	m.tornDown = true
	if m.session != nil {
		m.session.teardown()
	}
}

// State returns the current view state.
func (m Model) State() ViewState {
	return m.state
}

// Snapshot returns the last successfully delivered snapshot, or nil.
func (m Model) Snapshot() *stats.Snapshot {
	return m.snapshot
}

// Projection returns the projection of the current snapshot.
func (m Model) Projection() projector.Projection {
	return m.proj
}

// LastError returns the most recent fetch failure since the last success.
func (m Model) LastError() error {
	return m.lastErr
}

// FailureStreak returns the number of consecutive failed polls.
func (m Model) FailureStreak() int {
	return m.failures
}

// ControllerID returns the active controller's ID, or "" before activation.
func (m Model) ControllerID() string {
	if m.session == nil {
		return ""
	}
	return m.session.controller.ID()
}

// SecondsSinceUpdate returns how many seconds have passed since the last
// delivered snapshot, or -1 when nothing has been delivered.
func (m Model) SecondsSinceUpdate() int {
	if m.updatedAt.IsZero() {
		return -1
	}
	d := m.now().Sub(m.updatedAt)
	if d < 0 {
		return 0
	}
	return int(d.Seconds())
}

// LayoutMode returns the current layout mode based on terminal width.
func (m Model) LayoutMode() LayoutMode {
	switch {
	case m.width == 0:
		return LayoutCompact
	case m.width >= BreakpointWide:
		return LayoutWide
	case m.width >= BreakpointCompact:
		return LayoutCompact
	default:
		return LayoutMinimal
	}
}

// ShowFooter returns true if the terminal is tall enough to show the footer.
func (m Model) ShowFooter() bool {
	return m.height == 0 || m.height >= HeightMinimal
}
