package monitor

// ViewState is the lifecycle state of one dashboard activation.
type ViewState int

const (
	// StateInactive is the state before activation and after teardown.
	StateInactive ViewState = iota
	// StateLoading means the first fetch is in flight and nothing has arrived.
	StateLoading
	// StateReady means a snapshot is on screen and polling continues.
	StateReady
	// StateErrorTransient means the last fetch failed. Any previous snapshot
	// stays on screen and polling continues.
	StateErrorTransient
)

// String returns the badge label for the state.
func (s ViewState) String() string {
	switch s {
	case StateInactive:
		return "inactive"
	case StateLoading:
		return "loading"
	case StateReady:
		return "live"
	case StateErrorTransient:
		return "unable to refresh"
	default:
		return "unknown"
	}
}

// Event drives ViewState transitions.
type Event int

const (
	EventActivate Event = iota
	EventSnapshot
	EventFailure
	EventTeardown
)

// String returns a human-readable event name.
func (e Event) String() string {
	switch e {
	case EventActivate:
		return "activate"
	case EventSnapshot:
		return "snapshot"
	case EventFailure:
		return "failure"
	case EventTeardown:
		return "teardown"
	default:
		return "unknown"
	}
}

// Next returns the state after ev. Teardown always lands on StateInactive;
// from there only activation leaves it, and a torn-down Model never
// activates again.
func Next(s ViewState, ev Event) ViewState {
	if ev == EventTeardown {
		return StateInactive
	}

	switch s {
	case StateInactive:
		if ev == EventActivate {
			return StateLoading
		}
		return StateInactive

	case StateLoading, StateReady, StateErrorTransient:
		switch ev {
		case EventSnapshot:
			return StateReady
		case EventFailure:
			return StateErrorTransient
		}
		return s
	}

	return s
}
