// Package monitor implements the live moderation-metrics dashboard.
//
// The dashboard shows the statistics endpoint's headline counters and its
// category, language and region breakdowns as bar rows, with a state badge
// and the age of the data on screen.
//
// # Architecture
//
// The package uses the Bubble Tea framework, which follows The Elm Architecture
// (Model-Update-View pattern):
//
//   - Model: Holds the view state, last snapshot, projection and layout
//   - Update: Processes messages (keystrokes, deliveries, clock ticks)
//   - View: Renders the current state to a string for display
//
// # Message Flow
//
// Polling is owned by a poller.Controller built when the model activates:
//
//  1. Init sends activateMsg; Update builds and starts a fresh controller
//  2. Controller callbacks push snapshotMsg / fetchErrorMsg onto a channel
//  3. waitForEvent drains one message per command and is re-issued after
//     every delivery
//  4. Teardown closes the channel's done signal and stops the controller;
//     results still in flight are discarded
//
// # View States
//
// Next is the transition function for ViewState:
//
//	inactive --activate--> loading
//	loading/live/unable to refresh --snapshot--> live
//	loading/live/unable to refresh --failure--> unable to refresh
//	any --teardown--> inactive
//
// A failed refresh keeps the last good snapshot on screen. The view keeps
// "no data yet" (nothing delivered), "unable to refresh" (last poll failed)
// and "zero activity" (a valid all-zero snapshot) visually distinct.
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   - Quit (stops polling)
//	r           - Refresh now
//	Tab         - Focus next section
//	Enter       - Open focused section
//	Esc         - Back / close
//	?           - Toggle help overlay
package monitor
