// Package ui contains the Bubble Tea program that shows the model tree in
// a terminal: the window tree on the left, the tray-menu rendering of the
// same subtree on the right.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages, which are
//     routed through a typed handler registry so each tea.Msg is handled by
//     a focused function.
//   - Navigation helpers (navigation.go) manage the stack of levels and the
//     cursor. Filter editing (input.go) is kept apart from the event loop.
//
// State ownership:
//   - Each level is an internal/ui/state.Level keyed by the id of a widget
//     in the tree backend. Levels never hold models' state, only copies of
//     widget rows, and are re-read whenever the backend reports a change.
//   - Activating a row goes through the internal/ui/command bus, which
//     hands the model call to the task pool. Model code never runs on the
//     Bubble Tea goroutine.
//
// Backend interactions:
//   - waitForChanges blocks on the tree backend's coalesced change signal;
//     its handler refreshes every level on the stack and re-arms the wait.
//     A level whose widget was removed is closed with everything above it.
package ui
