// Package tui is the interactive terminal frontend.
//
// It renders a sidebar of setting sections next to a content panel for
// the selected section, routes key presses into the application state
// in internal/app, and runs the external-editor round trip by
// suspending the bubbletea program around the spawned editor. The
// package owns presentation only; all selection, wizard, and document
// policy lives in internal/app.
package tui
