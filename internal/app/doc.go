// Package app holds the editor's application state and all state
// transitions, independent of rendering.
//
// The App combines three state machines:
//
//   - the navigator: which section, item, and panel the cursor is on,
//     including the MCPs split panel where two sub-lists share one
//     vertical cursor sequence;
//   - the wizard: multi-step guided input flows (inline value edits,
//     custom keys, permission rules, MCP permission rules, MCP server
//     names), modeled as one concrete state type per step so a state
//     can only carry the fields valid for that step;
//   - direct actions: toggle, cycle, add, delete, reset, save, and the
//     editor-request handoff for structured values.
//
// Everything here is synchronous and single-threaded: the TUI layer
// feeds one key event at a time and renders the resulting state.
// Operations that need the external structured-value editor return an
// *EditorRequest for the caller to fulfill; the edited value comes back
// through ApplyEditorResult.
package app
