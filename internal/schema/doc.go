// Package schema defines the catalog of known Amp settings.
//
// The schema is an explicit value constructed with Default() and passed
// into the document layer; there is no package-level mutable state.
// Each setting definition carries its key, value type, default, and
// (for enum settings) the list of valid options. Settings are grouped
// into a fixed, ordered list of sections used by the TUI sidebar.
//
// # Sections
//
// The five sections and their traits:
//   - General: plain list of settings
//   - Permissions: single-key section: its one array setting
//     (amp.permissions) is navigated item by item
//   - Tools: plain list of settings
//   - MCPs: split-panel section: server configs (object keys) on top,
//     permission rules (array items) below, sharing one cursor sequence
//   - Advanced: catch-all for keys present in the document but absent
//     from the schema
//
// # Validation
//
// Schema.Validate checks a candidate value against the expected JSON
// kind for a known key (and enum membership for StringEnum settings).
// Unknown keys always pass; there is no schema to violate.
package schema
