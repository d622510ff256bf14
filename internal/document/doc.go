// Package document manages loading, editing, and saving the Amp
// settings.json file.
//
// A Document is an overlay of explicit user overrides on top of schema
// defaults: only keys the user actually set are stored (and persisted),
// while Get falls back to the schema default for known keys. Keys the
// schema does not recognize are preserved byte-for-byte across
// load/save so hand-edited or newer settings are never lost.
//
// # File Location
//
// The settings file lives in the platform config directory:
//   - Linux: $XDG_CONFIG_HOME/amp/settings.json or $HOME/.config/amp/settings.json
//   - macOS: $HOME/.config/amp/settings.json
//   - Windows: %LOCALAPPDATA%\amp\settings.json
//
// A missing or blank file is an empty document, not an error. Malformed
// JSON is a hard load error; there is no best-effort partial load.
//
// # Persistence
//
// Save writes pretty-printed JSON with sorted keys and a trailing
// newline, creating parent directories as needed. Writes go through a
// temporary file and an atomic rename to prevent corruption on crash.
// The dirty flag is set by the first mutation and cleared only by a
// successful save.
package document
