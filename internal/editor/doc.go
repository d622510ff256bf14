// Package editor opens JSON values in the user's external editor.
//
// A value is written to a temporary .json file, the editor resolved
// from $VISUAL or $EDITOR (falling back to vi) is run on it, and the
// file is read back and parsed once the editor exits. The package
// exposes both a blocking round trip and a split Begin/Result pair for
// callers that hand the spawned process to another runner, such as a
// bubbletea program suspending itself around the editor.
package editor
