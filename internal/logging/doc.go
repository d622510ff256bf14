// Package logging provides structured logging for volt.
//
// This package wraps zap with convenience functions for the patterns
// used throughout the editor: document load/save events, external
// editor launches, and wizard commits.
//
// # Silent by Default
//
// volt is a full-screen terminal application, so logging is disabled
// unless explicitly requested, since stray log lines would corrupt the TUI.
// Set the VOLT_LOG_LEVEL environment variable (debug, info, warn,
// error) to enable console output on stderr.
//
// # Structured Logging
//
// All log functions use structured fields:
//
//	logging.Info("settings saved",
//	    zap.String("path", path),
//	    zap.Int("keys", n),
//	)
package logging
