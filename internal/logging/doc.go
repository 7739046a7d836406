// Package logging constructs the slog loggers used across subsonar.
//
// The CLI builds one logger from configuration and hands it to every core
// package; nothing in this module installs process-global logging state.
// Recoverable per-file and per-result failures are reported through the
// injected logger so batch operations can continue.
package logging
