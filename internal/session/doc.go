// Package session orchestrates a search run: it pulls matches from the
// index, derives silence-aligned clip boundaries from cached audio analysis,
// and hands rendering off to the media layer. Per-result failures are
// reported and skipped so one bad file never sinks a whole run.
package session
