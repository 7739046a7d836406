package index

import (
	"context"

	"subsonar/internal/media"
)

// Result is one indexed subtitle event returned by Search. Path is always a
// filesystem path usable for downstream I/O regardless of the index's
// storage policy. Times are milliseconds.
type Result struct {
	Path    string
	Start   int64
	End     int64
	Content string
}

// Midpoint returns the temporal center of the event in milliseconds.
func (r Result) Midpoint() int64 {
	return (r.Start + r.End) / 2
}

// Extractor produces subtitle events for a media file. Satisfied by
// media.Runner.
type Extractor interface {
	ExtractSubtitles(ctx context.Context, path string) ([]media.Event, error)
}

// AddOptions tunes a single Add call.
type AddOptions struct {
	// Relative overrides the index's stored-path policy for this call.
	Relative *bool
	// OnIndexed is invoked after each file's events commit. filePath is
	// the resolved filesystem path, stored the path as recorded in the
	// index.
	OnIndexed func(filePath, stored string, events int)
}

// RemoveOptions tunes a single Remove call.
type RemoveOptions struct {
	Relative *bool
	// OnRemoved is invoked per file with the number of deleted events.
	OnRemoved func(filePath, stored string, events int)
}
