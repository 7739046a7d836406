package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
)

// ErrExtraction reports a per-file subtitle extraction failure. It is
// recoverable: batch operations skip the file and continue.
var ErrExtraction = errors.New("subtitle extraction failed")

// ExtractSubtitles converts the file's subtitle track to ASS and parses it
// into events. The container is probed first so files without a convertible
// text track fail fast. Files without a usable subtitle track fail with
// ErrExtraction.
func (r *Runner) ExtractSubtitles(ctx context.Context, path string) ([]Event, error) {
	probe, err := r.Probe(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrExtraction, path, err)
	}
	if probe.SubtitleStreamCount() == 0 {
		return nil, fmt.Errorf("%w: %s: no subtitle streams", ErrExtraction, path)
	}
	// Bitmap tracks (PGS, VobSub) cannot be converted to ASS.
	if !probe.HasTextSubtitles() {
		return nil, fmt.Errorf("%w: %s: no text subtitle track", ErrExtraction, path)
	}

	stdout, _, err := r.run(ctx, "-loglevel", "error", "-i", path, "-f", "ass", "-")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrExtraction, path, err)
	}

	events, err := parseASS(bytes.NewReader(stdout))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrExtraction, path, err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: %s: no subtitle events", ErrExtraction, path)
	}
	return events, nil
}
