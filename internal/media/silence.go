package media

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"subsonar/internal/clip"
)

// ErrMalformedSilence reports inconsistent silencedetect output: mismatched
// counts of silence starts, ends, and durations. Recoverable; callers fall
// back to default clip boundaries.
var ErrMalformedSilence = errors.New("malformed silence data")

var (
	silenceStartRe    = regexp.MustCompile(`silence_start: (-?[0-9.]+)`)
	silenceEndRe      = regexp.MustCompile(`silence_end: (-?[0-9.]+)`)
	silenceDurationRe = regexp.MustCompile(`silence_duration: (-?[0-9.]+)`)
)

// DetectSilences runs ffmpeg's silencedetect filter and returns the detected
// intervals sorted ascending by start.
func (r *Runner) DetectSilences(ctx context.Context, path string, noiseDb, minDurationSec float64) ([]clip.SilenceInterval, error) {
	filter := fmt.Sprintf("silencedetect=noise=%.2fdB:duration=%.3f", noiseDb, minDurationSec)
	_, stderr, err := r.run(ctx, "-loglevel", "info", "-i", path, "-af", filter, "-f", "null", "-")
	if err != nil {
		return nil, fmt.Errorf("detect silences: %s: %w", path, err)
	}

	return parseSilenceOutput(string(stderr))
}

// parseSilenceOutput extracts silence intervals from silencedetect
// diagnostics. The filter emits one start, one end, and one duration per
// interval; any count mismatch means the output cannot be trusted.
func parseSilenceOutput(output string) ([]clip.SilenceInterval, error) {
	var starts, ends, durations []float64
	for _, line := range strings.Split(output, "\n") {
		if m := silenceStartRe.FindStringSubmatch(line); len(m) > 1 {
			starts = appendFloat(starts, m[1])
			continue
		}
		// silence_end and silence_duration appear on the same line.
		if m := silenceEndRe.FindStringSubmatch(line); len(m) > 1 {
			ends = appendFloat(ends, m[1])
		}
		if m := silenceDurationRe.FindStringSubmatch(line); len(m) > 1 {
			durations = appendFloat(durations, m[1])
		}
	}

	if len(starts) != len(ends) || len(ends) != len(durations) {
		return nil, fmt.Errorf("%w: %d starts, %d ends, %d durations",
			ErrMalformedSilence, len(starts), len(ends), len(durations))
	}

	intervals := make([]clip.SilenceInterval, 0, len(starts))
	for i := range starts {
		intervals = append(intervals, clip.SilenceInterval{
			Start:    starts[i],
			End:      ends[i],
			Duration: durations[i],
		})
	}
	sort.Slice(intervals, func(i, j int) bool { return intervals[i].Start < intervals[j].Start })
	return intervals, nil
}

func appendFloat(dst []float64, raw string) []float64 {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return dst
	}
	return append(dst, value)
}
