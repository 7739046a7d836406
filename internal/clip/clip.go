package clip

import (
	"errors"
	"math"
)

// ErrInvalidDuration reports a computed clip duration below zero. Resolve
// clamps its result, so this is only surfaced by callers double-checking
// values that crossed an API boundary.
var ErrInvalidDuration = errors.New("invalid clip duration")

// SilenceInterval is a detected low-audio-energy span. Duration is stored as
// reported by the detector, not re-derived. Lists of intervals are always
// kept sorted ascending by Start.
type SilenceInterval struct {
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
}

// Boundaries is a resolved clip placement in seconds.
type Boundaries struct {
	Start    float64
	Duration float64
}

// Resolve computes clip boundaries for a subtitle event, snapping the cut
// points to nearby silence when possible.
//
// Without a qualifying silence the clip is the event padded by wiggle:
// start = eventStart - wiggle/2, duration = eventLength + wiggle.
//
// The pre-roll scan walks the intervals ascending and takes the first whose
// end falls within wiggle of the event start. The post-roll scan walks
// descending and takes the first whose start falls within wiggle of the event
// end. The two scans deliberately pick the earliest-starting and
// latest-starting qualifying silences rather than the ones closest to the
// event; the bias trims leading silence more aggressively.
func Resolve(startMs, endMs int64, silences []SilenceInterval, wiggle float64) Boundaries {
	eventStart := float64(startMs) / 1000
	eventEnd := float64(endMs) / 1000

	start := eventStart - wiggle/2
	duration := (eventEnd - eventStart) + wiggle

	for _, s := range silences {
		if s.End < eventStart-wiggle || s.End > eventStart+wiggle {
			continue
		}
		start = math.Max(s.End-math.Min(s.Duration/3, wiggle/2), eventStart-wiggle)
		start = math.Max(start, 0)
		break
	}

	for i := len(silences) - 1; i >= 0; i-- {
		s := silences[i]
		if s.Start < eventEnd-wiggle || s.Start > eventEnd+wiggle {
			continue
		}
		cut := s.Start + math.Min(s.Duration/3, wiggle/2)
		duration = math.Min(cut-start, (eventEnd+wiggle)-start)
		break
	}

	if duration < 0 {
		duration = 0
	}

	return Boundaries{Start: start, Duration: duration}
}
