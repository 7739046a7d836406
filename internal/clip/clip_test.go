package clip

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestResolveWithoutSilences(t *testing.T) {
	b := Resolve(1000, 3000, nil, 1.0)
	if !almostEqual(b.Start, 0.5) {
		t.Errorf("Start = %v, want 0.5", b.Start)
	}
	if !almostEqual(b.Duration, 3.0) {
		t.Errorf("Duration = %v, want 3.0", b.Duration)
	}
}

func TestResolvePreRollSnap(t *testing.T) {
	silences := []SilenceInterval{{Start: 9.2, End: 9.6, Duration: 0.4}}
	b := Resolve(10000, 12000, silences, 1.0)

	want := 9.6 - math.Min(0.4/3, 0.5)
	if !almostEqual(b.Start, want) {
		t.Errorf("Start = %v, want %v", b.Start, want)
	}
}

func TestResolvePreRollClampedToWindow(t *testing.T) {
	// A long silence ending just inside the window must not pull the start
	// before eventStart - wiggle.
	silences := []SilenceInterval{{Start: 0.0, End: 9.1, Duration: 9.1}}
	b := Resolve(10000, 12000, silences, 1.0)

	if !almostEqual(b.Start, 9.0) {
		t.Errorf("Start = %v, want 9.0", b.Start)
	}
}

func TestResolvePreRollNeverNegative(t *testing.T) {
	silences := []SilenceInterval{{Start: 0.0, End: 0.3, Duration: 0.3}}
	b := Resolve(200, 1200, silences, 1.0)

	if b.Start < 0 {
		t.Errorf("Start = %v, want >= 0", b.Start)
	}
}

func TestResolvePostRollSnap(t *testing.T) {
	silences := []SilenceInterval{{Start: 12.3, End: 12.9, Duration: 0.6}}
	b := Resolve(10000, 12000, silences, 1.0)

	cut := 12.3 + math.Min(0.6/3, 0.5)
	want := cut - b.Start
	if !almostEqual(b.Duration, want) {
		t.Errorf("Duration = %v, want %v", b.Duration, want)
	}
}

func TestResolvePostRollCappedAtWindow(t *testing.T) {
	// Cut point beyond eventEnd + wiggle is capped at the window edge.
	silences := []SilenceInterval{{Start: 12.9, End: 16.0, Duration: 3.1}}
	b := Resolve(10000, 12000, silences, 1.0)

	if got, want := b.Duration, 13.0-b.Start; !almostEqual(got, want) {
		t.Errorf("Duration = %v, want %v", got, want)
	}
}

func TestResolveDurationClampedToZero(t *testing.T) {
	// A post-roll silence that starts before the resolved clip start would
	// produce a negative duration; the resolver clamps instead of failing.
	silences := []SilenceInterval{
		{Start: 9.0, End: 10.9, Duration: 1.9},
		{Start: 9.3, End: 9.35, Duration: 0.05},
	}
	b := Resolve(10000, 10100, silences, 1.0)

	if b.Duration != 0 {
		t.Errorf("Duration = %v, want 0", b.Duration)
	}
}

func TestResolvePicksEarliestPreRollMatch(t *testing.T) {
	// Two qualifying silences before the event: the ascending scan stops at
	// the earliest-starting one even though the second ends closer to the
	// event boundary.
	silences := []SilenceInterval{
		{Start: 9.0, End: 9.2, Duration: 0.2},
		{Start: 9.5, End: 9.9, Duration: 0.4},
	}
	b := Resolve(10000, 12000, silences, 1.0)

	want := math.Max(9.2-math.Min(0.2/3, 0.5), 9.0)
	if !almostEqual(b.Start, want) {
		t.Errorf("Start = %v, want %v (earliest match)", b.Start, want)
	}
}

func TestResolvePicksLatestPostRollMatch(t *testing.T) {
	silences := []SilenceInterval{
		{Start: 11.2, End: 11.4, Duration: 0.2},
		{Start: 12.8, End: 13.2, Duration: 0.4},
	}
	b := Resolve(10000, 12000, silences, 1.0)

	cut := 12.8 + math.Min(0.4/3, 0.5)
	want := math.Min(cut-b.Start, 13.0-b.Start)
	if !almostEqual(b.Duration, want) {
		t.Errorf("Duration = %v, want %v (latest match)", b.Duration, want)
	}
}

func TestResolveIgnoresSilencesOutsideWindow(t *testing.T) {
	silences := []SilenceInterval{
		{Start: 2.0, End: 2.5, Duration: 0.5},
		{Start: 20.0, End: 21.0, Duration: 1.0},
	}
	b := Resolve(10000, 12000, silences, 1.0)

	if !almostEqual(b.Start, 9.5) || !almostEqual(b.Duration, 3.0) {
		t.Errorf("got (%v, %v), want default (9.5, 3.0)", b.Start, b.Duration)
	}
}
