package session_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subsonar/internal/clip"
	"subsonar/internal/index"
	"subsonar/internal/media"
	"subsonar/internal/session"
	"subsonar/internal/testsupport"
)

type stubAnalyzer struct {
	stats       media.VolumeStats
	statsErr    error
	silences    []clip.SilenceInterval
	silencesErr error

	volumeCalls  int
	silenceCalls int
	lastNoiseDb  float64
	lastMinDur   float64
}

func (a *stubAnalyzer) MeasureVolume(context.Context, string) (media.VolumeStats, error) {
	a.volumeCalls++
	return a.stats, a.statsErr
}

func (a *stubAnalyzer) DetectSilences(_ context.Context, _ string, noiseDb, minDurationSec float64) ([]clip.SilenceInterval, error) {
	a.silenceCalls++
	a.lastNoiseDb = noiseDb
	a.lastMinDur = minDurationSec
	return a.silences, a.silencesErr
}

type renderCall struct {
	path     string
	output   string
	startMs  int64
	seekMs   int64
	startSec float64
	duration float64
}

type stubRenderer struct {
	stills []renderCall
	clips  []renderCall
	err    error
}

func (r *stubRenderer) RenderStill(_ context.Context, path string, startMs, seekMs int64, output string) (string, error) {
	r.stills = append(r.stills, renderCall{path: path, output: output, startMs: startMs, seekMs: seekMs})
	return "subtitles-filter", r.err
}

func (r *stubRenderer) RenderClip(_ context.Context, path string, startSec, durationSec float64, output string) (string, error) {
	r.clips = append(r.clips, renderCall{path: path, output: output, startSec: startSec, duration: durationSec})
	return "subtitles-filter", r.err
}

func seedIndex(t *testing.T, lines ...string) (*index.Index, string) {
	t.Helper()
	ix := testsupport.MustCreateIndex(t, false)
	file := filepath.Join(t.TempDir(), "show.mkv")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write media file: %v", err)
	}

	events := make([]media.Event, 0, len(lines))
	for i, line := range lines {
		start := int64(i+1) * 10000
		events = append(events, testsupport.Dialogue(start, start+2000, line))
	}
	extractor := &testsupport.StubExtractor{Events: map[string][]media.Event{file: events}}
	if err := ix.Add(context.Background(), extractor, file, index.AddOptions{}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	return ix, file
}

func settings(t *testing.T) session.Settings {
	t.Helper()
	return session.Settings{
		Wiggle:       1.0,
		NoiseScale:   1.1,
		SilenceFloor: 0.1,
		OutputDir:    t.TempDir(),
	}
}

func TestRunNoneListsWithoutRendering(t *testing.T) {
	ix, _ := seedIndex(t, "hello there")
	renderer := &stubRenderer{}
	s := session.New(ix, &stubAnalyzer{}, renderer, settings(t), nil)

	outcomes, err := s.Run(context.Background(), "hello", session.ModeNone)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(outcomes) != 1 {
		t.Fatalf("got %d outcomes, want 1", len(outcomes))
	}
	if outcomes[0].Output != "" {
		t.Errorf("none mode produced output %q", outcomes[0].Output)
	}
	if len(renderer.stills)+len(renderer.clips) != 0 {
		t.Error("none mode invoked the renderer")
	}
}

func TestRunStillSeeksToMidpoint(t *testing.T) {
	ix, file := seedIndex(t, "frame me")
	analyzer := &stubAnalyzer{}
	renderer := &stubRenderer{}
	s := session.New(ix, analyzer, renderer, settings(t), nil)

	outcomes, err := s.Run(context.Background(), "frame", session.ModeStill)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(renderer.stills) != 1 {
		t.Fatalf("got %d still renders, want 1", len(renderer.stills))
	}
	call := renderer.stills[0]
	if call.path != file {
		t.Errorf("rendered path = %q, want %q", call.path, file)
	}
	if call.startMs != 10000 || call.seekMs != 11000 {
		t.Errorf("seek = (%d, %d), want (10000, 11000)", call.startMs, call.seekMs)
	}
	if analyzer.volumeCalls != 0 {
		t.Error("still mode ran audio analysis")
	}
	if !strings.HasSuffix(outcomes[0].Output, ".png") {
		t.Errorf("still output %q lacks .png suffix", outcomes[0].Output)
	}
}

func TestRunClipUsesDerivedAnalysisParameters(t *testing.T) {
	ix, _ := seedIndex(t, "clip me")
	analyzer := &stubAnalyzer{stats: media.VolumeStats{MeanDb: -20, MaxDb: -3}}
	renderer := &stubRenderer{}
	s := session.New(ix, analyzer, renderer, settings(t), nil)

	if _, err := s.Run(context.Background(), "clip", session.ModeClip); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if analyzer.silenceCalls != 1 {
		t.Fatalf("got %d silence calls, want 1", analyzer.silenceCalls)
	}
	if got, want := analyzer.lastNoiseDb, -20*1.1; got != want {
		t.Errorf("noiseDb = %v, want %v", got, want)
	}
	if got, want := analyzer.lastMinDur, 0.5; got != want {
		t.Errorf("minDuration = %v, want %v", got, want)
	}
	if len(renderer.clips) != 1 {
		t.Fatalf("got %d clip renders, want 1", len(renderer.clips))
	}
	// Default boundaries for event 10000..12000ms with wiggle 1.0.
	call := renderer.clips[0]
	if call.startSec != 9.5 {
		t.Errorf("clip start = %v, want 9.5", call.startSec)
	}
	if call.duration != 3.0 {
		t.Errorf("clip duration = %v, want 3.0", call.duration)
	}
}

func TestRunClipAnalysisIsCachedAcrossResults(t *testing.T) {
	ix, _ := seedIndex(t, "repeat line one", "repeat line two")
	analyzer := &stubAnalyzer{stats: media.VolumeStats{MeanDb: -18}}
	s := session.New(ix, analyzer, &stubRenderer{}, settings(t), nil)

	outcomes, err := s.Run(context.Background(), "repeat", session.ModeClip)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(outcomes))
	}
	if analyzer.volumeCalls != 1 || analyzer.silenceCalls != 1 {
		t.Errorf("analysis ran (%d, %d) times, want cached single run",
			analyzer.volumeCalls, analyzer.silenceCalls)
	}
}

func TestRunClipDegradesOnAnalysisFailure(t *testing.T) {
	ix, _ := seedIndex(t, "still works")
	analyzer := &stubAnalyzer{statsErr: errors.New("no audio stream")}
	renderer := &stubRenderer{}
	s := session.New(ix, analyzer, renderer, settings(t), nil)

	outcomes, err := s.Run(context.Background(), "works", session.ModeClip)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(outcomes) != 1 || outcomes[0].Err != nil {
		t.Fatalf("analysis failure was not degraded: %+v", outcomes)
	}
	if len(renderer.clips) != 1 {
		t.Fatal("clip not rendered with default boundaries")
	}
}

func TestRunContinuesPastRenderFailure(t *testing.T) {
	ix, _ := seedIndex(t, "flaky first", "flaky second")
	renderer := &stubRenderer{err: errors.New("encoder exploded")}
	s := session.New(ix, &stubAnalyzer{}, renderer, settings(t), nil)

	outcomes, err := s.Run(context.Background(), "flaky", session.ModeStill)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(outcomes))
	}
	for i, outcome := range outcomes {
		if outcome.Err == nil {
			t.Errorf("outcome %d missing render error", i)
		}
		if outcome.Output != "" {
			t.Errorf("outcome %d kept output path after failure", i)
		}
	}
}

func TestRunHonorsLimit(t *testing.T) {
	ix, _ := seedIndex(t, "many one", "many two", "many three")
	cfg := settings(t)
	cfg.Limit = 2
	s := session.New(ix, &stubAnalyzer{}, &stubRenderer{}, cfg, nil)

	outcomes, err := s.Run(context.Background(), "many", session.ModeNone)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(outcomes))
	}
}

func TestOutputNamesUseQuerySlug(t *testing.T) {
	ix, _ := seedIndex(t, "name this output")
	s := session.New(ix, &stubAnalyzer{}, &stubRenderer{}, settings(t), nil)

	outcomes, err := s.Run(context.Background(), "name output", session.ModeStill)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	base := filepath.Base(outcomes[0].Output)
	if base != "name+output00.png" {
		t.Errorf("output name = %q, want name+output00.png", base)
	}
}

func TestParseMode(t *testing.T) {
	for _, raw := range []string{"none", "still", "clip"} {
		if _, err := session.ParseMode(raw); err != nil {
			t.Errorf("ParseMode(%q) errored: %v", raw, err)
		}
	}
	if _, err := session.ParseMode("gif"); err == nil {
		t.Error("ParseMode accepted unknown mode")
	}
}
