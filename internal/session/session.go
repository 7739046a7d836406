package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"subsonar/internal/analysiscache"
	"subsonar/internal/clip"
	"subsonar/internal/index"
	"subsonar/internal/logging"
	"subsonar/internal/media"
)

// Mode selects what a search run produces for each matching event.
type Mode string

const (
	// ModeNone lists matches without rendering anything.
	ModeNone Mode = "none"
	// ModeStill renders one subtitled frame at the event midpoint.
	ModeStill Mode = "still"
	// ModeClip renders a silence-aligned video clip around the event.
	ModeClip Mode = "clip"
)

// ParseMode validates a user-supplied render mode.
func ParseMode(raw string) (Mode, error) {
	switch Mode(raw) {
	case ModeNone, ModeStill, ModeClip:
		return Mode(raw), nil
	default:
		return "", fmt.Errorf("unknown render mode %q (want none, still, or clip)", raw)
	}
}

// Analyzer measures a media file's audio characteristics.
type Analyzer interface {
	MeasureVolume(ctx context.Context, path string) (media.VolumeStats, error)
	DetectSilences(ctx context.Context, path string, noiseDb, minDurationSec float64) ([]clip.SilenceInterval, error)
}

// Renderer produces still frames and clips from a media file.
type Renderer interface {
	RenderStill(ctx context.Context, path string, startMs, seekMs int64, output string) (string, error)
	RenderClip(ctx context.Context, path string, startSec, durationSec float64, output string) (string, error)
}

// Settings carries the tunables a session applies to every run.
type Settings struct {
	Wiggle       float64
	NoiseScale   float64
	SilenceFloor float64
	Limit        int
	OutputDir    string
}

// Session drives a query through the index and turns matches into rendered
// media via the analyzer and renderer collaborators.
type Session struct {
	index    *index.Index
	cache    *analysiscache.Cache
	analyzer Analyzer
	renderer Renderer
	settings Settings
	logger   *slog.Logger
}

// Outcome reports one matched event and what became of it. Err records a
// per-result rendering failure; the run as a whole continues past it.
type Outcome struct {
	Result   index.Result
	Output   string
	Strategy string
	Err      error
}

func New(ix *index.Index, analyzer Analyzer, renderer Renderer, settings Settings, logger *slog.Logger) *Session {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Session{
		index:    ix,
		cache:    ix.Cache(),
		analyzer: analyzer,
		renderer: renderer,
		settings: settings,
		logger:   logging.NewComponentLogger(logger, "session"),
	}
}

// Run searches the index for query and handles each match according to mode.
// Rendering failures are recorded on the affected outcome and the loop moves
// on; only search and output-directory failures abort the run.
func (s *Session) Run(ctx context.Context, query string, mode Mode) ([]Outcome, error) {
	if mode != ModeNone {
		if err := os.MkdirAll(s.settings.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	batch := uuid.NewString()
	slug := querySlug(query)
	s.logger.Debug("starting search run",
		logging.String(logging.FieldQuery, query),
		logging.String("mode", string(mode)),
		logging.String("batch", batch))

	var outcomes []Outcome
	for res, err := range s.index.Search(ctx, query) {
		if err != nil {
			return outcomes, err
		}

		outcome := Outcome{Result: res}
		switch mode {
		case ModeStill:
			outcome.Output = s.outputPath(slug, batch, len(outcomes), ".png")
			outcome.Strategy, outcome.Err = s.renderer.RenderStill(ctx, res.Path, res.Start, res.Midpoint(), outcome.Output)
		case ModeClip:
			silences := s.silencesFor(ctx, res.Path)
			bounds := clip.Resolve(res.Start, res.End, silences, s.settings.Wiggle)
			outcome.Output = s.outputPath(slug, batch, len(outcomes), ".mp4")
			outcome.Strategy, outcome.Err = s.renderer.RenderClip(ctx, res.Path, bounds.Start, bounds.Duration, outcome.Output)
		}
		if outcome.Err != nil {
			outcome.Output = ""
			s.logger.Warn("rendering failed",
				logging.String(logging.FieldPath, res.Path),
				logging.Error(outcome.Err))
		} else if outcome.Output != "" {
			s.logger.Debug("rendered match",
				logging.String(logging.FieldPath, res.Path),
				logging.String(logging.FieldOutput, outcome.Output),
				logging.String("strategy", outcome.Strategy))
		}

		outcomes = append(outcomes, outcome)
		if s.settings.Limit > 0 && len(outcomes) >= s.settings.Limit {
			break
		}
	}
	return outcomes, nil
}

// Analyze computes and caches the volume and silence profile for path. Used
// both during clip runs and to warm the cache at ingest time.
func (s *Session) Analyze(ctx context.Context, path string) ([]clip.SilenceInterval, error) {
	var stats media.VolumeStats
	err := s.cache.GetOrCompute(analysiscache.Key{Path: path, Kind: analysiscache.KindVolumeStats}, &stats,
		func() (any, error) {
			return s.analyzer.MeasureVolume(ctx, path)
		})
	if err != nil {
		return nil, err
	}

	noiseDb := stats.MeanDb * s.settings.NoiseScale
	minDuration := max(s.settings.Wiggle/2, s.settings.SilenceFloor)

	var silences []clip.SilenceInterval
	err = s.cache.GetOrCompute(analysiscache.Key{Path: path, Kind: analysiscache.KindSilences}, &silences,
		func() (any, error) {
			return s.analyzer.DetectSilences(ctx, path, noiseDb, minDuration)
		})
	if err != nil {
		return nil, err
	}
	return silences, nil
}

// silencesFor degrades analysis failures to an empty interval list so clip
// boundaries fall back to the plain wiggle window.
func (s *Session) silencesFor(ctx context.Context, path string) []clip.SilenceInterval {
	silences, err := s.Analyze(ctx, path)
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, media.ErrMalformedSilence) {
			level = slog.LevelInfo
		}
		s.logger.Log(ctx, level, "audio analysis failed, using default boundaries",
			logging.String(logging.FieldPath, path),
			logging.Error(err))
		return nil
	}
	return silences
}

func (s *Session) outputPath(slug, batch string, n int, ext string) string {
	name := fmt.Sprintf("%s%02d%s", slug, n, ext)
	path := filepath.Join(s.settings.OutputDir, name)
	if _, err := os.Stat(path); err == nil {
		// Keep earlier runs' output; disambiguate with the batch id.
		name = fmt.Sprintf("%s%02d-%s%s", slug, n, batch[:8], ext)
		path = filepath.Join(s.settings.OutputDir, name)
	}
	return path
}

// querySlug turns free text into a filesystem-friendly output prefix.
func querySlug(query string) string {
	slug := strings.Join(strings.Fields(query), "+")
	slug = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '"', '\'', '*', '?', '<', '>', '|':
			return '_'
		}
		return r
	}, slug)
	if slug == "" {
		slug = "search"
	}
	return slug
}
