package testsupport

import (
	"context"
	"fmt"
	"testing"

	"subsonar/internal/index"
	"subsonar/internal/media"
)

// MustCreateIndex creates a fresh index under a temp directory and registers
// cleanup.
func MustCreateIndex(t testing.TB, relative bool) *index.Index {
	t.Helper()

	ix, err := index.Create(t.TempDir(), relative, nil)
	if err != nil {
		t.Fatalf("index.Create: %v", err)
	}
	t.Cleanup(func() {
		ix.Close()
	})
	return ix
}

// StubExtractor returns canned subtitle events per path without touching
// ffmpeg.
type StubExtractor struct {
	Events map[string][]media.Event
	Errs   map[string]error
	Calls  []string
}

func (s *StubExtractor) ExtractSubtitles(_ context.Context, path string) ([]media.Event, error) {
	s.Calls = append(s.Calls, path)
	if err, ok := s.Errs[path]; ok {
		return nil, err
	}
	if events, ok := s.Events[path]; ok {
		return events, nil
	}
	return nil, fmt.Errorf("%w: %s: no stubbed events", media.ErrExtraction, path)
}

// Dialogue builds a plain subtitle event.
func Dialogue(startMs, endMs int64, text string) media.Event {
	return media.Event{StartMs: startMs, EndMs: endMs, Text: text}
}

// Comment builds a comment subtitle event.
func Comment(startMs, endMs int64, text string) media.Event {
	return media.Event{StartMs: startMs, EndMs: endMs, Comment: true, Text: text}
}
