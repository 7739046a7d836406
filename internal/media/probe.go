package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

// ProbeResult represents the parsed output from an ffprobe inspection.
type ProbeResult struct {
	Streams []Stream `json:"streams"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
}

var textSubtitleCodecs = map[string]struct{}{
	"ass":      {},
	"ssa":      {},
	"subrip":   {},
	"srt":      {},
	"webvtt":   {},
	"mov_text": {},
}

// Probe executes ffprobe against the provided path and decodes the JSON
// response.
func (r *Runner) Probe(ctx context.Context, path string) (ProbeResult, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return ProbeResult{}, fmt.Errorf("probe: empty path")
	}

	cmd := exec.CommandContext(ctx, r.FFprobe,
		"-v", "error", "-hide_banner", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		detail := ""
		if exitErr, ok := err.(*exec.ExitError); ok {
			detail = strings.TrimSpace(string(exitErr.Stderr))
		}
		return ProbeResult{}, fmt.Errorf("probe: %s: %w: %s", path, err, detail)
	}

	var result ProbeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return ProbeResult{}, fmt.Errorf("probe parse: %w", err)
	}
	return result, nil
}

// SubtitleStreamCount returns the number of subtitle streams discovered.
func (p ProbeResult) SubtitleStreamCount() int {
	count := 0
	for _, stream := range p.Streams {
		if strings.EqualFold(stream.CodecType, "subtitle") {
			count++
		}
	}
	return count
}

// HasTextSubtitles reports whether any subtitle stream carries a text codec
// that the subtitles filter can burn directly.
func (p ProbeResult) HasTextSubtitles() bool {
	for _, stream := range p.Streams {
		if !strings.EqualFold(stream.CodecType, "subtitle") {
			continue
		}
		if _, ok := textSubtitleCodecs[strings.ToLower(stream.CodecName)]; ok {
			return true
		}
	}
	return false
}
