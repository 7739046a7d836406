package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// A renderStrategy is one way of producing output with subtitles visible.
// Strategies are tried in order and rendering stops at the first success;
// the winning strategy's name is returned so callers can report it.
type renderStrategy struct {
	name   string
	filter func(sourcePath string) []string
}

// Strategy order: burn text subtitles, overlay picture subtitles, then give
// up on subtitles and render the bare frame.
var stillStrategies = []renderStrategy{
	{
		name: "subtitles-filter",
		filter: func(sourcePath string) []string {
			return []string{"-filter_complex", "subtitles='" + escapeFilterPath(sourcePath) + "'"}
		},
	},
	{
		name: "overlay",
		filter: func(string) []string {
			return []string{"-filter_complex", "[0:v][0:s]overlay[v]", "-map", "[v]"}
		},
	},
	{
		name:   "plain",
		filter: func(string) []string { return nil },
	},
}

// RenderStill writes a single frame at seekMs to output. The two-stage seek
// (fast to startMs, then accurate with -copyts to seekMs) keeps subtitle
// timing aligned with the container timestamps.
func (r *Runner) RenderStill(ctx context.Context, path string, startMs, seekMs int64, output string) (string, error) {
	base := []string{
		"-loglevel", "error",
		"-ss", fmtMs(startMs),
		"-i", path,
		"-copyts",
		"-ss", fmtMs(seekMs),
	}
	tail := []string{"-vframes", "1", "-f", "image2", output}
	return r.renderWithFallback(ctx, stillStrategies, base, tail, path, output)
}

// RenderClip writes a short video clip starting at startSec to output,
// burning subtitles when a strategy for them succeeds.
func (r *Runner) RenderClip(ctx context.Context, path string, startSec, durationSec float64, output string) (string, error) {
	base := []string{
		"-loglevel", "error",
		"-ss", fmtSeconds(startSec),
		"-i", path,
		"-t", fmtSeconds(durationSec),
	}
	tail := []string{
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "23",
		"-c:a", "aac",
		output,
	}
	return r.renderWithFallback(ctx, stillStrategies, base, tail, path, output)
}

func (r *Runner) renderWithFallback(ctx context.Context, strategies []renderStrategy, base, tail []string, sourcePath, output string) (string, error) {
	var errs []error
	for _, strategy := range strategies {
		args := append([]string{}, base...)
		args = append(args, strategy.filter(sourcePath)...)
		args = append(args, tail...)

		if _, _, err := r.run(ctx, args...); err != nil {
			// A failed attempt can leave a partial file behind.
			_ = os.Remove(output)
			errs = append(errs, fmt.Errorf("%s: %w", strategy.name, err))
			continue
		}
		return strategy.name, nil
	}
	return "", fmt.Errorf("render %s: all strategies failed: %w", output, errors.Join(errs...))
}

func fmtMs(ms int64) string {
	return fmtSeconds(float64(ms) / 1000)
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

// escapeFilterPath escapes the characters the filter graph parser treats
// specially inside a quoted subtitles= argument.
func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, `\`, `\\`)
	p = strings.ReplaceAll(p, `'`, `\'`)
	p = strings.ReplaceAll(p, `:`, `\:`)
	return p
}
