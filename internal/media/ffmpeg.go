package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes ffmpeg-family binaries with the flags shared by every
// invocation.
type Runner struct {
	FFmpeg  string
	FFprobe string
}

// NewRunner returns a Runner using the provided binaries, defaulting to the
// bare command names resolved on PATH.
func NewRunner(ffmpeg, ffprobe string) *Runner {
	ffmpeg = strings.TrimSpace(ffmpeg)
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	ffprobe = strings.TrimSpace(ffprobe)
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}
	return &Runner{FFmpeg: ffmpeg, FFprobe: ffprobe}
}

// run executes ffmpeg with the standard prelude flags and returns stdout and
// stderr separately. Filter diagnostics (silencedetect, volumedetect) arrive
// on stderr even on success, so stderr is captured at info level.
func (r *Runner) run(ctx context.Context, args ...string) ([]byte, []byte, error) {
	full := append([]string{"-nostdin", "-y", "-hide_banner", "-nostats"}, args...)
	cmd := exec.CommandContext(ctx, r.FFmpeg, full...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), stderr.Bytes(), fmt.Errorf("ffmpeg: %w: %s", err, firstLines(stderr.String(), 4))
	}
	return stdout.Bytes(), stderr.Bytes(), nil
}

func firstLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, " | "))
}
