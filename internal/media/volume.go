package media

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
)

// VolumeStats summarizes a file's audio level as reported by ffmpeg's
// volumedetect filter.
type VolumeStats struct {
	MeanDb float64 `json:"mean_db"`
	MaxDb  float64 `json:"max_db"`
}

var (
	meanVolumeRe = regexp.MustCompile(`mean_volume: (-?[0-9.]+) dB`)
	maxVolumeRe  = regexp.MustCompile(`max_volume: (-?[0-9.]+) dB`)
)

// MeasureVolume runs ffmpeg's volumedetect filter over the file's audio.
func (r *Runner) MeasureVolume(ctx context.Context, path string) (VolumeStats, error) {
	_, stderr, err := r.run(ctx, "-loglevel", "info", "-i", path, "-af", "volumedetect", "-f", "null", "-")
	if err != nil {
		return VolumeStats{}, fmt.Errorf("measure volume: %s: %w", path, err)
	}

	stats := VolumeStats{}
	mean := meanVolumeRe.FindStringSubmatch(string(stderr))
	max := maxVolumeRe.FindStringSubmatch(string(stderr))
	if len(mean) < 2 || len(max) < 2 {
		return VolumeStats{}, fmt.Errorf("measure volume: %s: no volumedetect output", path)
	}

	if stats.MeanDb, err = strconv.ParseFloat(mean[1], 64); err != nil {
		return VolumeStats{}, fmt.Errorf("measure volume: parse mean %q: %w", mean[1], err)
	}
	if stats.MaxDb, err = strconv.ParseFloat(max[1], 64); err != nil {
		return VolumeStats{}, fmt.Errorf("measure volume: parse max %q: %w", max[1], err)
	}
	return stats, nil
}
