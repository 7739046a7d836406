package deps

import (
	"os/exec"
	"strings"

	"subsonar/internal/config"
)

// Requirements lists the external binaries needed for indexing, analysis,
// and rendering, using the configured command names.
func Requirements(tools config.Tools) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     tools.FFmpeg,
			Description: "Subtitle extraction, audio analysis, and rendering",
		},
		{
			Name:        "FFprobe",
			Command:     tools.FFprobe,
			Description: "Stream inspection before indexing",
		},
	}
}

// binaryVersion reports the first line of `<binary> -version` output, which
// for the ffmpeg family identifies the build. Empty on any failure; version
// info is a nicety, not a requirement.
func binaryVersion(binary string) string {
	out, err := exec.Command(binary, "-version").Output()
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line)
}
