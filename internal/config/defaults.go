package config

const (
	defaultIndexDir            = "~/.local/share/subsonar/index"
	defaultOutputDir           = "."
	defaultLogDir              = "~/.local/share/subsonar/logs"
	defaultFFmpegBinary        = "ffmpeg"
	defaultFFprobeBinary       = "ffprobe"
	defaultWiggleSeconds       = 1.0
	defaultNoiseScale          = 1.1
	defaultSilenceFloorSeconds = 0.1
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			IndexDir:  defaultIndexDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Tools: Tools{
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
		},
		Search: Search{
			WiggleSeconds:       defaultWiggleSeconds,
			NoiseScale:          defaultNoiseScale,
			SilenceFloorSeconds: defaultSilenceFloorSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
