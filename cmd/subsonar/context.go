package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"subsonar/internal/config"
	"subsonar/internal/index"
	"subsonar/internal/logging"
	"subsonar/internal/media"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureLogger builds the process logger from config. Diagnostics go to
// stderr; when a log directory is configured they are duplicated to a file.
func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil || cfg == nil {
			c.logger = logging.NewNop()
			return
		}

		var writer io.Writer = os.Stderr
		if cfg.Paths.LogDir != "" {
			file, fileErr := logging.OpenLogFile(filepath.Join(cfg.Paths.LogDir, "subsonar.log"))
			if fileErr == nil {
				// The file shares the process lifetime; no explicit close.
				writer = io.MultiWriter(os.Stderr, file)
			}
		}

		logger, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Writer: writer,
		})
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) runner() (*media.Runner, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return media.NewRunner(cfg.Tools.FFmpeg, cfg.Tools.FFprobe), nil
}

func (c *commandContext) openIndex(dir string) (*index.Index, error) {
	expanded, err := config.ExpandPath(dir)
	if err != nil {
		return nil, err
	}
	return index.Open(expanded, c.ensureLogger())
}
