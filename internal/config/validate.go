package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSearch() error {
	if c.Search.WiggleSeconds < 0 {
		return errors.New("search.wiggle_seconds must not be negative")
	}
	if c.Search.NoiseScale <= 0 {
		return errors.New("search.noise_scale must be positive")
	}
	if c.Search.SilenceFloorSeconds < 0 {
		return errors.New("search.silence_floor_seconds must not be negative")
	}
	if c.Search.ResultLimit < 0 {
		return errors.New("search.result_limit must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}
