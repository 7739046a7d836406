package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, path, exists, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Error("reported existing file for missing path")
	}
	if path == "" {
		t.Error("resolved path missing")
	}
	if cfg.Search.WiggleSeconds != 1.0 {
		t.Errorf("wiggle default = %v, want 1.0", cfg.Search.WiggleSeconds)
	}
	if cfg.Tools.FFmpeg != "ffmpeg" || cfg.Tools.FFprobe != "ffprobe" {
		t.Errorf("tool defaults = %+v", cfg.Tools)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Errorf("logging defaults = %+v", cfg.Logging)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
output_dir = "` + filepath.Join(dir, "out") + `"

[search]
wiggle_seconds = 2.5
result_limit = 7

[logging]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolution = (%q, %v)", resolved, exists)
	}
	if cfg.Search.WiggleSeconds != 2.5 || cfg.Search.ResultLimit != 7 {
		t.Errorf("search overrides not applied: %+v", cfg.Search)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging level = %q", cfg.Logging.Level)
	}
	// Untouched sections keep their defaults.
	if cfg.Search.NoiseScale != 1.1 {
		t.Errorf("noise scale default lost: %v", cfg.Search.NoiseScale)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"negative wiggle": "[search]\nwiggle_seconds = -1.0\n",
		"zero noise":      "[search]\nnoise_scale = -0.5\n",
		"bad log format":  "[logging]\nformat = \"xml\"\n",
		"bad log level":   "[logging]\nlevel = \"loud\"\n",
	}
	for name, content := range cases {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, _, _, err := Load(path); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	got, err := ExpandPath("~/subsonar-test")
	if err != nil {
		t.Fatalf("ExpandPath failed: %v", err)
	}
	if !strings.HasPrefix(got, home) {
		t.Errorf("expanded path %q not under home %q", got, home)
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(payload), "wiggle_seconds") {
		t.Error("sample missing search settings")
	}

	if err := WriteSample(path); err == nil {
		t.Error("expected error writing over existing config")
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("directory %q not created: %v", dir, err)
		}
	}
}
