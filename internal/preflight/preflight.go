package preflight

import (
	"context"

	"subsonar/internal/config"
	"subsonar/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem checks that matter before a mutating
// command: the index home, rendered output, and log destinations must all be
// writable or creatable.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckWritablePath("Index directory", cfg.Paths.IndexDir),
		CheckWritablePath("Output directory", cfg.Paths.OutputDir),
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckWritablePath("Log directory", cfg.Paths.LogDir))
	}
	return results
}

// Passed reports whether every result in the set passed.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// CheckSystemDeps evaluates the external binary requirements. The deps
// command and mutating commands share this so the requirements list lives in
// one place.
func CheckSystemDeps(_ context.Context, cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.Requirements(cfg.Tools))
}
