package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"subsonar/internal/index"
	"subsonar/internal/logging"
	"subsonar/internal/preflight"
	"subsonar/internal/session"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var relative bool
	var absolute bool
	var analyze bool
	var wiggle float64

	cmd := &cobra.Command{
		Use:   "add <index-dir> <path>...",
		Short: "Index the subtitle text of video files or directories",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := checkPreflight(cmd, ctx); err != nil {
				return err
			}

			ix, err := ctx.openIndex(args[0])
			if err != nil {
				return err
			}
			defer ix.Close()

			runner, err := ctx.runner()
			if err != nil {
				return err
			}

			var sess *session.Session
			if analyze {
				settings := sessionSettings(cfg, wiggle, 0, "")
				sess = session.New(ix, runner, runner, settings, ctx.ensureLogger())
			}

			out := cmd.OutOrStdout()
			opts := index.AddOptions{
				Relative: policyOverride(cmd, relative, absolute),
				OnIndexed: func(filePath, stored string, events int) {
					fmt.Fprintf(out, "Indexed %s (%d events)\n", stored, events)
					if sess == nil {
						return
					}
					resolved, absErr := filepath.Abs(filePath)
					if absErr != nil {
						resolved = filePath
					}
					if _, analyzeErr := sess.Analyze(cmd.Context(), resolved); analyzeErr != nil {
						ctx.ensureLogger().Warn("audio analysis failed during add",
							logging.String(logging.FieldPath, resolved),
							logging.Error(analyzeErr))
					}
				},
			}

			for _, path := range args[1:] {
				if err := ix.Add(cmd.Context(), runner, path, opts); err != nil {
					return fmt.Errorf("add %s: %w", path, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&relative, "relative", false, "Store these paths relative to the index directory")
	cmd.Flags().BoolVar(&absolute, "absolute", false, "Store these paths as absolute")
	cmd.Flags().BoolVar(&analyze, "analyze", false, "Pre-compute audio analysis for clip rendering")
	cmd.Flags().Float64Var(&wiggle, "wiggle", 0, "Silence-snap tolerance in seconds used during --analyze")
	cmd.MarkFlagsMutuallyExclusive("relative", "absolute")
	return cmd
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	var relative bool
	var absolute bool

	cmd := &cobra.Command{
		Use:   "remove <index-dir> <path>...",
		Short: "Remove files or directories from the index",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, err := ctx.openIndex(args[0])
			if err != nil {
				return err
			}
			defer ix.Close()

			out := cmd.OutOrStdout()
			opts := index.RemoveOptions{
				Relative: policyOverride(cmd, relative, absolute),
				OnRemoved: func(_, stored string, events int) {
					if events > 0 {
						fmt.Fprintf(out, "Removed %s (%d events)\n", stored, events)
					}
				},
			}

			for _, path := range args[1:] {
				if err := ix.Remove(cmd.Context(), path, opts); err != nil {
					return fmt.Errorf("remove %s: %w", path, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&relative, "relative", false, "Resolve these paths relative to the index directory")
	cmd.Flags().BoolVar(&absolute, "absolute", false, "Resolve these paths as absolute")
	cmd.MarkFlagsMutuallyExclusive("relative", "absolute")
	return cmd
}

// policyOverride maps the --relative/--absolute flag pair onto an optional
// override of the index's stored-path policy.
func policyOverride(cmd *cobra.Command, relative, absolute bool) *bool {
	switch {
	case cmd.Flags().Changed("relative") && relative:
		value := true
		return &value
	case cmd.Flags().Changed("absolute") && absolute:
		value := false
		return &value
	default:
		return nil
	}
}

func checkPreflight(cmd *cobra.Command, ctx *commandContext) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	results := preflight.RunAll(cmd.Context(), cfg)
	if preflight.Passed(results) {
		return nil
	}
	var failures []string
	for _, r := range results {
		if !r.Passed {
			failures = append(failures, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	return fmt.Errorf("preflight failed: %s", strings.Join(failures, "; "))
}
