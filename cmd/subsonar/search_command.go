package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"subsonar/internal/config"
	"subsonar/internal/session"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var render string
	var wiggle float64
	var limit int
	var outDir string

	cmd := &cobra.Command{
		Use:   "search <index-dir> <query>...",
		Short: "Search indexed dialogue and optionally render matches",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			mode, err := session.ParseMode(render)
			if err != nil {
				return err
			}
			if mode != session.ModeNone {
				if err := checkPreflight(cmd, ctx); err != nil {
					return err
				}
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

			settings := sessionSettings(cfg, wiggle, limit, outDir)
			sess := session.New(ix, runner, runner, settings, ctx.ensureLogger())

			query := strings.Join(args[1:], " ")
			outcomes, err := sess.Run(cmd.Context(), query, mode)
			if err != nil {
				return err
			}

			printOutcomes(cmd, outcomes, mode)
			return nil
		},
	}

	cmd.Flags().StringVar(&render, "render", string(session.ModeNone), "What to produce per match: none, still, or clip")
	cmd.Flags().Float64Var(&wiggle, "wiggle", 0, "Silence-snap tolerance in seconds")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of matches to handle (0 = all)")
	cmd.Flags().StringVar(&outDir, "out", "", "Directory for rendered output")
	return cmd
}

// sessionSettings merges config defaults with per-command flag overrides.
func sessionSettings(cfg *config.Config, wiggle float64, limit int, outDir string) session.Settings {
	settings := session.Settings{
		Wiggle:       cfg.Search.WiggleSeconds,
		NoiseScale:   cfg.Search.NoiseScale,
		SilenceFloor: cfg.Search.SilenceFloorSeconds,
		Limit:        cfg.Search.ResultLimit,
		OutputDir:    cfg.Paths.OutputDir,
	}
	if wiggle > 0 {
		settings.Wiggle = wiggle
	}
	if limit > 0 {
		settings.Limit = limit
	}
	if outDir != "" {
		settings.OutputDir = outDir
	}
	return settings
}

func printOutcomes(cmd *cobra.Command, outcomes []session.Outcome, mode session.Mode) {
	out := cmd.OutOrStdout()
	if len(outcomes) == 0 {
		fmt.Fprintln(out, "No matches.")
		return
	}

	withOutput := mode != session.ModeNone
	headers := []string{"#", "file", "start", "end", "text"}
	if withOutput {
		headers = append(headers, "output")
	}

	rows := make([][]string, 0, len(outcomes))
	for i, outcome := range outcomes {
		row := []string{
			strconv.Itoa(i + 1),
			filepath.Base(outcome.Result.Path),
			formatTimestamp(outcome.Result.Start),
			formatTimestamp(outcome.Result.End),
			outcome.Result.Content,
		}
		if withOutput {
			switch {
			case outcome.Err != nil:
				row = append(row, "failed: "+outcome.Err.Error())
			default:
				row = append(row, outcome.Output)
			}
		}
		rows = append(rows, row)
	}

	if isTerminal(os.Stdout) {
		aligns := []columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft, alignLeft}
		fmt.Fprintln(out, renderTable(headers, rows, aligns))
		return
	}
	for _, row := range rows {
		fmt.Fprintln(out, strings.Join(row, "\t"))
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// formatTimestamp renders milliseconds as h:mm:ss.mmm.
func formatTimestamp(ms int64) string {
	neg := ""
	if ms < 0 {
		neg = "-"
		ms = -ms
	}
	hours := ms / 3_600_000
	minutes := (ms % 3_600_000) / 60_000
	seconds := (ms % 60_000) / 1000
	millis := ms % 1000
	return fmt.Sprintf("%s%d:%02d:%02d.%03d", neg, hours, minutes, seconds, millis)
}
