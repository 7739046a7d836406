package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"subsonar/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Show the availability of required external binaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)
			headers := []string{"dependency", "command", "status", "detail"}
			rows := make([][]string, 0, len(statuses))
			missing := 0
			for _, status := range statuses {
				label := "ok"
				if !status.Available {
					label = "missing"
					if !status.Optional {
						missing++
					}
				}
				rows = append(rows, []string{status.Name, status.Command, label, status.Detail})
			}

			out := cmd.OutOrStdout()
			if isTerminal(os.Stdout) {
				fmt.Fprintln(out, renderTable(headers, rows, nil))
			} else {
				for _, row := range rows {
					fmt.Fprintln(out, strings.Join(row, "\t"))
				}
			}

			if missing > 0 {
				return fmt.Errorf("%d required dependency(ies) missing", missing)
			}
			return nil
		},
	}
}
