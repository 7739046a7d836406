package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"subsonar/internal/config"
	"subsonar/internal/index"
)

func newInitCommand(ctx *commandContext) *cobra.Command {
	var relative bool
	var absolute bool

	cmd := &cobra.Command{
		Use:   "init <index-dir>",
		Short: "Create a new, empty subtitle index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}

			ix, err := index.Create(dir, relative && !absolute, ctx.ensureLogger())
			if err != nil {
				return fmt.Errorf("create index: %w", err)
			}
			defer ix.Close()

			policy := "absolute"
			if ix.Relative() {
				policy = "relative"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created index at %s (%s paths)\n", ix.Dir(), policy)
			return nil
		},
	}

	cmd.Flags().BoolVar(&relative, "relative", false, "Store file paths relative to the index directory")
	cmd.Flags().BoolVar(&absolute, "absolute", false, "Store absolute file paths (default)")
	cmd.MarkFlagsMutuallyExclusive("relative", "absolute")
	return cmd
}
