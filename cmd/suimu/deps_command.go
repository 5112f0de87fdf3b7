package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"suimu/internal/deps"
	"suimu/internal/preflight"
	"suimu/internal/services"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check the external tools a build needs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := preflight.CheckSystemDeps(cfg)
			rows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				detail := s.Path
				if !s.Available {
					detail = s.Detail
				}
				rows = append(rows, []string{s.Name, s.Command, yesNo(s.Available), detail, s.Description})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Dependency", "Command", "Available", "Path", "Purpose"}, rows, nil))

			if missing := deps.Missing(statuses); len(missing) > 0 {
				return services.Wrap(services.ErrNotFound, "deps", "check", fmt.Sprintf("%d required tool(s) missing", len(missing)), nil)
			}
			return nil
		},
	}
}
