package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"suimu/internal/check"
	"suimu/internal/csvsource"
	"suimu/internal/services"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var csvFile string
	var formatOnly bool
	var jsonOut bool
	var showSkipped bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report CSV rows that a build would reject",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := csvFile
			if path == "" {
				path = cfg.Paths.CSVFile
			}
			if path == "" {
				return services.Wrap(services.ErrConfiguration, "check", "input", "paths.csv_file must be set (or pass --csv-file)", nil)
			}

			raws, err := csvsource.Load(path)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, raws)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			if formatOnly {
				fmt.Fprintln(out, renderStatusLine("Decoded", statusOK, fmt.Sprintf("%d records", len(raws)), colorize))
				return nil
			}

			report := check.Run(raws)
			var rows [][]string
			for _, f := range report.Findings {
				if f.Intentional && !showSkipped {
					continue
				}
				rows = append(rows, []string{strconv.Itoa(f.Row), string(f.Stage), f.ReasonName, f.Record, f.Message})
			}
			if len(rows) > 0 {
				fmt.Fprintln(out, renderTable([]string{"Row", "Stage", "Reason", "Record", "Message"}, rows,
					[]columnAlignment{alignRight}))
			}
			fmt.Fprintln(out, renderStatusLine("Records", statusInfo, strconv.Itoa(report.Total), colorize))
			fmt.Fprintln(out, renderStatusLine("Valid", statusOK, strconv.Itoa(report.Valid), colorize))
			for _, stage := range []check.Stage{check.StageFormat, check.StageLogic, check.StageSupport} {
				n := report.Count(stage)
				fmt.Fprintln(out, renderStatusLine("Stage "+string(stage), countKind(n, statusWarn), strconv.Itoa(n), colorize))
			}
			if problems := report.Problems(); problems > 0 {
				return fmt.Errorf("%w: %d", errCheckProblems, problems)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&csvFile, "csv-file", "c", "", "CSV file to check (defaults to paths.csv_file)")
	cmd.Flags().BoolVar(&formatOnly, "format-only", false, "Only decode the CSV file")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the decoded rows as JSON")
	cmd.Flags().BoolVar(&showSkipped, "show-skipped", false, "Include rows left incomplete on purpose")
	return cmd
}

var errCheckProblems = errors.New("rows would be rejected")
