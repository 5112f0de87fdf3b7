package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"suimu/internal/ledger"
	"suimu/internal/services"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recent builds, or the records of one build",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			path := cfg.LedgerPath()
			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				fmt.Fprintln(out, "No build history recorded yet")
				return nil
			}
			store, err := ledger.Open(path)
			if err != nil {
				return services.Wrap(services.ErrConfiguration, "history", "open", path, err)
			}
			defer store.Close()

			if len(args) == 1 {
				return printRunRecords(cmd, store, args[0])
			}

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No build history recorded yet")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ID,
					run.StartedAt.Local().Format(time.DateTime),
					runDuration(run),
					yesNo(run.DryRun),
					strconv.Itoa(run.Total),
					strconv.Itoa(run.Converted),
					strconv.Itoa(run.Failed),
					fmt.Sprintf("+%d/-%d", run.Added, run.Removed),
					run.Error,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Started", "Duration", "Dry run", "Total", "Converted", "Failed", "Diff", "Error"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	return cmd
}

func printRunRecords(cmd *cobra.Command, store *ledger.Store, runID string) error {
	run, err := store.GetRun(cmd.Context(), runID)
	if errors.Is(err, ledger.ErrRunNotFound) {
		return services.Wrap(services.ErrNotFound, "history", "show", runID, err)
	}
	if err != nil {
		return err
	}
	records, err := store.RunRecords(cmd.Context(), runID)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	fmt.Fprintln(out, renderStatusLine("Run", statusInfo, run.ID, colorize))
	fmt.Fprintln(out, renderStatusLine("Started", statusInfo, run.StartedAt.Local().Format(time.DateTime), colorize))
	if run.Error != "" {
		fmt.Fprintln(out, renderStatusLine("Result", statusError, run.Error, colorize))
	} else {
		fmt.Fprintln(out, renderStatusLine("Result", countKind(run.Failed, statusWarn), fmt.Sprintf("%d converted, %d failed", run.Converted, run.Failed), colorize))
	}
	if len(records) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.Identity,
			rec.Platform + "/" + rec.ExternalID,
			rec.Outcome,
			strconv.Itoa(rec.ExitCode),
			rec.Duration.Round(time.Millisecond).String(),
			rec.Detail,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Identity", "Source", "Outcome", "Exit", "Duration", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	))
	return nil
}

func runDuration(run ledger.Run) string {
	if !run.Finished() {
		return "-"
	}
	return run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String()
}
