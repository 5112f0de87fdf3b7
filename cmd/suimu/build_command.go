package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"suimu/internal/build"
	"suimu/internal/config"
	"suimu/internal/services"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var overrides config.Overrides

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Download, convert and publish every record in the CSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.ApplyOverrides(overrides); err != nil {
				return services.Wrap(services.ErrConfiguration, "config", "flags", "", err)
			}
			if err := cfg.ValidateBuild(); err != nil {
				return services.Wrap(services.ErrConfiguration, "config", "validate", "", err)
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			pipeline := &build.Pipeline{Config: cfg, Logger: logger}
			report, err := pipeline.Run(cmd.Context())
			if err == nil || report.Loaded > 0 {
				out := cmd.OutOrStdout()
				printBuildReport(out, report, shouldColorize(out))
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&overrides.CSVFile, "csv-file", "c", "", "CSV file describing the records")
	flags.StringVarP(&overrides.OutputDir, "output-dir", "o", "", "Directory receiving converted artifacts")
	flags.StringVarP(&overrides.SourceDir, "source-dir", "s", "", "Directory caching downloaded sources")
	flags.StringVar(&overrides.OutputJSON, "output-json", "", "Write the catalog JSON to this path")
	flags.StringVar(&overrides.BaseURL, "baseurl", "", "Catalog URL template ending in {}.{} (identity, then extension)")
	flags.StringVar(&overrides.OutputDiff, "output-diff", "", "Write the added/removed diff to this path")
	flags.StringVar(&overrides.PreviousJSON, "previous-json", "", "Previous catalog to diff against (defaults to --output-json)")
	flags.BoolVarP(&overrides.DryRun, "dry-run", "d", false, "Plan the build without downloading or converting")
	flags.StringVar(&overrides.Transcoder, "ffmpeg", "", "Transcoder executable")
	flags.StringVar(&overrides.Downloader, "ytdl", "", "Downloader executable")
	return cmd
}

func printBuildReport(out io.Writer, report build.Report, colorize bool) {
	plan := report.Plan
	if report.DryRun {
		fmt.Fprintln(out, renderCounts("Dry run", []countRow{
			{"Records loaded", report.Loaded},
			{"Rejected", report.Rejected},
			{"Already built", plan.Built},
			{"Restricted", plan.Restricted},
			{"To build", len(plan.Work)},
		}))
		return
	}

	s := report.Summary
	fmt.Fprintln(out, renderCounts("Build", []countRow{
		{"Records loaded", report.Loaded},
		{"Rejected", report.Rejected},
		{"Already built", plan.Built},
		{"Restricted", plan.Restricted},
		{"Downloaded", s.Downloaded},
		{"Converted", s.Converted},
		{"Download failed", s.DownloadFailed},
		{"Convert failed", s.ConvertFailed},
		{"Skipped (prior failure)", s.SkippedPriorFailure},
		{"Catalog entries", report.Catalog},
	}))

	var failed [][]string
	for _, res := range s.Results {
		if !res.Action.Failed() {
			continue
		}
		failed = append(failed, []string{res.Record.Identity(), res.Record.String(), string(res.Action), strconv.Itoa(res.ExitCode), res.Detail})
	}
	if len(failed) > 0 {
		fmt.Fprintln(out, renderTable([]string{"Identity", "Record", "Outcome", "Exit", "Detail"}, failed,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft}))
	}

	fmt.Fprintln(out, renderStatusLine("Failures", countKind(s.Failed(), statusWarn), strconv.Itoa(s.Failed()), colorize))
	if report.Diff != nil {
		msg := fmt.Sprintf("+%d / -%d", len(report.Diff.Added), len(report.Diff.Removed))
		fmt.Fprintln(out, renderStatusLine("Catalog diff", statusInfo, msg, colorize))
	}
	fmt.Fprintln(out, renderStatusLine("Run", statusInfo, report.RunID, colorize))
}
