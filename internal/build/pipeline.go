package build

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"suimu/internal/artifact"
	"suimu/internal/catalog"
	"suimu/internal/config"
	"suimu/internal/csvsource"
	"suimu/internal/ledger"
	"suimu/internal/logging"
	"suimu/internal/music"
	"suimu/internal/platform"
	"suimu/internal/preflight"
	"suimu/internal/services"
	"suimu/internal/services/ffmpeg"
	"suimu/internal/services/runner"
	"suimu/internal/services/ytdlp"
)

// Pipeline runs the build command end to end: load the CSV, normalize,
// plan, check the environment, build the missing artifacts and publish the
// catalog and diff.
type Pipeline struct {
	Config   *config.Config
	Registry *platform.Registry
	Logger   *slog.Logger
	// Executor replaces process execution for both tools when set.
	Executor runner.Executor
	Progress Progress
	Now      func() time.Time
}

// Report describes a completed pipeline run.
type Report struct {
	RunID    string
	DryRun   bool
	Loaded   int
	Rejected int
	Plan     artifact.Plan
	Summary  Summary
	Catalog  int
	// Diff is nil when no diff was produced.
	Diff *catalog.Diff
}

// Run executes the pipeline. Record-level problems are logged and counted;
// the returned error is always run-level.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	cfg := p.Config
	if cfg == nil {
		return Report{}, services.Wrap(services.ErrConfiguration, "build", "pipeline", "config required", nil)
	}
	registry := p.Registry
	if registry == nil {
		registry = platform.MustNewRegistry()
	}
	now := p.Now
	if now == nil {
		now = time.Now
	}

	report := Report{RunID: uuid.NewString(), DryRun: cfg.Build.DryRun}
	ctx = services.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(p.Logger, "build"))

	raws, err := csvsource.Load(cfg.Paths.CSVFile)
	if err != nil {
		return report, err
	}
	report.Loaded = len(raws)
	records := NormalizeAll(raws, logger)
	report.Rejected = len(raws) - len(records)

	resolver := artifact.Resolver{
		SourceDir:          cfg.Paths.SourceDir,
		OutputDir:          cfg.Paths.OutputDir,
		Registry:           registry,
		RestrictedStatuses: cfg.Build.RestrictedStatuses,
	}
	plan, err := resolver.Plan(records)
	if err != nil {
		return report, services.Wrap(services.ErrConfiguration, "build", "plan", cfg.Paths.OutputDir, err)
	}
	report.Plan = plan
	logger.Info("build plan",
		logging.Int("records", len(records)),
		logging.Int("rejected", report.Rejected),
		logging.Int("work", len(plan.Work)),
		logging.Int("already_built", plan.Built),
		logging.Int("restricted", plan.Restricted),
		logging.Any("restricted_statuses", cfg.Build.RestrictedStatuses),
	)

	if cfg.Build.DryRun {
		for _, item := range plan.Work {
			logger.Info("would build",
				logging.String(logging.FieldRecord, item.Record.Identity()),
				logging.String("title", item.Record.String()),
				logging.String("state", item.State.String()),
			)
		}
		if history := p.openLedger(ctx, logger, report.RunID); history != nil {
			history.finish(ctx, report, nil)
			history.close()
		}
		return report, nil
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return report, services.Wrap(services.ErrConfiguration, "build", "prepare", "directories", err)
	}
	if err := preflight.Err(preflight.RunAll(cfg)); err != nil {
		return report, err
	}

	// The baseline defaults to the output catalog, so read it before the
	// new catalog overwrites it.
	var baseline catalog.Baseline
	if cfg.DiffEnabled() {
		baseline, err = catalog.LoadBaseline(cfg.BaselinePath(), cfg.Paths.OutputDir, logger)
		if err != nil {
			return report, err
		}
	}

	lock, err := AcquireLock(cfg.Paths.OutputDir)
	if err != nil {
		return report, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Debug("lock release failed", logging.Error(err))
		}
	}()

	history := p.openLedger(ctx, logger, report.RunID)
	if history != nil {
		defer history.close()
	}

	downloader, converter, err := p.clients(logger)
	if err != nil {
		return report, err
	}
	builder := &Builder{
		Resolver:   resolver,
		Downloader: downloader,
		Converter:  converter,
		Logger:     logger,
		Progress:   p.Progress,
	}
	if history != nil {
		builder.Recorder = history
	}

	summary, runErr := builder.Run(ctx, plan.Records())
	report.Summary = summary
	if runErr == nil {
		runErr = p.publish(cfg, resolver, records, baseline, now, logger, &report)
	}
	if history != nil {
		history.finish(ctx, report, runErr)
	}
	return report, runErr
}

func (p *Pipeline) publish(cfg *config.Config, resolver artifact.Resolver, records []music.Record, baseline catalog.Baseline, now func() time.Time, logger *slog.Logger, report *Report) error {
	if cfg.Catalog.Output == "" {
		return nil
	}
	entries, err := catalog.Project(records, resolver, cfg.Catalog.BaseURL, logger)
	if err != nil {
		return services.Wrap(services.ErrTransient, "catalog", "project", cfg.Paths.OutputDir, err)
	}
	if err := catalog.WriteEntries(cfg.Catalog.Output, entries); err != nil {
		return services.Wrap(services.ErrConfiguration, "catalog", "write", cfg.Catalog.Output, err)
	}
	report.Catalog = len(entries)
	logger.Info("catalog written", logging.String("path", cfg.Catalog.Output), logging.Int("entries", len(entries)))

	if !cfg.DiffEnabled() {
		return nil
	}
	diff, ok := baseline.Diff(entries, now())
	if !ok {
		logger.Info("diff skipped", logging.String("reason", "no previous catalog"))
		return nil
	}
	if err := catalog.WriteDiff(cfg.Catalog.Diff, diff); err != nil {
		return services.Wrap(services.ErrConfiguration, "catalog", "write diff", cfg.Catalog.Diff, err)
	}
	report.Diff = &diff
	logger.Info("diff written",
		logging.String("path", cfg.Catalog.Diff),
		logging.Int("added", len(diff.Added)),
		logging.Int("removed", len(diff.Removed)),
	)
	return nil
}

func (p *Pipeline) clients(logger *slog.Logger) (*ytdlp.Client, *ffmpeg.Client, error) {
	cfg := p.Config
	newRunner := func(seconds int) *runner.Runner {
		opts := []runner.Option{runner.WithLogger(logger)}
		if p.Executor != nil {
			opts = append(opts, runner.WithExecutor(p.Executor))
		}
		return runner.New(time.Duration(seconds)*time.Second, opts...)
	}
	downloader, err := ytdlp.New(cfg.Tools.Downloader, cfg.Tools.DownloadTimeoutSeconds,
		ytdlp.WithExecutor(newRunner(cfg.Tools.DownloadTimeoutSeconds)))
	if err != nil {
		return nil, nil, services.Wrap(services.ErrConfiguration, "build", "downloader", "", err)
	}
	converter, err := ffmpeg.New(cfg.Tools.Transcoder, cfg.Tools.ConvertTimeoutSeconds,
		ffmpeg.WithExecutor(newRunner(cfg.Tools.ConvertTimeoutSeconds)))
	if err != nil {
		return nil, nil, services.Wrap(services.ErrConfiguration, "build", "transcoder", "", err)
	}
	return downloader, converter, nil
}

// NormalizeAll converts raw rows into records, dropping rejections. Rows left
// incomplete on purpose are logged at debug; malformed rows warn.
func NormalizeAll(raws []music.RawRecord, logger *slog.Logger) []music.Record {
	if logger == nil {
		logger = logging.NewNop()
	}
	records := make([]music.Record, 0, len(raws))
	for i, raw := range raws {
		rec, err := music.Normalize(raw)
		if err == nil {
			records = append(records, rec)
			continue
		}
		var rej *music.RejectionError
		if errors.As(err, &rej) && rej.Intentional() {
			logger.Debug("record skipped",
				logging.Int("row", i+1),
				logging.String("record", raw.String()),
				logging.String("reason", rej.Reason.String()),
			)
			continue
		}
		logging.WarnWithContext(logger, "record rejected", "record_rejected",
			logging.Int("row", i+1),
			logging.String("record", raw.String()),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix the row in the CSV file"),
			logging.String(logging.FieldImpact, "record excluded from this build"),
		)
	}
	return records
}

// ledgerRecorder stores build results in the history database.
type ledgerRecorder struct {
	store  *ledger.Store
	runID  string
	logger *slog.Logger
}

// openLedger returns nil when history is disabled or unavailable; a broken
// history database never blocks a build.
func (p *Pipeline) openLedger(ctx context.Context, logger *slog.Logger, runID string) *ledgerRecorder {
	if !p.Config.Ledger.Enabled {
		return nil
	}
	path := p.Config.LedgerPath()
	store, err := ledger.Open(path)
	if err != nil {
		logging.WarnWithContext(logger, "history unavailable", "ledger_open_failed",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check ledger.path or set ledger.enabled = false"),
			logging.String(logging.FieldImpact, "this run is not recorded in history"),
		)
		return nil
	}
	if _, err := store.BeginRun(ctx, runID, p.Config.Build.DryRun); err != nil {
		logging.WarnWithContext(logger, "history unavailable", "ledger_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run is not recorded in history"),
		)
		_ = store.Close()
		return nil
	}
	return &ledgerRecorder{store: store, runID: runID, logger: logger}
}

func (r *ledgerRecorder) RecordResult(ctx context.Context, res Result) error {
	return r.store.RecordOutcome(ctx, ledger.RecordOutcome{
		RunID:      r.runID,
		Identity:   res.Record.Identity(),
		Platform:   res.Record.Platform.String(),
		ExternalID: res.Record.ExternalID,
		Outcome:    string(res.Action),
		ExitCode:   res.ExitCode,
		Detail:     res.Detail,
		Duration:   res.Duration,
	})
}

func (r *ledgerRecorder) finish(ctx context.Context, report Report, runErr error) {
	totals := ledger.Totals{
		Total:        report.Plan.Total(),
		AlreadyBuilt: report.Plan.Built,
		Converted:    report.Summary.Converted,
		Failed:       report.Summary.Failed(),
	}
	if report.Diff != nil {
		totals.Added = len(report.Diff.Added)
		totals.Removed = len(report.Diff.Removed)
	}
	// Record the outcome even when ctx was cancelled mid-run.
	if err := r.store.FinishRun(context.WithoutCancel(ctx), r.runID, totals, runErr); err != nil {
		logging.WarnWithContext(r.logger, "failed to finish history run", "ledger_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run totals missing from history"),
		)
	}
}

func (r *ledgerRecorder) close() {
	_ = r.store.Close()
}
