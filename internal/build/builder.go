package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"suimu/internal/artifact"
	"suimu/internal/logging"
	"suimu/internal/music"
	"suimu/internal/platform"
	"suimu/internal/services"
	"suimu/internal/services/runner"
)

// Downloader fetches a record's source media into sourcePath.
type Downloader interface {
	Download(ctx context.Context, rec music.Record, info platform.Info, sourcePath string) (runner.Outcome, error)
}

// Converter produces the artifact at outputPath from sourcePath.
type Converter interface {
	Convert(ctx context.Context, rec music.Record, sourcePath, outputPath string) (runner.Outcome, error)
}

// Builder processes records one at a time.
type Builder struct {
	Resolver   artifact.Resolver
	Downloader Downloader
	Converter  Converter
	Logger     *slog.Logger
	Progress   Progress
	Recorder   Recorder
}

// Run downloads and converts every item still missing its artifact. Process
// failures stay local to their record; a binary that cannot be launched, a
// filesystem probe failure, or cancellation of ctx aborts the run and returns
// the partial summary alongside the error.
func (b *Builder) Run(ctx context.Context, items []music.Record) (Summary, error) {
	logger := b.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	progress := b.Progress
	if progress == nil {
		progress = LogProgress{Logger: logger}
	}

	started := time.Now()
	summary := Summary{Total: len(items)}
	memo := NewFailureMemo()
	progress.Start(len(items))

	for i, rec := range items {
		if err := ctx.Err(); err != nil {
			summary.Duration = time.Since(started)
			return summary, err
		}
		progress.Step(i+1, len(items), rec)

		recCtx := services.WithRecord(ctx, rec.Identity())
		res, err := b.process(recCtx, logging.WithContext(recCtx, logger), memo, rec)
		if err != nil {
			summary.Duration = time.Since(started)
			return summary, err
		}
		summary.add(res)
		b.record(recCtx, logger, res)
	}

	summary.Duration = time.Since(started)
	progress.Done(summary)
	return summary, nil
}

func (b *Builder) process(ctx context.Context, logger *slog.Logger, memo *FailureMemo, rec music.Record) (Result, error) {
	res := Result{Record: rec}
	state, err := b.Resolver.Resolve(rec)
	if err != nil {
		return res, services.Wrap(services.ErrTransient, "build", "resolve", rec.String(), err)
	}

	if state == artifact.AlreadyBuilt {
		res.Action = ActionAlreadyBuilt
		return res, nil
	}

	// A failed download may still leave a file at the source path, so the
	// memo wins over a source that looks present.
	key := rec.SourceKey()
	if memo.Has(key) {
		logger.Info("skipping record after prior download failure", logging.String("source", key.String()))
		res.Action = ActionSkippedPriorFailure
		res.Detail = "prior failure"
		return res, nil
	}

	sourcePath := b.Resolver.SourcePath(rec)
	if state == artifact.NeedsDownloadAndConvert {
		info := b.Resolver.Registry.Lookup(rec.Platform)
		logger.Info("downloading source", logging.String("source", key.String()), logging.String("path", sourcePath))
		outcome, err := b.Downloader.Download(services.WithStage(ctx, "download"), rec, info, sourcePath)
		if err != nil {
			if abort := abortError(ctx, "download", err); abort != nil {
				return res, abort
			}
			outcome = runner.Outcome{ExitCode: -1, Stderr: err.Error()}
		}
		res.Duration += outcome.Duration
		if !outcome.Success() {
			memo.Add(key)
			logging.WarnWithContext(logger, "download failed", "download_failed",
				logging.String("source", key.String()),
				logging.Int("exit_code", outcome.ExitCode),
				logging.String("detail", outcome.Summary()),
				logging.String("stderr", strings.TrimSpace(outcome.Stderr)),
				logging.String(logging.FieldErrorHint, "check the upload is still available to the downloader"),
				logging.String(logging.FieldImpact, "clips of this source are skipped for this run"),
			)
			res.Action = ActionDownloadFailed
			res.ExitCode = outcome.ExitCode
			res.Detail = outcome.Summary()
			return res, nil
		}
		res.Downloaded = true
	}

	outputPath := b.Resolver.OutputPath(rec)
	logger.Info("converting", logging.String("output", outputPath))
	outcome, err := b.Converter.Convert(services.WithStage(ctx, "convert"), rec, sourcePath, outputPath)
	if err != nil {
		if abort := abortError(ctx, "convert", err); abort != nil {
			return res, abort
		}
		outcome = runner.Outcome{ExitCode: -1, Stderr: err.Error()}
	}
	res.Duration += outcome.Duration
	if !outcome.Success() {
		logging.WarnWithContext(logger, "conversion failed", "convert_failed",
			logging.String("output", outputPath),
			logging.Int("exit_code", outcome.ExitCode),
			logging.String("detail", outcome.Summary()),
			logging.String("stderr", strings.TrimSpace(outcome.Stderr)),
			logging.String(logging.FieldErrorHint, "inspect the downloaded source file"),
			logging.String(logging.FieldImpact, "record missing from the catalog until the next build"),
		)
		res.Action = ActionConvertFailed
		res.ExitCode = outcome.ExitCode
		res.Detail = outcome.Summary()
		return res, nil
	}
	res.Action = ActionConverted
	return res, nil
}

func (b *Builder) record(ctx context.Context, logger *slog.Logger, res Result) {
	if b.Recorder == nil {
		return
	}
	if err := b.Recorder.RecordResult(ctx, res); err != nil {
		logging.WarnWithContext(logger, "failed to record build result", "ledger_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the history database path"),
			logging.String(logging.FieldImpact, "build history is incomplete"),
		)
	}
}

func abortError(ctx context.Context, stage string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, runner.ErrLaunch) {
		return fmt.Errorf("%s: %w", stage, err)
	}
	return nil
}
