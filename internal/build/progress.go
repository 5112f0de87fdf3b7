package build

import (
	"fmt"
	"log/slog"

	"suimu/internal/logging"
	"suimu/internal/music"
)

// Progress observes the build loop. Step is called once per item, before any
// work on it, with a 1-based index.
type Progress interface {
	Start(total int)
	Step(index, total int, rec music.Record)
	Done(summary Summary)
}

// LogProgress reports progress through a logger.
type LogProgress struct {
	Logger *slog.Logger
}

func (p LogProgress) Start(total int) {
	p.logger().Info("build started", logging.Int("total", total))
}

func (p LogProgress) Step(index, total int, rec music.Record) {
	p.logger().Info("Building "+progressLabel(index, total),
		logging.String(logging.FieldRecord, rec.Identity()),
		logging.String("title", rec.String()),
	)
}

func (p LogProgress) Done(summary Summary) {
	p.logger().Info("build finished",
		logging.Int("total", summary.Total),
		logging.Int("converted", summary.Converted),
		logging.Int("download_failed", summary.DownloadFailed),
		logging.Int("convert_failed", summary.ConvertFailed),
		logging.Int("skipped_prior_failure", summary.SkippedPriorFailure),
		logging.Duration("duration", summary.Duration),
	)
}

func (p LogProgress) logger() *slog.Logger {
	if p.Logger == nil {
		return logging.NewNop()
	}
	return p.Logger
}

func progressLabel(index, total int) string {
	return fmt.Sprintf("%d / %d", index, total)
}
