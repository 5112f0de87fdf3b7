package catalog

import (
	"fmt"
	"log/slog"

	"suimu/internal/artifact"
	"suimu/internal/fileutil"
	"suimu/internal/logging"
	"suimu/internal/music"
)

// Project returns the catalog for records whose artifact exists, in record
// order. Restricted records are included when they were built previously.
func Project(records []music.Record, resolver artifact.Resolver, baseURL string, logger *slog.Logger) ([]Entry, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		path := resolver.OutputPath(rec)
		ok, err := fileutil.Exists(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if !ok {
			logging.WarnWithContext(logger, "artifact not generated", "artifact_missing",
				logging.String(logging.FieldRecord, rec.Identity()),
				logging.String("title", rec.String()),
				logging.String(logging.FieldErrorHint, "rerun the build once the source is available"),
				logging.String(logging.FieldImpact, "record omitted from the catalog"),
			)
			continue
		}
		entries = append(entries, NewEntry(rec, resolver.Registry, baseURL))
	}
	return entries, nil
}
