package catalog

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"suimu/internal/fileutil"
	"suimu/internal/logging"
	"suimu/internal/services"
)

// Baseline is the previous catalog a new build is compared against.
type Baseline struct {
	Entries []Entry
	// Found is false when no previous catalog existed; no diff is produced then.
	Found bool
}

// LoadBaseline reads the previous catalog at path. An absent file yields a
// baseline that is not found. A file that cannot be parsed is logged and
// treated as an empty catalog. Entries whose artifact is no longer present in
// outputDir are dropped.
func LoadBaseline(path, outputDir string, logger *slog.Logger) (Baseline, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info("no previous catalog", logging.String("path", path))
		return Baseline{}, nil
	}
	if err != nil {
		return Baseline{}, services.Wrap(services.ErrConfiguration, "catalog", "read previous", path, err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		logging.WarnWithContext(logger, "previous catalog unreadable", "previous_catalog_invalid",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix or remove the previous catalog file"),
			logging.String(logging.FieldImpact, "every current entry is reported as added"),
		)
		return Baseline{Found: true}, nil
	}

	kept := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		name := entry.FileName()
		ok, err := fileutil.Exists(filepath.Join(outputDir, name))
		if err != nil {
			return Baseline{}, services.Wrap(services.ErrTransient, "catalog", "stat previous artifact", name, err)
		}
		if !ok || name == "" {
			logging.WarnWithContext(logger, "previous catalog entry has no artifact", "previous_artifact_missing",
				logging.String("url", entry.URL),
				logging.String(logging.FieldErrorHint, "the artifact was deleted outside suimu"),
				logging.String(logging.FieldImpact, "entry excluded from the removed list"),
			)
			continue
		}
		kept = append(kept, entry)
	}
	return Baseline{Entries: kept, Found: true}, nil
}

// Diff compares current against the baseline. It reports false when there
// was no previous catalog.
func (b Baseline) Diff(current []Entry, now time.Time) (Diff, bool) {
	if !b.Found {
		return Diff{}, false
	}
	return Compute(b.Entries, current, now), true
}
