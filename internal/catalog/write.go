package catalog

import (
	"suimu/internal/fileutil"
	"suimu/internal/services"
)

// WriteEntries replaces the catalog at path.
func WriteEntries(path string, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	if err := fileutil.WriteJSONAtomic(path, entries); err != nil {
		return services.Wrap(services.ErrTransient, "catalog", "write", path, err)
	}
	return nil
}

// WriteDiff replaces the diff file at path.
func WriteDiff(path string, diff Diff) error {
	if err := fileutil.WriteJSONAtomic(path, diff); err != nil {
		return services.Wrap(services.ErrTransient, "catalog", "write diff", path, err)
	}
	return nil
}
