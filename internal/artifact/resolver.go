package artifact

import (
	"fmt"
	"path/filepath"
	"slices"

	"suimu/internal/fileutil"
	"suimu/internal/music"
	"suimu/internal/platform"
)

// OutputExtension is the container every converted artifact uses.
const OutputExtension = "m4a"

// State classifies the work a record still needs.
type State int

const (
	AlreadyBuilt State = iota
	NeedsConvertOnly
	NeedsDownloadAndConvert
)

func (s State) String() string {
	switch s {
	case AlreadyBuilt:
		return "already_built"
	case NeedsConvertOnly:
		return "needs_convert"
	case NeedsDownloadAndConvert:
		return "needs_download"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Resolver derives artifact locations for records.
type Resolver struct {
	SourceDir          string
	OutputDir          string
	Registry           *platform.Registry
	RestrictedStatuses []uint16
}

// OutputPath returns output_dir/<identity>.m4a.
func (r Resolver) OutputPath(rec music.Record) string {
	return filepath.Join(r.OutputDir, OutputFileName(rec.Identity()))
}

// SourcePath returns source_dir/<external_id>.<source_ext>.
func (r Resolver) SourcePath(rec music.Record) string {
	info := r.Registry.Lookup(rec.Platform)
	return filepath.Join(r.SourceDir, rec.ExternalID+"."+info.SourceExtension)
}

// Resolve probes the output artifact first; the source is only checked
// when the output is missing.
func (r Resolver) Resolve(rec music.Record) (State, error) {
	built, err := fileutil.Exists(r.OutputPath(rec))
	if err != nil {
		return 0, fmt.Errorf("stat output for %s: %w", rec.Identity(), err)
	}
	if built {
		return AlreadyBuilt, nil
	}
	downloaded, err := fileutil.Exists(r.SourcePath(rec))
	if err != nil {
		return 0, fmt.Errorf("stat source for %s: %w", rec.SourceKey(), err)
	}
	if downloaded {
		return NeedsConvertOnly, nil
	}
	return NeedsDownloadAndConvert, nil
}

// Eligible reports whether rec may be processed. Records with a restricted
// status are still cataloged when their artifact exists.
func (r Resolver) Eligible(rec music.Record) bool {
	return !slices.Contains(r.RestrictedStatuses, rec.Status)
}

// OutputFileName returns the artifact file name for identity.
func OutputFileName(identity string) string {
	return identity + "." + OutputExtension
}
