package build

import (
	"context"
	"time"

	"suimu/internal/music"
)

// Action is what happened to a record during a run.
type Action string

const (
	ActionConverted           Action = "converted"
	ActionAlreadyBuilt        Action = "already_built"
	ActionDownloadFailed      Action = "download_failed"
	ActionConvertFailed       Action = "convert_failed"
	ActionSkippedPriorFailure Action = "skipped_prior_failure"
)

// Failed reports whether the action left the record without an artifact.
func (a Action) Failed() bool {
	switch a {
	case ActionDownloadFailed, ActionConvertFailed, ActionSkippedPriorFailure:
		return true
	default:
		return false
	}
}

// Result is the per-record outcome handed to the Recorder.
type Result struct {
	Record     music.Record
	Action     Action
	Downloaded bool
	ExitCode   int
	Detail     string
	Duration   time.Duration
}

// Summary aggregates a run.
type Summary struct {
	Total               int
	AlreadyBuilt        int
	Downloaded          int
	Converted           int
	DownloadFailed      int
	ConvertFailed       int
	SkippedPriorFailure int
	Duration            time.Duration
	Results             []Result
}

// Failed returns the number of records left without an artifact.
func (s Summary) Failed() int {
	return s.DownloadFailed + s.ConvertFailed + s.SkippedPriorFailure
}

func (s *Summary) add(res Result) {
	s.Results = append(s.Results, res)
	if res.Downloaded {
		s.Downloaded++
	}
	switch res.Action {
	case ActionConverted:
		s.Converted++
	case ActionAlreadyBuilt:
		s.AlreadyBuilt++
	case ActionDownloadFailed:
		s.DownloadFailed++
	case ActionConvertFailed:
		s.ConvertFailed++
	case ActionSkippedPriorFailure:
		s.SkippedPriorFailure++
	}
}

// Recorder persists per-record results, typically into the history ledger.
type Recorder interface {
	RecordResult(ctx context.Context, res Result) error
}
