package check

import (
	"errors"

	"suimu/internal/music"
)

// Stage names the validation pass that produced a finding.
type Stage string

const (
	StageFormat  Stage = "format"
	StageLogic   Stage = "logic"
	StageSupport Stage = "support"
)

// Finding describes one rejected row.
type Finding struct {
	Row         int          `json:"row"`
	Record      string       `json:"record"`
	Stage       Stage        `json:"stage"`
	Reason      music.Reason `json:"-"`
	ReasonName  string       `json:"reason"`
	Message     string       `json:"message"`
	Intentional bool         `json:"intentional"`
}

// Report summarises a check run.
type Report struct {
	Total    int       `json:"total"`
	Valid    int       `json:"valid"`
	Findings []Finding `json:"findings"`
}

// Count returns the number of findings in stage.
func (r Report) Count(stage Stage) int {
	n := 0
	for _, f := range r.Findings {
		if f.Stage == stage {
			n++
		}
	}
	return n
}

// Problems returns the number of findings that are not intentional skips.
func (r Report) Problems() int {
	n := 0
	for _, f := range r.Findings {
		if !f.Intentional {
			n++
		}
	}
	return n
}

// Run normalizes every raw record and collects one finding per rejected row.
// Rows are numbered from 1, excluding the header.
func Run(raws []music.RawRecord) Report {
	report := Report{Total: len(raws), Findings: []Finding{}}
	for i, raw := range raws {
		_, err := music.Normalize(raw)
		if err == nil {
			report.Valid++
			continue
		}
		finding := Finding{
			Row:     i + 1,
			Record:  raw.String(),
			Message: err.Error(),
		}
		var rej *music.RejectionError
		if errors.As(err, &rej) {
			finding.Reason = rej.Reason
			finding.ReasonName = rej.Reason.String()
			finding.Stage = stageFor(rej.Reason)
			finding.Intentional = rej.Intentional()
		} else {
			finding.Stage = StageFormat
		}
		report.Findings = append(report.Findings, finding)
	}
	return report
}

func stageFor(reason music.Reason) Stage {
	switch reason {
	case music.ReasonClipRangeInverted:
		return StageLogic
	case music.ReasonBlankPlatform, music.ReasonUnsupportedPlatform:
		return StageSupport
	default:
		return StageFormat
	}
}
