package music

import "fmt"

// Reason classifies why a raw record could not become a Record.
type Reason int

const (
	ReasonInvalidTimestamp Reason = iota + 1
	ReasonUnsupportedPlatform
	ReasonBlankPlatform
	ReasonMissingStatus
	ReasonMalformedStatus
	ReasonEmptyTitle
	ReasonMalformedClipBound
	ReasonClipRangeInverted
)

func (r Reason) String() string {
	switch r {
	case ReasonInvalidTimestamp:
		return "invalid_timestamp"
	case ReasonUnsupportedPlatform:
		return "unsupported_platform"
	case ReasonBlankPlatform:
		return "blank_platform"
	case ReasonMissingStatus:
		return "missing_status"
	case ReasonMalformedStatus:
		return "malformed_status"
	case ReasonEmptyTitle:
		return "empty_title"
	case ReasonMalformedClipBound:
		return "malformed_clip_bound"
	case ReasonClipRangeInverted:
		return "clip_range_inverted"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// RejectionError reports a record that failed normalization.
type RejectionError struct {
	Reason Reason
	Field  string
	Value  string
	// blankID records whether the raw external id was empty; together with a
	// blank platform it marks a row that was left incomplete on purpose.
	blankID bool
}

func (e *RejectionError) Error() string {
	switch e.Reason {
	case ReasonInvalidTimestamp:
		return fmt.Sprintf("invalid datetime %q", e.Value)
	case ReasonUnsupportedPlatform:
		return fmt.Sprintf("platform %q not supported", e.Value)
	case ReasonBlankPlatform:
		return "platform is blank"
	case ReasonMissingStatus:
		return "no status present"
	case ReasonMalformedStatus:
		return fmt.Sprintf("status %q is not a small non-negative integer", e.Value)
	case ReasonEmptyTitle:
		return "title is empty"
	case ReasonMalformedClipBound:
		return fmt.Sprintf("%s %q is not a number of seconds", e.Field, e.Value)
	case ReasonClipRangeInverted:
		return "clip_start is later than clip_end"
	default:
		return "record rejected"
	}
}

// Intentional reports whether the rejection is an expected skip marker rather
// than a malformed row: a missing status, or a blank platform paired with a
// blank external id.
func (e *RejectionError) Intentional() bool {
	switch e.Reason {
	case ReasonMissingStatus:
		return true
	case ReasonBlankPlatform:
		return e.blankID
	default:
		return false
	}
}

// Is lets errors.Is match on Reason alone.
func (e *RejectionError) Is(target error) bool {
	t, ok := target.(*RejectionError)
	if !ok {
		return false
	}
	return t.Reason == e.Reason
}

// Rejection returns a sentinel for errors.Is comparisons.
func Rejection(reason Reason) error {
	return &RejectionError{Reason: reason}
}
