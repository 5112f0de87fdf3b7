package music

import (
	"math"
	"strconv"
	"strings"
	"time"

	"suimu/internal/platform"
)

// Legacy catalogs used minute precision without seconds.
var legacyLayouts = []string{
	"2006-01-02T15:04-07:00",
	"2006-01-02T15:04-0700",
}

// ParseTimestamp accepts RFC 3339 and the legacy minute-precision layout,
// keeping the fixed offset from the input.
func ParseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	var lastErr error
	for _, layout := range legacyLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// Normalize constructs a Record and applies logic validation.
func Normalize(raw RawRecord) (Record, error) {
	rec, err := Construct(raw)
	if err != nil {
		return Record{}, err
	}
	if err := CheckLogic(rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Construct validates the fields required to compute identity. A constructed
// record may still fail CheckLogic.
func Construct(raw RawRecord) (Record, error) {
	recordedAt, err := ParseTimestamp(strings.TrimSpace(raw.Datetime))
	if err != nil {
		return Record{}, &RejectionError{Reason: ReasonInvalidTimestamp, Field: "datetime", Value: raw.Datetime}
	}

	status, err := parseStatus(raw.Status)
	if err != nil {
		return Record{}, err
	}

	externalID := strings.TrimSpace(raw.ExternalID)
	code := strings.TrimSpace(raw.Platform)
	if code == "" {
		return Record{}, &RejectionError{Reason: ReasonBlankPlatform, Field: "video_type", blankID: externalID == ""}
	}
	plat, err := platform.Parse(code)
	if err != nil {
		return Record{}, &RejectionError{Reason: ReasonUnsupportedPlatform, Field: "video_type", Value: code}
	}

	title := strings.TrimSpace(raw.Title)
	if title == "" {
		return Record{}, &RejectionError{Reason: ReasonEmptyTitle, Field: "title"}
	}

	clipStart, err := parseBound("clip_start", raw.ClipStart)
	if err != nil {
		return Record{}, err
	}
	clipEnd, err := parseBound("clip_end", raw.ClipEnd)
	if err != nil {
		return Record{}, err
	}

	rec := Record{
		RecordedAt: recordedAt,
		Platform:   plat,
		ExternalID: externalID,
		ClipStart:  clipStart,
		ClipEnd:    clipEnd,
		Status:     status,
		Title:      title,
		Artist:     strings.TrimSpace(raw.Artist),
		Performer:  strings.TrimSpace(raw.Performer),
		Comment:    raw.Comment,
	}
	rec.identity = Identity(rec.identityFields())
	return rec, nil
}

// CheckLogic enforces cross-field invariants on a constructed record.
func CheckLogic(rec Record) error {
	if rec.ClipStart != nil && rec.ClipEnd != nil && !(*rec.ClipStart < *rec.ClipEnd) {
		return &RejectionError{
			Reason: ReasonClipRangeInverted,
			Field:  "clip_start",
			Value:  rec.ClipStartText() + " >= " + rec.ClipEndText(),
		}
	}
	return nil
}

func parseStatus(value string) (uint16, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, &RejectionError{Reason: ReasonMissingStatus, Field: "status"}
	}
	status, err := strconv.ParseUint(trimmed, 10, 16)
	if err != nil {
		return 0, &RejectionError{Reason: ReasonMalformedStatus, Field: "status", Value: value}
	}
	return uint16(status), nil
}

func parseBound(field, value string) (*float64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	seconds, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return nil, &RejectionError{Reason: ReasonMalformedClipBound, Field: field, Value: value}
	}
	return &seconds, nil
}
