package music

import (
	"fmt"
	"time"

	"suimu/internal/platform"
)

// RawRecord holds one row as produced by the tabular decoder.
type RawRecord struct {
	Datetime   string `json:"datetime"`
	Platform   string `json:"video_type"`
	ExternalID string `json:"video_id"`
	ClipStart  string `json:"clip_start"`
	ClipEnd    string `json:"clip_end"`
	Status     string `json:"status"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Performer  string `json:"performer"`
	Comment    string `json:"comment"`
}

func (r RawRecord) String() string {
	var source string
	if r.Platform == "" {
		source = "paid, " + r.Datetime
	} else {
		source = r.Platform + "/" + r.ExternalID
	}
	return describe(r.Title, r.Artist, source)
}

// Record is a normalized catalog row. Build one with Normalize or Construct;
// the identity is fixed at construction.
type Record struct {
	RecordedAt time.Time
	Platform   platform.Platform
	ExternalID string
	ClipStart  *float64
	ClipEnd    *float64
	Status     uint16
	Title      string
	Artist     string
	Performer  string
	Comment    string

	identity string
}

// Identity returns the artifact identity computed at construction.
func (r Record) Identity() string {
	return r.identity
}

// SourceKey identifies the downloadable source shared by clips of one upload.
func (r Record) SourceKey() SourceKey {
	return SourceKey{Platform: r.Platform, ExternalID: r.ExternalID}
}

// ClipStartText returns the decimal text of the start bound, or "".
func (r Record) ClipStartText() string {
	return formatBound(r.ClipStart)
}

// ClipEndText returns the decimal text of the end bound, or "".
func (r Record) ClipEndText() string {
	return formatBound(r.ClipEnd)
}

func (r Record) String() string {
	return describe(r.Title, r.Artist, r.Platform.String()+"/"+r.ExternalID)
}

// SourceKey pairs a platform with its external video id.
type SourceKey struct {
	Platform   platform.Platform
	ExternalID string
}

func (k SourceKey) String() string {
	return k.Platform.String() + "/" + k.ExternalID
}

func (r Record) identityFields() IdentityFields {
	return IdentityFields{
		Platform:   r.Platform,
		ExternalID: r.ExternalID,
		ClipStart:  r.ClipStart,
		ClipEnd:    r.ClipEnd,
		Title:      r.Title,
		Artist:     r.Artist,
		Performer:  r.Performer,
	}
}

func describe(title, artist, source string) string {
	switch {
	case title == "":
		return fmt.Sprintf("Untitled (%s)", source)
	case artist == "":
		return fmt.Sprintf("%s (%s)", title, source)
	default:
		return fmt.Sprintf("%s - %s (%s)", artist, title, source)
	}
}
