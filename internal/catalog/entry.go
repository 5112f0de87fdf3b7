package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"suimu/internal/artifact"
	"suimu/internal/music"
	"suimu/internal/platform"
)

// TimeLayout renders datetimes with a numeric offset, never "Z".
const TimeLayout = "2006-01-02T15:04:05.999999999-07:00"

// Entry is one published catalog row.
type Entry struct {
	URL        string
	RecordedAt time.Time
	Title      string
	Artist     string
	Performer  string
	Status     uint16
	Source     string
}

type entryJSON struct {
	URL       string `json:"url"`
	Datetime  string `json:"datetime"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Performer string `json:"performer"`
	Status    uint16 `json:"status"`
	Source    string `json:"source"`
}

// NewEntry builds the catalog row for rec. The first "{}" in baseURL becomes
// the identity and the second the output extension.
func NewEntry(rec music.Record, registry *platform.Registry, baseURL string) Entry {
	return Entry{
		URL:        ArtifactURL(baseURL, rec.Identity()),
		RecordedAt: rec.RecordedAt,
		Title:      rec.Title,
		Artist:     rec.Artist,
		Performer:  rec.Performer,
		Status:     rec.Status,
		Source:     registry.SourceURL(rec.Platform, rec.ExternalID),
	}
}

// ArtifactURL expands the base URL template for identity.
func ArtifactURL(baseURL, identity string) string {
	url := strings.Replace(baseURL, "{}", identity, 1)
	return strings.Replace(url, "{}", artifact.OutputExtension, 1)
}

// FileName returns the last path segment of the entry URL.
func (e Entry) FileName() string {
	url := e.URL
	if idx := strings.IndexAny(url, "?#"); idx >= 0 {
		url = url[:idx]
	}
	if idx := strings.LastIndexByte(url, '/'); idx >= 0 {
		return url[idx+1:]
	}
	return url
}

// Equal compares entries field by field, with RecordedAt compared as an instant.
func (e Entry) Equal(other Entry) bool {
	return e.URL == other.URL &&
		e.RecordedAt.Equal(other.RecordedAt) &&
		e.Title == other.Title &&
		e.Artist == other.Artist &&
		e.Performer == other.Performer &&
		e.Status == other.Status &&
		e.Source == other.Source
}

// key is a comparable form of Entry consistent with Equal.
type key struct {
	url, title, artist, performer, source string
	unix                                  int64
	nanos                                 int
	status                                uint16
}

func (e Entry) key() key {
	return key{
		url:       e.URL,
		title:     e.Title,
		artist:    e.Artist,
		performer: e.Performer,
		source:    e.Source,
		unix:      e.RecordedAt.Unix(),
		nanos:     e.RecordedAt.Nanosecond(),
		status:    e.Status,
	}
}

func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(entryJSON{
		URL:       e.URL,
		Datetime:  e.RecordedAt.Format(TimeLayout),
		Title:     e.Title,
		Artist:    e.Artist,
		Performer: e.Performer,
		Status:    e.Status,
		Source:    e.Source,
	})
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw entryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	recordedAt, err := time.Parse(time.RFC3339Nano, raw.Datetime)
	if err != nil {
		return fmt.Errorf("entry %q: datetime: %w", raw.URL, err)
	}
	*e = Entry{
		URL:        raw.URL,
		RecordedAt: recordedAt,
		Title:      raw.Title,
		Artist:     raw.Artist,
		Performer:  raw.Performer,
		Status:     raw.Status,
		Source:     raw.Source,
	}
	return nil
}
