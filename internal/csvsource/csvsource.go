package csvsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"suimu/internal/music"
	"suimu/internal/services"
)

// Columns lists the recognised header names in their conventional order.
var Columns = []string{
	"datetime",
	"video_type",
	"video_id",
	"clip_start",
	"clip_end",
	"status",
	"title",
	"artist",
	"performer",
	"comment",
}

// optional columns may be absent from the header.
var optional = map[string]bool{"comment": true}

// Load opens path and decodes it.
func Load(path string) ([]music.RawRecord, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, services.Wrap(services.ErrNotFound, "csv", "open", path+" does not exist", nil)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "csv", "open", path, err)
	}
	defer f.Close()

	records, err := Decode(f)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "csv", "decode", path, err)
	}
	return records, nil
}

// Decode reads a header row followed by data rows.
func Decode(r io.Reader) ([]music.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	var records []music.RawRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if blankRow(row) {
			continue
		}
		line, _ := reader.FieldPos(0)
		get := func(name string) (string, error) {
			i, ok := index[name]
			if !ok {
				return "", nil
			}
			if i >= len(row) {
				return "", fmt.Errorf("line %d: missing %s column", line, name)
			}
			return row[i], nil
		}

		var rec music.RawRecord
		for _, field := range []struct {
			name string
			dst  *string
		}{
			{"datetime", &rec.Datetime},
			{"video_type", &rec.Platform},
			{"video_id", &rec.ExternalID},
			{"clip_start", &rec.ClipStart},
			{"clip_end", &rec.ClipEnd},
			{"status", &rec.Status},
			{"title", &rec.Title},
			{"artist", &rec.Artist},
			{"performer", &rec.Performer},
			{"comment", &rec.Comment},
		} {
			value, err := get(field.name)
			if err != nil {
				return nil, err
			}
			*field.dst = value
		}
		records = append(records, rec)
	}
	return records, nil
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		index[name] = i
	}
	var missing []string
	for _, name := range Columns {
		if _, ok := index[name]; !ok && !optional[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return index, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
