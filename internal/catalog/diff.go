package catalog

import (
	"encoding/json"
	"fmt"
	"time"
)

// Diff lists the entries that appeared and disappeared between two catalogs.
type Diff struct {
	Added      []Entry
	Removed    []Entry
	ComputedAt time.Time
}

type diffJSON struct {
	Added      []Entry `json:"added"`
	Removed    []Entry `json:"removed"`
	ComputedAt string  `json:"computed_at"`
}

// Compute returns entries of current missing from previous (in current order)
// and entries of previous missing from current (in previous order).
func Compute(previous, current []Entry, now time.Time) Diff {
	return Diff{
		Added:      subtract(current, previous),
		Removed:    subtract(previous, current),
		ComputedAt: now.UTC(),
	}
}

// Empty reports whether nothing changed.
func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

func subtract(from, other []Entry) []Entry {
	present := make(map[key]struct{}, len(other))
	for _, entry := range other {
		present[entry.key()] = struct{}{}
	}
	out := make([]Entry, 0)
	for _, entry := range from {
		if _, ok := present[entry.key()]; !ok {
			out = append(out, entry)
		}
	}
	return out
}

func (d Diff) MarshalJSON() ([]byte, error) {
	added, removed := d.Added, d.Removed
	if added == nil {
		added = []Entry{}
	}
	if removed == nil {
		removed = []Entry{}
	}
	return json.Marshal(diffJSON{
		Added:      added,
		Removed:    removed,
		ComputedAt: d.ComputedAt.UTC().Format(time.RFC3339),
	})
}

func (d *Diff) UnmarshalJSON(data []byte) error {
	var raw diffJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	computedAt, err := time.Parse(time.RFC3339, raw.ComputedAt)
	if err != nil {
		return fmt.Errorf("diff computed_at: %w", err)
	}
	*d = Diff{Added: raw.Added, Removed: raw.Removed, ComputedAt: computedAt}
	return nil
}
