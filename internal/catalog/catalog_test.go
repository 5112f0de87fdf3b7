package catalog

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"suimu/internal/artifact"
	"suimu/internal/music"
	"suimu/internal/platform"
)

const testBaseURL = "https://cdn.example.com/{}.{}"

func entry(name string) Entry {
	return Entry{
		URL:        "https://cdn.example.com/" + name + ".m4a",
		RecordedAt: time.Date(2021, 3, 1, 20, 0, 0, 0, time.FixedZone("", 9*3600)),
		Title:      name,
		Artist:     "artist",
		Performer:  "performer",
		Source:     "https://www.youtube.com/watch?v=" + name,
	}
}

func TestComputeAddedAndRemoved(t *testing.T) {
	a, b, c := entry("a"), entry("b"), entry("c")
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("", 3600))

	diff := Compute([]Entry{a, b}, []Entry{b, c}, now)
	if len(diff.Added) != 1 || !diff.Added[0].Equal(c) {
		t.Fatalf("Added = %+v, want [c]", diff.Added)
	}
	if len(diff.Removed) != 1 || !diff.Removed[0].Equal(a) {
		t.Fatalf("Removed = %+v, want [a]", diff.Removed)
	}
	if diff.ComputedAt.Location() != time.UTC {
		t.Fatalf("ComputedAt should be UTC, got %v", diff.ComputedAt.Location())
	}
}

func TestEqualComparesInstants(t *testing.T) {
	a := entry("a")
	b := a
	b.RecordedAt = a.RecordedAt.UTC()
	if !a.Equal(b) {
		t.Fatal("same instant in different zones should be equal")
	}
	if diff := Compute([]Entry{a}, []Entry{b}, time.Now()); !diff.Empty() {
		t.Fatalf("expected empty diff, got %+v", diff)
	}
	b.Status = 1
	if a.Equal(b) {
		t.Fatal("status change should break equality")
	}
}

func TestComputeDistinguishesFarApartInstants(t *testing.T) {
	a := entry("a")
	a.RecordedAt = time.Date(2500, 1, 1, 0, 0, 0, 0, time.UTC)
	b := a
	// 2^64 nanoseconds later: the same value once squeezed into an int64.
	b.RecordedAt = a.RecordedAt.Add(math.MaxInt64).Add(math.MaxInt64).Add(2)
	if a.Equal(b) {
		t.Fatal("entries centuries apart should differ")
	}
	diff := Compute([]Entry{a}, []Entry{b}, time.Now())
	if len(diff.Added) != 1 || len(diff.Removed) != 1 {
		t.Fatalf("expected one added and one removed, got %+v", diff)
	}
}

func TestEntryJSONRoundTrip(t *testing.T) {
	e := entry("a")
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"datetime":"2021-03-01T20:00:00+09:00"`) {
		t.Fatalf("unexpected datetime encoding: %s", data)
	}
	var got Entry
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !got.Equal(e) {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, e)
	}

	utc := e
	utc.RecordedAt = e.RecordedAt.UTC()
	data, _ = json.Marshal(utc)
	if !strings.Contains(string(data), "+00:00") {
		t.Fatalf("UTC should be written as +00:00: %s", data)
	}
}

func TestArtifactURL(t *testing.T) {
	got := ArtifactURL(testBaseURL, "0c2b9da9cfe08c9e")
	if got != "https://cdn.example.com/0c2b9da9cfe08c9e.m4a" {
		t.Fatalf("ArtifactURL = %s", got)
	}
	if name := (Entry{URL: got}).FileName(); name != "0c2b9da9cfe08c9e.m4a" {
		t.Fatalf("FileName = %s", name)
	}
}

func writeBaseline(t *testing.T, path string, entries []Entry) {
	t.Helper()
	data, err := json.Marshal(entries)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadBaselineAbsentSuppressesDiff(t *testing.T) {
	dir := t.TempDir()
	baseline, err := LoadBaseline(filepath.Join(dir, "missing.json"), dir, nil)
	if err != nil {
		t.Fatalf("LoadBaseline: %v", err)
	}
	if baseline.Found {
		t.Fatal("absent file should not be found")
	}
	if _, ok := baseline.Diff([]Entry{entry("a")}, time.Now()); ok {
		t.Fatal("first run should not produce a diff")
	}
}

func TestLoadBaselineDropsMissingArtifacts(t *testing.T) {
	dir := t.TempDir()
	a, b := entry("a"), entry("b")
	if err := os.WriteFile(filepath.Join(dir, "a.m4a"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "catalog.json")
	writeBaseline(t, path, []Entry{a, b})

	baseline, err := LoadBaseline(path, dir, nil)
	if err != nil {
		t.Fatalf("LoadBaseline: %v", err)
	}
	if !baseline.Found || len(baseline.Entries) != 1 || !baseline.Entries[0].Equal(a) {
		t.Fatalf("unexpected baseline %+v", baseline)
	}
	diff, ok := baseline.Diff([]Entry{a}, time.Now())
	if !ok || !diff.Empty() {
		t.Fatalf("stale entry should not be reported as removed: %+v", diff)
	}
}

func TestLoadBaselineUnparseableIsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	baseline, err := LoadBaseline(path, dir, nil)
	if err != nil {
		t.Fatalf("LoadBaseline: %v", err)
	}
	if !baseline.Found || len(baseline.Entries) != 0 {
		t.Fatalf("expected found empty baseline, got %+v", baseline)
	}
	diff, ok := baseline.Diff([]Entry{entry("a")}, time.Now())
	if !ok || len(diff.Added) != 1 || len(diff.Removed) != 0 {
		t.Fatalf("unexpected diff %+v", diff)
	}
}

func TestProjectIncludesOnlyBuilt(t *testing.T) {
	dir := t.TempDir()
	resolver := artifact.Resolver{SourceDir: dir, OutputDir: dir, Registry: platform.MustNewRegistry()}
	var records []music.Record
	for _, id := range []string{"one", "two"} {
		rec, err := music.Normalize(music.RawRecord{
			Datetime: "2021-01-01T00:00:00+09:00", Platform: "YOUTUBE", ExternalID: id, Status: "2", Title: id,
		})
		if err != nil {
			t.Fatal(err)
		}
		records = append(records, rec)
	}
	if err := os.WriteFile(resolver.OutputPath(records[1]), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := Project(records, resolver, testBaseURL, nil)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	got := entries[0]
	if got.URL != "https://cdn.example.com/"+records[1].Identity()+".m4a" {
		t.Fatalf("URL = %s", got.URL)
	}
	if got.Source != "https://www.youtube.com/watch?v=two" || got.Status != 2 {
		t.Fatalf("unexpected entry %+v", got)
	}
}

func TestWriteDiffShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diff.json")
	diff := Compute(nil, nil, time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC))
	if err := WriteDiff(path, diff); err != nil {
		t.Fatalf("WriteDiff: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if raw["computed_at"] != "2024-05-06T07:08:09Z" {
		t.Fatalf("computed_at = %v", raw["computed_at"])
	}
	if added, ok := raw["added"].([]any); !ok || len(added) != 0 {
		t.Fatalf("added should be an empty list, got %v", raw["added"])
	}
}
