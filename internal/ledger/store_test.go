package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run, err := store.BeginRun(ctx, "", false)
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if run.ID == "" {
		t.Fatal("expected run id")
	}

	outcomes := []RecordOutcome{
		{RunID: run.ID, Identity: "0c2b9da9cfe08c9e", Platform: "YOUTUBE", ExternalID: "ZfDYRy17CBY", Outcome: "converted", Duration: 1500 * time.Millisecond},
		{RunID: run.ID, Identity: "d52a8a351014118c", Platform: "BILIBILI", ExternalID: "BV1U7411s7X1", Outcome: "download_failed", ExitCode: 1, Detail: "HTTP Error 404"},
	}
	for _, o := range outcomes {
		if err := store.RecordOutcome(ctx, o); err != nil {
			t.Fatalf("RecordOutcome: %v", err)
		}
	}
	totals := Totals{Total: 2, Converted: 1, Failed: 1, Added: 1}
	if err := store.FinishRun(ctx, run.ID, totals, nil); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	got, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if !got.Finished() || got.Total != 2 || got.Converted != 1 || got.Failed != 1 || got.Added != 1 || got.Error != "" {
		t.Fatalf("unexpected run %+v", got)
	}

	records, err := store.RunRecords(ctx, run.ID)
	if err != nil {
		t.Fatalf("RunRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Outcome != "converted" || records[0].Duration != 1500*time.Millisecond {
		t.Fatalf("unexpected first record %+v", records[0])
	}
	if records[1].Detail != "HTTP Error 404" || records[1].ExitCode != 1 {
		t.Fatalf("unexpected second record %+v", records[1])
	}
}

func TestRecentRunsNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		store.now = func() time.Time { return at }
		run, err := store.BeginRun(ctx, "", i == 2)
		if err != nil {
			t.Fatalf("BeginRun: %v", err)
		}
		ids = append(ids, run.ID)
	}
	if err := store.FinishRun(ctx, ids[1], Totals{}, errors.New("lock held")); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	runs, err := store.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != ids[2] || runs[1].ID != ids[1] {
		t.Fatalf("unexpected order: %+v", runs)
	}
	if !runs[0].DryRun || runs[0].Finished() {
		t.Fatalf("expected unfinished dry run, got %+v", runs[0])
	}
	if runs[1].Error != "lock held" {
		t.Fatalf("expected run error, got %q", runs[1].Error)
	}
}

func TestFinishUnknownRun(t *testing.T) {
	store := openTestStore(t)
	err := store.FinishRun(context.Background(), "missing", Totals{}, nil)
	if !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := store.GetRun(context.Background(), "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound from GetRun, got %v", err)
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	run, err := store.BeginRun(context.Background(), "run-fixed", false)
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	_ = store.Close()

	store, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	if _, err := store.GetRun(context.Background(), run.ID); err != nil {
		t.Fatalf("GetRun after reopen: %v", err)
	}
}
