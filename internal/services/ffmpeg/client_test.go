package ffmpeg_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"suimu/internal/music"
	"suimu/internal/services/ffmpeg"
	"suimu/internal/services/runner"
)

// writingExecutor creates the requested output file and returns outcome.
type writingExecutor struct {
	args    []string
	outcome runner.Outcome
	err     error
	write   bool
}

func (e *writingExecutor) Run(_ context.Context, _ string, args []string) (runner.Outcome, error) {
	e.args = append([]string(nil), args...)
	if e.write {
		_ = os.WriteFile(args[len(args)-1], []byte("audio"), 0o644)
	}
	return e.outcome, e.err
}

func clipRecord(t *testing.T) music.Record {
	t.Helper()
	rec, err := music.Normalize(music.RawRecord{
		Datetime:   "2020-03-22T21:00:00+09:00",
		Platform:   "BILIBILI",
		ExternalID: "BV1U7411s7X1",
		ClipStart:  "971",
		ClipEnd:    "1194.8",
		Status:     "0",
		Title:      "ホワイトハッピー",
		Artist:     "極悪P",
		Performer:  "星街すいせい",
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	return rec
}

func TestArgsWithClipBounds(t *testing.T) {
	rec := clipRecord(t)
	got := strings.Join(ffmpeg.Args(rec, "src.flv", "out.m4a"), "|")
	want := strings.Join([]string{
		"-i", "src.flv",
		"-acodec", "copy",
		"-movflags", "faststart",
		"-metadata", "title=ホワイトハッピー / 極悪P",
		"-metadata", "artist=星街すいせい",
		"-vn",
		"-ss", "971.0",
		"-to", "1194.8",
		"out.m4a",
	}, "|")
	if got != want {
		t.Fatalf("args mismatch\n got: %s\nwant: %s", got, want)
	}
}

func TestArgsWithoutClipBounds(t *testing.T) {
	rec := clipRecord(t)
	rec.ClipStart, rec.ClipEnd = nil, nil
	args := ffmpeg.Args(rec, "src.flv", "out.m4a")
	for _, arg := range args {
		if arg == "-ss" || arg == "-to" {
			t.Fatalf("unexpected clip flag in %v", args)
		}
	}
}

func TestConvertRenamesOnSuccess(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "abc.m4a")
	stub := &writingExecutor{write: true}
	client, err := ffmpeg.New("ffmpeg", 0, ffmpeg.WithExecutor(stub))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := client.Convert(context.Background(), clipRecord(t), "src.flv", out); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if stub.args[len(stub.args)-1] != ffmpeg.TempPath(out) {
		t.Fatalf("transcoder should write to the temp path, got %s", stub.args[len(stub.args)-1])
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("expected output file: %v", err)
	}
	if _, err := os.Stat(ffmpeg.TempPath(out)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("temp file should be gone, stat err=%v", err)
	}
}

func TestConvertFailureLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "abc.m4a")
	stub := &writingExecutor{write: true, outcome: runner.Outcome{ExitCode: 1, Stderr: "Invalid data"}}
	client, err := ffmpeg.New("ffmpeg", 0, ffmpeg.WithExecutor(stub))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	outcome, err := client.Convert(context.Background(), clipRecord(t), "src.flv", out)
	if err != nil {
		t.Fatalf("non-zero exit should not be an error: %v", err)
	}
	if outcome.Success() {
		t.Fatal("expected failed outcome")
	}
	for _, path := range []string{out, ffmpeg.TempPath(out)} {
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("%s should not exist, stat err=%v", path, err)
		}
	}
}

func TestConvertCancellationRemovesTemp(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "abc.m4a")
	stub := &writingExecutor{write: true, outcome: runner.Outcome{ExitCode: -1}, err: context.Canceled}
	client, err := ffmpeg.New("ffmpeg", 0, ffmpeg.WithExecutor(stub))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.Convert(context.Background(), clipRecord(t), "src.flv", out); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
	if _, err := os.Stat(ffmpeg.TempPath(out)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("temp file should be removed, stat err=%v", err)
	}
}

func TestTempPath(t *testing.T) {
	got := ffmpeg.TempPath(filepath.Join("out", "0c2b9da9cfe08c9e.m4a"))
	want := filepath.Join("out", ".0c2b9da9cfe08c9e.partial.m4a")
	if got != want {
		t.Fatalf("TempPath = %s, want %s", got, want)
	}
}
