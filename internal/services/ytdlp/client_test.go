package ytdlp_test

import (
	"context"
	"strings"
	"testing"

	"suimu/internal/music"
	"suimu/internal/platform"
	"suimu/internal/services/runner"
	"suimu/internal/services/ytdlp"
)

type stubExecutor struct {
	binary  string
	args    []string
	outcome runner.Outcome
}

func (s *stubExecutor) Run(_ context.Context, binary string, args []string) (runner.Outcome, error) {
	s.binary = binary
	s.args = append([]string(nil), args...)
	return s.outcome, nil
}

func TestDownloadBuildsArguments(t *testing.T) {
	stub := &stubExecutor{}
	client, err := ytdlp.New("yt-dlp", 0, ytdlp.WithExecutor(stub))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rec, err := music.Normalize(music.RawRecord{
		Datetime:   "2021-01-01T00:00:00Z",
		Platform:   "YOUTUBE",
		ExternalID: "ZfDYRy17CBY",
		Status:     "0",
		Title:      "Bluerose",
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	info := platform.MustNewRegistry().Lookup(platform.YouTube)

	outcome, err := client.Download(context.Background(), rec, info, "/src/ZfDYRy17CBY.mp4")
	if err != nil || !outcome.Success() {
		t.Fatalf("Download: outcome=%+v err=%v", outcome, err)
	}
	if stub.binary != "yt-dlp" {
		t.Fatalf("binary = %s", stub.binary)
	}
	want := "-f bestaudio[ext=m4a] -o /src/ZfDYRy17CBY.mp4 https://www.youtube.com/watch?v=ZfDYRy17CBY"
	if got := strings.Join(stub.args, " "); got != want {
		t.Fatalf("args = %q, want %q", got, want)
	}
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := ytdlp.New("  ", 0); err == nil {
		t.Fatal("expected error for blank binary")
	}
}
