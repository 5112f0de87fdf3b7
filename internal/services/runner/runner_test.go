package runner_test

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"suimu/internal/services"
	"suimu/internal/services/runner"
	"suimu/internal/testsupport"
)

func TestCommandExecutorCapturesNonZeroExit(t *testing.T) {
	outcome, err := runner.CommandExecutor{}.Run(context.Background(), "sh", []string{"-c", "echo out; echo err >&2; exit 3"})
	if err != nil {
		t.Fatalf("non-zero exit should not be an error: %v", err)
	}
	if outcome.ExitCode != 3 {
		t.Fatalf("ExitCode = %d, want 3", outcome.ExitCode)
	}
	if strings.TrimSpace(outcome.Stdout) != "out" || strings.TrimSpace(outcome.Stderr) != "err" {
		t.Fatalf("unexpected output: stdout=%q stderr=%q", outcome.Stdout, outcome.Stderr)
	}
	if outcome.Success() {
		t.Fatal("expected failure outcome")
	}
	if outcome.Summary() != "err" {
		t.Fatalf("Summary = %q", outcome.Summary())
	}
}

func TestCommandExecutorLaunchFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-binary")
	_, err := runner.CommandExecutor{}.Run(context.Background(), missing, nil)
	if err == nil {
		t.Fatal("expected launch error")
	}
	if !errors.Is(err, runner.ErrLaunch) {
		t.Fatalf("expected ErrLaunch, got %v", err)
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration marker, got %v", err)
	}
}

type blockingExecutor struct{}

func (blockingExecutor) Run(ctx context.Context, _ string, _ []string) (runner.Outcome, error) {
	<-ctx.Done()
	return runner.Outcome{ExitCode: -1}, ctx.Err()
}

func TestRunnerTimeoutIsRecordLocal(t *testing.T) {
	r := runner.New(20*time.Millisecond, runner.WithExecutor(blockingExecutor{}))
	outcome, err := r.Run(context.Background(), "youtube-dl", nil)
	if err != nil {
		t.Fatalf("timeout should be reported through the outcome: %v", err)
	}
	if !outcome.TimedOut || outcome.Success() {
		t.Fatalf("expected timed out outcome, got %+v", outcome)
	}
}

func TestRunnerPropagatesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := runner.New(0, runner.WithExecutor(blockingExecutor{}))
	if _, err := r.Run(ctx, "ffmpeg", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type recordingExecutor struct {
	binary string
	args   []string
}

func (e *recordingExecutor) Run(_ context.Context, binary string, args []string) (runner.Outcome, error) {
	e.binary = binary
	e.args = append([]string(nil), args...)
	return runner.Outcome{}, nil
}

func TestRunnerDelegatesToExecutor(t *testing.T) {
	rec := &recordingExecutor{}
	r := runner.New(0, runner.WithExecutor(rec))
	outcome, err := r.Run(context.Background(), "ffmpeg", []string{"-i", "in"})
	if err != nil || !outcome.Success() {
		t.Fatalf("Run: outcome=%+v err=%v", outcome, err)
	}
	if rec.binary != "ffmpeg" || strings.Join(rec.args, " ") != "-i in" {
		t.Fatalf("unexpected invocation %s %v", rec.binary, rec.args)
	}
}

func TestOutcomeErrClassifies(t *testing.T) {
	if err := (runner.Outcome{}).Err("ffmpeg"); err != nil {
		t.Fatalf("expected nil for success, got %v", err)
	}
	timedOut := runner.Outcome{ExitCode: -1, TimedOut: true, Duration: time.Second}
	if err := timedOut.Err("ffmpeg"); !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout classification, got %v", err)
	}
	failed := runner.Outcome{ExitCode: 1, Stderr: "first\nERROR: gone\n"}
	err := failed.Err("youtube-dl")
	if !errors.Is(err, services.ErrExternalTool) || !strings.Contains(err.Error(), "ERROR: gone") {
		t.Fatalf("expected external tool error with stderr summary, got %v", err)
	}
}

type failingExecutor struct{}

func (failingExecutor) Run(context.Context, string, []string) (runner.Outcome, error) {
	return runner.Outcome{ExitCode: 1, Stderr: "ERROR: Video unavailable\n"}, nil
}

func TestRunnerLeavesFailureWarningToCaller(t *testing.T) {
	logs, logger := testsupport.NewLogRecorder()
	r := runner.New(0, runner.WithExecutor(failingExecutor{}), runner.WithLogger(logger))
	outcome, err := r.Run(context.Background(), "youtube-dl", []string{"-f", "best"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Success() {
		t.Fatal("expected failed outcome")
	}
	if warned := logs.AtLeast(slog.LevelWarn); len(warned) != 0 {
		t.Fatalf("runner should not warn, got %+v", warned)
	}
	var sawFailure bool
	for _, rec := range logs.Records() {
		if rec.Message == "command failed" && rec.Level == slog.LevelDebug && rec.Attrs["exit_code"] == "1" {
			sawFailure = true
		}
	}
	if !sawFailure {
		t.Fatalf("expected debug record of the failure, got %+v", logs.Records())
	}
}
