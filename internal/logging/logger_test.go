package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"suimu/internal/config"
	"suimu/internal/services"
)

func newTestConsole(buf *bytes.Buffer, level slog.Level) *slog.Logger {
	lvl := new(slog.LevelVar)
	lvl.Set(level)
	return slog.New(newConsoleHandler(buf, lvl, false))
}

func TestConsoleHandlerSingleLine(t *testing.T) {
	var buf bytes.Buffer
	logger := NewComponentLogger(newTestConsole(&buf, slog.LevelInfo), "builder")
	logger.Info("converted", String(FieldRecord, "YOUTUBE/abc"), String("title", "Song A"), Int("exit_code", 0))

	line := buf.String()
	if strings.Count(line, "\n") != 1 {
		t.Fatalf("expected one line, got %q", line)
	}
	for _, want := range []string{"INFO [builder] YOUTUBE/abc - converted", `title="Song A"`, "exit_code=0"} {
		if !strings.Contains(line, want) {
			t.Fatalf("line %q missing %q", line, want)
		}
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should render in the header only: %q", line)
	}
}

func TestConsoleHandlerFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestConsole(&buf, slog.LevelWarn)
	logger.Info("hidden")
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
	logger.Warn("shown")
	if !strings.Contains(buf.String(), "WARN shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestConsoleHandlerGroupsAndDedupe(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestConsole(&buf, slog.LevelInfo).With("count", 1).WithGroup("plan")
	logger.Info("planned", "count", 3, "built", 2)
	line := buf.String()
	if !strings.Contains(line, "count=1") || !strings.Contains(line, "plan.count=3") || !strings.Contains(line, "plan.built=2") {
		t.Fatalf("unexpected grouping: %q", line)
	}

	buf.Reset()
	newTestConsole(&buf, slog.LevelInfo).With("k", "a").Info("msg", "k", "b")
	if strings.Count(buf.String(), "k=") != 1 || !strings.Contains(buf.String(), "k=b") {
		t.Fatalf("expected deduped key with last value, got %q", buf.String())
	}
}

func TestJSONHandlerKeys(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newJSONHandler(&buf, lvl, false))
	logger.Warn("artifact not generated", String(FieldRecord, "YOUTUBE/abc"))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v (%q)", err, buf.String())
	}
	if payload["level"] != "warn" || payload["msg"] != "artifact not generated" {
		t.Fatalf("unexpected payload %v", payload)
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key in %v", payload)
	}
}

func TestWarnWithContextDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestConsole(&buf, slog.LevelInfo)
	WarnWithContext(logger, "download failed", "download_failed", String(FieldImpact, "record skipped"))
	line := buf.String()
	for _, want := range []string{"event_type=download_failed", `error_hint="check logs for details"`, `impact="record skipped"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("line %q missing %q", line, want)
		}
	}
	WarnWithContext(nil, "ignored", "noop")
}

func TestWithContextAddsRunFields(t *testing.T) {
	var buf bytes.Buffer
	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = services.WithRecord(ctx, "BILIBILI/BV1")
	WithContext(ctx, newTestConsole(&buf, slog.LevelInfo)).Info("step")
	line := buf.String()
	if !strings.Contains(line, "BILIBILI/BV1 - step") || !strings.Contains(line, "run_id=run-1") {
		t.Fatalf("unexpected line %q", line)
	}
	if WithContext(context.Background(), nil) == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Format = config.LogFormatJSON
	logger, err := NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	logger.Info("hello", Error(errors.New("boom")))

	data, err := os.ReadFile(cfg.LogFilePath())
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) || !strings.Contains(string(data), `"error":"boom"`) {
		t.Fatalf("unexpected log file contents %q", data)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		" WARN": slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"bogus": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
