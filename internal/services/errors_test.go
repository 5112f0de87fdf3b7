package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"suimu/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "convert", "ffmpeg", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"convert", "ffmpeg", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestFatalClassification(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		fatal bool
		code  int
	}{
		{"nil", nil, false, services.ExitOK},
		{"config", services.Wrap(services.ErrConfiguration, "preflight", "lookup", "ffmpeg missing", nil), true, services.ExitUsage},
		{"validation", fmt.Errorf("load: %w", services.ErrValidation), true, services.ExitUsage},
		{"not found", services.Wrap(services.ErrNotFound, "csv", "open", "", nil), true, services.ExitUsage},
		{"tool", services.Wrap(services.ErrExternalTool, "build", "run", "", nil), false, services.ExitFailure},
		{"plain", errors.New("disk full"), false, services.ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.Fatal(tt.err); got != tt.fatal {
				t.Fatalf("Fatal() = %v, want %v", got, tt.fatal)
			}
			if got := services.ExitCode(tt.err); got != tt.code {
				t.Fatalf("ExitCode() = %d, want %d", got, tt.code)
			}
		})
	}
}
