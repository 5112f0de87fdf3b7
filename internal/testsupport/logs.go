package testsupport

import (
	"context"
	"log/slog"
	"sync"
)

// LoggedRecord is one entry captured by LogRecorder.
type LoggedRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]string
}

// LogRecorder is a slog.Handler that keeps every record at debug and above.
type LogRecorder struct {
	mu      *sync.Mutex
	records *[]LoggedRecord
	attrs   []slog.Attr
}

// NewLogRecorder returns a recorder and a logger writing to it.
func NewLogRecorder() (*LogRecorder, *slog.Logger) {
	rec := &LogRecorder{mu: &sync.Mutex{}, records: &[]LoggedRecord{}}
	return rec, slog.New(rec)
}

func (h *LogRecorder) Enabled(context.Context, slog.Level) bool { return true }

func (h *LogRecorder) Handle(_ context.Context, record slog.Record) error {
	attrs := make(map[string]string, len(h.attrs)+record.NumAttrs())
	for _, attr := range h.attrs {
		attrs[attr.Key] = attr.Value.String()
	}
	record.Attrs(func(attr slog.Attr) bool {
		attrs[attr.Key] = attr.Value.String()
		return true
	})
	h.mu.Lock()
	*h.records = append(*h.records, LoggedRecord{Level: record.Level, Message: record.Message, Attrs: attrs})
	h.mu.Unlock()
	return nil
}

func (h *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

// WithGroup is flattened; tests match on attribute keys only.
func (h *LogRecorder) WithGroup(string) slog.Handler { return h }

// Records returns a copy of everything captured so far.
func (h *LogRecorder) Records() []LoggedRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]LoggedRecord(nil), *h.records...)
}

// AtLeast returns the captured records at level or above.
func (h *LogRecorder) AtLeast(level slog.Level) []LoggedRecord {
	var out []LoggedRecord
	for _, r := range h.Records() {
		if r.Level >= level {
			out = append(out, r)
		}
	}
	return out
}
