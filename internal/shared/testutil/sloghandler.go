package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// LogRecord is one captured log entry.
type LogRecord struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// logBuffer is the shared store behind a handler and its WithAttrs
// derivatives, so records land in one place regardless of which
// derived logger emitted them.
type logBuffer struct {
	mu      sync.Mutex
	records []LogRecord
	t       *testing.T
}

// BufferedSlogHandler captures records for assertions. Attrs bound via
// WithAttrs are folded into each captured record; groups are flattened,
// so keys appear without a group prefix.
type BufferedSlogHandler struct {
	buf  *logBuffer
	base []slog.Attr
}

// NewBufferedSlogHandler returns a handler that records every level.
func NewBufferedSlogHandler(t *testing.T) *BufferedSlogHandler {
	return &BufferedSlogHandler{buf: &logBuffer{t: t}}
}

// Handle implements slog.Handler.
func (h *BufferedSlogHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, r.NumAttrs()+len(h.base))
	for _, a := range h.base {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.buf.mu.Lock()
	h.buf.records = append(h.buf.records, LogRecord{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	h.buf.mu.Unlock()

	if h.buf.t != nil {
		h.buf.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}

	return nil
}

// Enabled implements slog.Handler; tests capture everything.
func (h *BufferedSlogHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

// WithAttrs implements slog.Handler. The derived handler shares the
// record buffer.
func (h *BufferedSlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	base := make([]slog.Attr, 0, len(h.base)+len(attrs))
	base = append(base, h.base...)
	base = append(base, attrs...)
	return &BufferedSlogHandler{buf: h.buf, base: base}
}

// WithGroup implements slog.Handler. Groups are not tracked; attr keys
// stay unprefixed, which keeps assertions simple.
func (h *BufferedSlogHandler) WithGroup(string) slog.Handler {
	return h
}

// GetRecords returns a copy of all captured records.
func (h *BufferedSlogHandler) GetRecords() []LogRecord {
	h.buf.mu.Lock()
	defer h.buf.mu.Unlock()

	records := make([]LogRecord, len(h.buf.records))
	copy(records, h.buf.records)
	return records
}

// GetRecordsByLevel returns the captured records at the given level.
func (h *BufferedSlogHandler) GetRecordsByLevel(level slog.Level) []LogRecord {
	h.buf.mu.Lock()
	defer h.buf.mu.Unlock()

	var filtered []LogRecord
	for _, r := range h.buf.records {
		if r.Level == level {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// ContainsMessage reports whether any record's message contains the
// given substring.
func (h *BufferedSlogHandler) ContainsMessage(message string) bool {
	h.buf.mu.Lock()
	defer h.buf.mu.Unlock()

	for _, r := range h.buf.records {
		if strings.Contains(r.Message, message) {
			return true
		}
	}
	return false
}

// Clear drops all captured records.
func (h *BufferedSlogHandler) Clear() {
	h.buf.mu.Lock()
	defer h.buf.mu.Unlock()
	h.buf.records = h.buf.records[:0]
}

// NewTestLogger returns a logger wired to a buffered handler, ready for
// log assertions.
func NewTestLogger(t *testing.T) (*slog.Logger, *BufferedSlogHandler) {
	handler := NewBufferedSlogHandler(t)
	return slog.New(handler), handler
}
