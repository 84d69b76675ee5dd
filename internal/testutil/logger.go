// Package testutil provides shared logging helpers for the package
// tests.
package testutil

import (
	"context"
	"log/slog"
	"sync"
	"testing"
)

// NewTestLogger returns a debug-level logger that writes through
// t.Log, so output lands with the test that produced it and only
// shows on failure or with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// CaptureHandler records every log message it handles, for tests that
// assert on what a table logged.
type CaptureHandler struct {
	mu       sync.Mutex
	messages []string
}

// NewCaptureLogger returns a debug-level logger and the handler
// recording its output.
func NewCaptureLogger() (*slog.Logger, *CaptureHandler) {
	h := &CaptureHandler{}
	return slog.New(h), h
}

func (h *CaptureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *CaptureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, r.Message)
	return nil
}

func (h *CaptureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *CaptureHandler) WithGroup(string) slog.Handler      { return h }

// Messages returns the recorded messages in order.
func (h *CaptureHandler) Messages() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.messages))
	copy(out, h.messages)
	return out
}
