// Package logging configures Graft's diagnostic logger.
package logging

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"

	"github.com/erikhoward/graft/core"
)

// DefaultLevel keeps normal runs quiet.
const DefaultLevel = slog.LevelWarn

// Level returns the log level for the -v flag.
func Level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return DefaultLevel
}

// New returns a tint logger writing to w. Colour is used only when w is a
// terminal.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		NoColor:    !IsTerminal(w),
		TimeFormat: time.Kitchen,
		Level:      level,
	}))
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Telemetry logs provider calls.
type Telemetry struct {
	Logger *slog.Logger
}

var _ core.TelemetryHook = Telemetry{}

// OnRequestStart logs the provider and model at debug level.
func (t Telemetry) OnRequestStart(e core.RequestStartEvent) {
	t.Logger.Debug("request started", "provider", e.Provider, "model", e.Model)
}

// OnRequestEnd logs the duration and token usage, or the error, at debug
// level.
func (t Telemetry) OnRequestEnd(e core.RequestEndEvent) {
	attrs := []any{
		"provider", e.Provider,
		"model", e.Model,
		"duration", e.Duration().Round(time.Millisecond),
	}
	if e.Err != nil {
		t.Logger.Debug("request failed", append(attrs, "error", e.Err)...)
		return
	}
	t.Logger.Debug("request finished", append(attrs,
		"prompt_tokens", e.Usage.PromptTokens,
		"completion_tokens", e.Usage.CompletionTokens,
		"total_tokens", e.Usage.TotalTokens,
	)...)
}
