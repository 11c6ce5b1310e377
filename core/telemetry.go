package core

import "time"

// RequestStartEvent is emitted before a provider call.
type RequestStartEvent struct {
	Provider string
	Model    ModelID
	Start    time.Time
}

// RequestEndEvent is emitted after a provider call, successful or not.
type RequestEndEvent struct {
	Provider string
	Model    ModelID
	Start    time.Time
	End      time.Time
	Usage    TokenUsage
	Err      error
}

// Duration returns the elapsed time of the request.
func (e RequestEndEvent) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// TelemetryHook observes provider calls.
type TelemetryHook interface {
	OnRequestStart(RequestStartEvent)
	OnRequestEnd(RequestEndEvent)
}

// NoopTelemetryHook discards all events.
type NoopTelemetryHook struct{}

func (NoopTelemetryHook) OnRequestStart(RequestStartEvent) {}
func (NoopTelemetryHook) OnRequestEnd(RequestEndEvent)     {}
