package core

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the client and providers.
var (
	ErrModelRequired = errors.New("model is required")
	ErrNoMessages    = errors.New("at least one message is required")
	ErrEmptyPrompt   = errors.New("prompt is required")

	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limited")
	ErrBadRequest   = errors.New("bad request")
	ErrServer       = errors.New("server error")
	ErrNetwork      = errors.New("network error")
	ErrDecode       = errors.New("decode error")

	ErrMalformedResponse = errors.New("unexpected API response format")
)

// ProviderError describes a failure reported by, or while talking to, a provider.
type ProviderError struct {
	Provider string
	Status   int
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	switch {
	case e.Status != 0 && e.Code != "":
		return fmt.Sprintf("%s: %s (status %d, code %s)", e.Provider, msg, e.Status, e.Code)
	case e.Status != 0:
		return fmt.Sprintf("%s: %s (status %d)", e.Provider, msg, e.Status)
	default:
		return fmt.Sprintf("%s: %s", e.Provider, msg)
	}
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
