package openrouter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/erikhoward/graft/core"
)

// normalizeError converts an HTTP error response to a ProviderError with the appropriate sentinel.
func normalizeError(status int, body []byte) error {
	var errResp errorResponse
	_ = json.Unmarshal(body, &errResp)

	message := errResp.Error.Message
	if message == "" {
		message = strings.TrimSpace(string(body))
	}
	if message == "" {
		message = http.StatusText(status)
	}

	return &core.ProviderError{
		Provider: "openrouter",
		Status:   status,
		Code:     codeString(errResp.Error.Code),
		Message:  message,
		Err:      mapStatusToError(status),
	}
}

// mapStatusToError maps HTTP status codes to sentinel errors.
func mapStatusToError(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden || status == http.StatusPaymentRequired:
		return core.ErrUnauthorized
	case status == http.StatusTooManyRequests:
		return core.ErrRateLimited
	case status >= 500:
		return core.ErrServer
	default:
		return core.ErrBadRequest
	}
}

// newAPIError converts an error object embedded in a 200 response.
func newAPIError(e *apiError) error {
	status := 0
	if n, ok := e.Code.(float64); ok {
		status = int(n)
	}
	sentinel := core.ErrBadRequest
	if status != 0 {
		sentinel = mapStatusToError(status)
	}
	return &core.ProviderError{
		Provider: "openrouter",
		Status:   status,
		Code:     codeString(e.Code),
		Message:  e.Message,
		Err:      sentinel,
	}
}

// newNetworkError creates a ProviderError for network-related failures.
func newNetworkError(err error) error {
	return &core.ProviderError{
		Provider: "openrouter",
		Code:     "network_error",
		Message:  err.Error(),
		Err:      core.ErrNetwork,
	}
}

// newDecodeError creates a ProviderError for JSON decode failures.
func newDecodeError(err error) error {
	return &core.ProviderError{
		Provider: "openrouter",
		Code:     "decode_error",
		Message:  err.Error(),
		Err:      core.ErrDecode,
	}
}

func codeString(code any) string {
	switch c := code.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return fmt.Sprintf("%d", int(c))
	default:
		return fmt.Sprint(c)
	}
}
