package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnavailable indicates the backend could not be reached at all.
var ErrUnavailable = errors.New("backend unavailable")

// APIError is a non-2xx response. Status and body stay inspectable so
// callers can classify failures without re-parsing.
type APIError struct {
	Status  int
	Body    []byte
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// Unauthorized reports whether the backend rejected the session.
func (e *APIError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

func newAPIError(status int, body []byte) *APIError {
	return &APIError{Status: status, Body: body, Message: serverMessage(body)}
}

// serverMessage pulls a human-readable message out of an error body. The
// backend uses "message"; a few endpoints use "error".
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(payload.Message); msg != "" {
		return msg
	}
	return strings.TrimSpace(payload.Error)
}

// UserMessage returns the server-provided message when err carries one,
// otherwise fallback.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Unauthorized()
}
