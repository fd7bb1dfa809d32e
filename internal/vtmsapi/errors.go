package vtmsapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnauthorized reports that the upstream rejected the session token.
var ErrUnauthorized = errors.New("vtmsapi: unauthorized")

// ErrTokenMissing reports a successful login response without a token.
var ErrTokenMissing = errors.New("vtmsapi: token missing in response")

// Messages shown to users when the upstream gives none.
const (
	LoginFailedMessage  = "Login failed. Please try again."
	TokenMissingMessage = "Token missing in response"
)

// APIError is a non-2xx upstream response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("vtmsapi: status %d: %s", e.Status, msg)
}

// Is matches ErrUnauthorized for 401 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Message string `json:"message"`
	}
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Message = strings.TrimSpace(payload.Message)
	}
	return apiErr
}

// UserMessage extracts the upstream message from err, or returns fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, ErrTokenMissing) {
		return TokenMissingMessage
	}
	return fallback
}
