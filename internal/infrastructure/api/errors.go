package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized is returned for 401 responses. The session is cleared before it is returned.
	ErrUnauthorized = errors.New("session expired or not authenticated")
	// ErrMalformedResponse wraps responses that break the API contract
	ErrMalformedResponse = errors.New("malformed API response")
)

// APIError is a non-2xx response decoded from the server's structured error body
type APIError struct {
	Status     int    `json:"-"`
	Err        string `json:"error"`
	Message    string `json:"message"`
	Reason     string `json:"reason"`
	Suggestion string `json:"suggestion"`
}

// Error joins the non-empty error, message, reason and suggestion fields with ". "
func (e *APIError) Error() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{e.Err, e.Message, e.Reason, e.Suggestion} {
		p = strings.TrimSpace(p)
		p = strings.TrimSuffix(p, ".")
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		if text := http.StatusText(e.Status); text != "" {
			return text
		}
		return "request failed"
	}
	return strings.Join(parts, ". ")
}

// Is makes a 401 APIError match ErrUnauthorized
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// decodeError builds an APIError from a response body.
// Bodies that are not the structured envelope fall back to the status text, or to a plain-text body.
func decodeError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}
	if len(body) == 0 {
		return apiErr
	}
	if err := json.Unmarshal(body, apiErr); err != nil {
		apiErr.Err, apiErr.Message, apiErr.Reason, apiErr.Suggestion = "", "", "", ""
		if text := strings.TrimSpace(string(body)); text != "" && len(text) < 200 && !strings.HasPrefix(text, "<") {
			apiErr.Message = text
		}
	}
	return apiErr
}

// IsStatus reports whether err is an APIError with the given status
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
