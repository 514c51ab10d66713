package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnavailable wraps transport failures: the call did not complete.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized matches every 401 answer (see APIError.Is).
	ErrUnauthorized = errors.New("unauthorized")
	// ErrCredentialStore wraps failures to read the credential slot.
	ErrCredentialStore = errors.New("credential store")
	// ErrMalformedResponse is returned when a 2xx body lacks required fields.
	ErrMalformedResponse = errors.New("malformed response")
)

// APIError is a non-2xx answer from the remote API. Detail is the
// human-readable reason the server put in its "detail" field.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Detail)
}

// Is makes errors.Is(err, ErrUnauthorized) true for 401 answers.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// ErrorDetail returns the server-supplied reason carried by err, or fallback
// when err is not an APIError or the server gave no reason.
func ErrorDetail(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

// parseDetail extracts "detail" from an error body. FastAPI sends either a
// string or, for request validation failures, a list of {"msg": ...} objects.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return ""
}
