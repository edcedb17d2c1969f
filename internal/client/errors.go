package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNotAuthenticated means there is no session; the caller should log in.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrMalformedResponse is returned when a 2xx body cannot be decoded.
	ErrMalformedResponse = errors.New("malformed response")
)

// TransportError wraps failures below HTTP: DNS, connection, timeouts.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// APIError is a non-2xx answer from the service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the service or a missing
// session.
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrNotAuthenticated) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// apiErrorFrom normalizes {error}, {message} and {detail} bodies.
func apiErrorFrom(status int, body []byte) *APIError {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	msg := ""
	if json.Unmarshal(body, &payload) == nil {
		for _, m := range []string{payload.Error, payload.Message, payload.Detail} {
			if strings.TrimSpace(m) != "" {
				msg = m
				break
			}
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Status: status, Message: msg}
}
