package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized is wrapped by APIError for 401 responses so callers can
// take the forced-logout path with errors.Is.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is any non-2xx response from the tutor service. Detail carries
// the human-readable message from the response body when one was present.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("api: status %d", e.Status)
}

func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}
