package places

import (
	"errors"
	"fmt"
)

// Predefined backend errors.
var (
	// ErrNotFound is returned when the backend reports no match for the
	// requested place.
	ErrNotFound = errors.New("place not found")

	// ErrRejected is returned when the backend answered 2xx but flagged
	// the operation as unsuccessful.
	ErrRejected = errors.New("request rejected by backend")
)

// APIError is a non-2xx response from the backend, kept with its body for
// the server-error-with-body diagnostic class.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.StatusCode, e.Body)
}
