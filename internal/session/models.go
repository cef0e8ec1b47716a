// Package session holds the signed-in identity and mints bearer credentials
// for authenticated backend calls.
package session

import (
	"errors"
	"time"
)

// Predefined session errors.
var (
	// ErrNoSession is returned when a credential is requested with no
	// identity signed in. Callers must treat it as "operation requires
	// login", not as a transient fault.
	ErrNoSession = errors.New("no signed-in session")

	// ErrInvalidCredentials covers both a sign-in mismatch and a sign-up
	// against an already-registered email.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Identity is a signed-in user.
type Identity struct {
	ID          string
	Email       string
	DisplayName string
	CreatedAt   time.Time
}
