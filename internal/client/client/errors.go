package client

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRejected     = errors.New("request rejected")
	ErrNotSignedIn  = errors.New("not signed in")
)

// LockedError reports an account lockout returned by the server.
type LockedError struct {
	Message      string
	BlockedUntil time.Time
	Wait         time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("%s (blocked until %s)", e.Message, e.BlockedUntil.Local().Format(time.Kitchen))
}

func (e *LockedError) Unwrap() error { return ErrRejected }

// UnverifiedError reports a login refused until Email is verified.
type UnverifiedError struct {
	Message string
	Email   string
}

func (e *UnverifiedError) Error() string { return e.Message }

func (e *UnverifiedError) Unwrap() error { return ErrUnauthorized }
