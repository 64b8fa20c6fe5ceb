// Package common defines shared constants and sentinel errors used across
// the TaskForge server, transports and CLI client. Callers should use
// errors.Is / errors.As to match these values.
package common

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal       = errors.New("internal error")
	ErrorUnauthorized   = errors.New("unauthorized")
	ErrValidation       = errors.New("validation error")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrDeliveryFailed   = errors.New("email delivery failed")

	// Verification flow.
	ErrAlreadyVerified = errors.New("user already verified")
	ErrRateLimited     = errors.New("rate limited")
	ErrNoActiveOTP     = errors.New("otp not found or expired")
	ErrOTPExpired      = errors.New("otp expired")
	ErrInvalidOTP      = errors.New("invalid otp")

	// Credentials and tokens.
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrUnverifiedAccount     = errors.New("account is unverified")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
)

// RateLimitError reports a temporary lockout. BlockedUntil is the raw unblock
// timestamp; Wait is the remaining duration at the moment of the check.
type RateLimitError struct {
	BlockedUntil time.Time
	Wait         time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry in %d minute(s)", e.WaitMinutes())
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// WaitMinutes returns the remaining wait rounded up to whole minutes.
func (e *RateLimitError) WaitMinutes() int {
	if e.Wait <= 0 {
		return 0
	}
	return int(math.Ceil(e.Wait.Minutes()))
}

// WaitClock renders the remaining wait as m:ss.
func (e *RateLimitError) WaitClock() string {
	if e.Wait <= 0 {
		return "0:00"
	}
	total := int(e.Wait / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// NewRateLimitError builds a RateLimitError relative to now.
func NewRateLimitError(blockedUntil, now time.Time) *RateLimitError {
	return &RateLimitError{BlockedUntil: blockedUntil, Wait: blockedUntil.Sub(now)}
}

// UnverifiedAccountError is returned by login for an existing account that
// has not completed e-mail verification.
type UnverifiedAccountError struct {
	Email string
}

func (e *UnverifiedAccountError) Error() string {
	return ErrUnverifiedAccount.Error() + ": " + e.Email
}

func (e *UnverifiedAccountError) Unwrap() error { return ErrUnverifiedAccount }

// ValidationError is a request validation failure with a client-facing message.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid returns a *ValidationError carrying msg.
func Invalid(msg string) error {
	return &ValidationError{Msg: msg}
}
