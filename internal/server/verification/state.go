// Package verification holds the account verification state machine: OTP
// issuance, OTP checking with attempt limiting, and resend throttling.
//
// Every transition is a pure function over *models.Account and the current
// time. Persistence, delivery and token issuance belong to the caller.
// Expiry of codes and lockouts is evaluated lazily against now; nothing
// needs to sweep stale records.
package verification

import (
	"time"

	"github.com/dmitrijs2005/taskforge/internal/server/models"
)

// State is the verification state of an account at a given instant.
type State int

const (
	StateUnverified State = iota
	StateLocked
	StateVerified
)

func (s State) String() string {
	switch s {
	case StateUnverified:
		return "unverified"
	case StateLocked:
		return "locked"
	case StateVerified:
		return "verified"
	default:
		return "unknown"
	}
}

// StateOf derives the state of a. A lockout whose deadline is not after now
// no longer counts.
func StateOf(a *models.Account, now time.Time) State {
	if a.IsVerified {
		return StateVerified
	}
	if a.OTPBlockedUntil != nil && now.Before(*a.OTPBlockedUntil) {
		return StateLocked
	}
	return StateUnverified
}

// Policy holds the limits applied by the transitions.
type Policy struct {
	OTPTTL            time.Duration
	LockoutDuration   time.Duration
	MaxFailedAttempts int
	MaxResends        int
}

// DefaultPolicy: codes live 5 minutes, the fifth wrong code or the sixth
// resend locks the account for 5 minutes.
func DefaultPolicy() Policy {
	return Policy{
		OTPTTL:            5 * time.Minute,
		LockoutDuration:   5 * time.Minute,
		MaxFailedAttempts: 5,
		MaxResends:        5,
	}
}

func (p Policy) lock(a *models.Account, now time.Time) time.Time {
	until := now.Add(p.LockoutDuration)
	a.OTPBlockedUntil = &until
	return until
}
