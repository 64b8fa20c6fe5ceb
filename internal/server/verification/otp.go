package verification

import (
	"crypto/rand"
	"io"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskforge/internal/common"
	"github.com/dmitrijs2005/taskforge/internal/cryptox"
	"github.com/dmitrijs2005/taskforge/internal/server/models"
)

const (
	codeMin = 100000
	codeMax = 999999
)

var codeSpan = big.NewInt(codeMax - codeMin + 1)

// GenerateCode draws a uniformly random six-digit code from r. The range
// starts at 100000, so the code never has a leading zero.
func GenerateCode(r io.Reader) (string, error) {
	n, err := rand.Int(r, codeSpan)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}

// NewCode is GenerateCode backed by crypto/rand.
func NewCode() (string, error) {
	return GenerateCode(rand.Reader)
}

// IssueOTP stores code on a with a fresh expiry. OTP and OTPExpiresAt are
// always written together.
func (p Policy) IssueOTP(a *models.Account, code string, now time.Time) {
	expires := now.Add(p.OTPTTL)
	a.OTP = &code
	a.OTPExpiresAt = &expires
}

// VerifyOTP checks submitted against the active code of a.
//
// The lockout check runs before the code is looked at, so a locked account
// is rejected even when the code is right. On a mismatch the failure counter
// is bumped; reaching MaxFailedAttempts locks the account and consumes the
// counter. On a match the account becomes verified and every OTP and abuse
// field is cleared.
//
// changed reports whether a was modified and must be persisted, which is the
// case for both success and common.ErrInvalidOTP.
func (p Policy) VerifyOTP(a *models.Account, submitted string, now time.Time) (changed bool, err error) {
	switch StateOf(a, now) {
	case StateVerified:
		return false, common.ErrAlreadyVerified
	case StateLocked:
		return false, common.NewRateLimitError(*a.OTPBlockedUntil, now)
	}

	if a.OTP == nil || a.OTPExpiresAt == nil {
		return false, common.ErrNoActiveOTP
	}
	if now.After(*a.OTPExpiresAt) {
		return false, common.ErrOTPExpired
	}

	if !cryptox.EqualStrings(strings.TrimSpace(*a.OTP), strings.TrimSpace(submitted)) {
		a.OTPFailedCount++
		if a.OTPFailedCount >= p.MaxFailedAttempts {
			p.lock(a, now)
			a.OTPFailedCount = 0
		}
		return true, common.ErrInvalidOTP
	}

	a.IsVerified = true
	a.OTP = nil
	a.OTPExpiresAt = nil
	a.OTPFailedCount = 0
	a.OTPBlockedUntil = nil
	return true, nil
}

// ApproveResend counts one resend request against a.
//
// A nil error means the caller may mint and deliver a new code. Exceeding
// MaxResends locks the account, resets the resend counter and returns a
// *common.RateLimitError with changed=true so the lock gets persisted.
func (p Policy) ApproveResend(a *models.Account, now time.Time) (changed bool, err error) {
	switch StateOf(a, now) {
	case StateVerified:
		return false, common.ErrAlreadyVerified
	case StateLocked:
		return false, common.NewRateLimitError(*a.OTPBlockedUntil, now)
	}

	a.OTPResendCount++
	if a.OTPResendCount > p.MaxResends {
		until := p.lock(a, now)
		a.OTPResendCount = 0
		return true, common.NewRateLimitError(until, now)
	}
	return true, nil
}
