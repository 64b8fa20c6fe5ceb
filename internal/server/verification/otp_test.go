package verification

import (
	"bytes"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskforge/internal/common"
	"github.com/dmitrijs2005/taskforge/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func pendingAccount(code string, expires time.Time) *models.Account {
	return &models.Account{
		ID:           "acc-1",
		Email:        "a@x.com",
		OTP:          ptr(code),
		OTPExpiresAt: ptr(expires),
	}
}

func TestGenerateCode_SixDigits(t *testing.T) {
	re := regexp.MustCompile(`^[0-9]{6}$`)
	for i := 0; i < 1000; i++ {
		code, err := NewCode()
		require.NoError(t, err)
		require.Regexp(t, re, code)
		require.NotEqual(t, byte('0'), code[0])
	}
}

func TestGenerateCode_EveryDigitReachesEveryPosition(t *testing.T) {
	var seen [6][10]bool
	for i := 0; i < 5000; i++ {
		code, err := NewCode()
		require.NoError(t, err)
		for pos, ch := range code {
			seen[pos][ch-'0'] = true
		}
	}

	for d := 1; d <= 9; d++ {
		assert.Truef(t, seen[0][d], "leading digit %d never produced", d)
	}
	assert.False(t, seen[0][0], "leading zero produced")
	for pos := 1; pos < 6; pos++ {
		for d := 0; d <= 9; d++ {
			assert.Truef(t, seen[pos][d], "digit %d never produced at position %d", d, pos)
		}
	}
}

func TestGenerateCode_LowerBoundAndReaderError(t *testing.T) {
	code, err := GenerateCode(bytes.NewReader(make([]byte, 64)))
	require.NoError(t, err)
	assert.Equal(t, "100000", code)

	_, err = GenerateCode(bytes.NewReader(nil))
	assert.Error(t, err)
}

func TestIssueOTP_SetsCodeAndExpiryTogether(t *testing.T) {
	a := &models.Account{}
	DefaultPolicy().IssueOTP(a, "482913", t0)

	require.NotNil(t, a.OTP)
	require.NotNil(t, a.OTPExpiresAt)
	assert.Equal(t, "482913", *a.OTP)
	assert.Equal(t, t0.Add(5*time.Minute), *a.OTPExpiresAt)
}

func TestStateOf(t *testing.T) {
	p := DefaultPolicy()

	a := &models.Account{}
	assert.Equal(t, StateUnverified, StateOf(a, t0))

	a.OTPBlockedUntil = ptr(t0.Add(time.Minute))
	assert.Equal(t, StateLocked, StateOf(a, t0))
	assert.Equal(t, StateUnverified, StateOf(a, t0.Add(time.Minute)), "lock expires lazily at its deadline")

	a.IsVerified = true
	assert.Equal(t, StateVerified, StateOf(a, t0))
	assert.Equal(t, "verified", StateOf(a, t0).String())
	assert.Equal(t, 5, p.MaxFailedAttempts)
}

func TestVerifyOTP_SuccessClearsEverything(t *testing.T) {
	p := DefaultPolicy()

	for failed := 0; failed < p.MaxFailedAttempts; failed++ {
		a := pendingAccount("482913", t0.Add(5*time.Minute))
		a.OTPFailedCount = failed
		a.OTPResendCount = 3
		a.OTPBlockedUntil = ptr(t0.Add(-time.Minute))

		changed, err := p.VerifyOTP(a, " 482913 ", t0.Add(4*time.Minute))
		require.NoError(t, err)
		assert.True(t, changed)
		assert.True(t, a.IsVerified)
		assert.Nil(t, a.OTP)
		assert.Nil(t, a.OTPExpiresAt)
		assert.Nil(t, a.OTPBlockedUntil)
		assert.Zero(t, a.OTPFailedCount)
		assert.Equal(t, StateVerified, StateOf(a, t0))
	}
}

func TestVerifyOTP_LiteralComparison(t *testing.T) {
	p := DefaultPolicy()
	a := pendingAccount("007123", t0.Add(time.Minute))

	_, err := p.VerifyOTP(a, "7123", t0)
	assert.ErrorIs(t, err, common.ErrInvalidOTP)

	_, err = p.VerifyOTP(a, "007123", t0)
	assert.NoError(t, err)
}

func TestVerifyOTP_FifthFailureLocks(t *testing.T) {
	p := DefaultPolicy()
	a := pendingAccount("482913", t0.Add(5*time.Minute))

	for i := 1; i <= 4; i++ {
		changed, err := p.VerifyOTP(a, "000000", t0)
		require.ErrorIs(t, err, common.ErrInvalidOTP)
		require.True(t, changed)
		require.Equal(t, i, a.OTPFailedCount)
		require.Nil(t, a.OTPBlockedUntil, "no lock before the fifth failure")
	}

	_, err := p.VerifyOTP(a, "000000", t0)
	require.ErrorIs(t, err, common.ErrInvalidOTP)
	require.NotNil(t, a.OTPBlockedUntil)
	assert.Equal(t, t0.Add(5*time.Minute), *a.OTPBlockedUntil)
	assert.Zero(t, a.OTPFailedCount)
}

func TestVerifyOTP_LockPrecedesCorrectCode(t *testing.T) {
	p := DefaultPolicy()
	a := pendingAccount("482913", t0.Add(5*time.Minute))
	for i := 0; i < 5; i++ {
		_, _ = p.VerifyOTP(a, "111111", t0)
	}

	changed, err := p.VerifyOTP(a, "482913", t0.Add(30*time.Second))
	assert.False(t, changed)

	var rl *common.RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, 5, rl.WaitMinutes())
	assert.Equal(t, t0.Add(5*time.Minute), rl.BlockedUntil)
	assert.False(t, a.IsVerified)
}

func TestVerifyOTP_GuardOrder(t *testing.T) {
	p := DefaultPolicy()

	verified := &models.Account{IsVerified: true}
	_, err := p.VerifyOTP(verified, "1", t0)
	assert.ErrorIs(t, err, common.ErrAlreadyVerified)

	noCode := &models.Account{}
	_, err = p.VerifyOTP(noCode, "1", t0)
	assert.ErrorIs(t, err, common.ErrNoActiveOTP)

	lockedNoCode := &models.Account{OTPBlockedUntil: ptr(t0.Add(time.Minute))}
	_, err = p.VerifyOTP(lockedNoCode, "1", t0)
	assert.ErrorIs(t, err, common.ErrRateLimited, "lock is checked before code presence")

	expired := pendingAccount("482913", t0)
	changed, err := p.VerifyOTP(expired, "482913", t0.Add(time.Second))
	assert.ErrorIs(t, err, common.ErrOTPExpired)
	assert.False(t, changed)
	assert.False(t, expired.IsVerified)
}

func TestApproveResend_SixthRequestLocks(t *testing.T) {
	p := DefaultPolicy()
	a := pendingAccount("482913", t0.Add(time.Minute))

	for i := 1; i <= 5; i++ {
		changed, err := p.ApproveResend(a, t0)
		require.NoErrorf(t, err, "resend %d", i)
		require.True(t, changed)
		require.Equal(t, i, a.OTPResendCount)
	}

	changed, err := p.ApproveResend(a, t0)
	assert.True(t, changed)
	var rl *common.RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, t0.Add(5*time.Minute), rl.BlockedUntil)
	assert.Zero(t, a.OTPResendCount)
	require.NotNil(t, a.OTPBlockedUntil)

	changed, err = p.ApproveResend(a, t0.Add(time.Minute))
	assert.False(t, changed)
	assert.ErrorIs(t, err, common.ErrRateLimited)

	changed, err = p.ApproveResend(a, t0.Add(5*time.Minute))
	assert.NoError(t, err, "lock expired lazily")
	assert.True(t, changed)
	assert.Equal(t, 1, a.OTPResendCount)
}

func TestApproveResend_AlreadyVerified(t *testing.T) {
	changed, err := DefaultPolicy().ApproveResend(&models.Account{IsVerified: true}, t0)
	assert.False(t, changed)
	assert.ErrorIs(t, err, common.ErrAlreadyVerified)
}
