package authrpc

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestJSONCodec_RoundTrip(t *testing.T) {
	c := jsonCodec{}
	assert.Equal(t, "json", c.Name())

	b, err := c.Marshal(&SessionResponse{Message: "ok", User: &Account{ID: "u-1", IsVerified: true}, Token: "tok"})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"is_verified":true`)

	var out SessionResponse
	require.NoError(t, c.Unmarshal(b, &out))
	assert.Equal(t, "u-1", out.User.ID)
	assert.Equal(t, "tok", out.Token)
}

func TestServiceDesc_CoversEveryMethod(t *testing.T) {
	names := map[string]bool{}
	for _, m := range ServiceDesc.Methods {
		names[m.MethodName] = true
	}
	for _, m := range []string{
		MethodRegister, MethodVerifyOTP, MethodResendOTP, MethodResendVerification, MethodLogin,
		MethodForgotPassword, MethodResetPassword, MethodGetProfile, MethodUpdateProfile, MethodPing,
	} {
		assert.True(t, names[m], "missing %s", m)
	}
	assert.Equal(t, "/taskforge.auth.AuthService/Login", FullMethod(MethodLogin))
}

func TestLockout_RoundTrip(t *testing.T) {
	until := time.Date(2025, 3, 1, 12, 5, 0, 0, time.UTC)
	err := LockoutStatus("locked", until, 4*time.Minute).Err()

	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
	gotUntil, wait, ok := Lockout(err)
	require.True(t, ok)
	assert.Equal(t, until, gotUntil)
	assert.Equal(t, 4*time.Minute, wait)
}

func TestLockout_NotALockout(t *testing.T) {
	_, _, ok := Lockout(status.Error(codes.NotFound, "nope"))
	assert.False(t, ok)
	_, _, ok = Lockout(errors.New("plain"))
	assert.False(t, ok)
}

func TestUnverified_RoundTrip(t *testing.T) {
	err := UnverifiedStatus("account is unverified, please verify your email: a@x.com", "a@x.com").Err()

	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	email, ok := Unverified(err)
	require.True(t, ok)
	assert.Equal(t, "a@x.com", email)
}

func TestUnverified_MessageAloneDoesNotMatch(t *testing.T) {
	_, ok := Unverified(status.Error(codes.Unauthenticated, "account is unverified"))
	assert.False(t, ok)
	_, ok = Unverified(LockoutStatus("locked", time.Now(), time.Minute).Err())
	assert.False(t, ok)
}
