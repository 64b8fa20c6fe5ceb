package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskforge/internal/authrpc"
	"github.com/dmitrijs2005/taskforge/internal/client/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	signedIn bool
	err      error

	registered *authrpc.RegisterRequest
	verified   [2]string
	resentTo   string
	loginEmail string
	loginPass  string
	forgotTo   string
	reset      [2]string
	updated    *authrpc.UpdateProfileRequest
	closed     bool
}

func (f *fakeClient) Close() error               { f.closed = true; return nil }
func (f *fakeClient) Ping(context.Context) error { return f.err }
func (f *fakeClient) SignedIn() bool             { return f.signedIn }
func (f *fakeClient) Logout()                    { f.signedIn = false }

func (f *fakeClient) Register(_ context.Context, in *authrpc.RegisterRequest) (string, error) {
	f.registered = in
	if f.err != nil {
		return "", f.err
	}
	return "User registered! Please verify your email.", nil
}

func (f *fakeClient) VerifyOTP(_ context.Context, email, otp string) (*authrpc.Account, error) {
	f.verified = [2]string{email, otp}
	if f.err != nil {
		return nil, f.err
	}
	f.signedIn = true
	return &authrpc.Account{Email: email, IsVerified: true}, nil
}

func (f *fakeClient) ResendOTP(_ context.Context, email string) (string, error) {
	f.resentTo = email
	if f.err != nil {
		return "", f.err
	}
	return "OTP resent successfully!", nil
}

func (f *fakeClient) ResendVerification(_ context.Context, email string) (string, error) {
	f.resentTo = email
	if f.err != nil {
		return "", f.err
	}
	return "Verification email sent successfully!", nil
}

func (f *fakeClient) Login(_ context.Context, email, password string) (*authrpc.Account, error) {
	f.loginEmail, f.loginPass = email, password
	if f.err != nil {
		return nil, f.err
	}
	f.signedIn = true
	return &authrpc.Account{Name: "Ann", Email: email}, nil
}

func (f *fakeClient) ForgotPassword(_ context.Context, email string) (string, error) {
	f.forgotTo = email
	return "Password reset link sent to your email.", f.err
}

func (f *fakeClient) ResetPassword(_ context.Context, token, pw string) (string, error) {
	f.reset = [2]string{token, pw}
	return "Password updated successfully!", f.err
}

func (f *fakeClient) Profile(context.Context) (*authrpc.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &authrpc.Account{ID: "u-1", Name: "Ann", Email: "a@x.com", Role: "user"}, nil
}

func (f *fakeClient) UpdateProfile(_ context.Context, in *authrpc.UpdateProfileRequest) (*authrpc.Account, error) {
	f.updated = in
	if f.err != nil {
		return nil, f.err
	}
	return &authrpc.Account{Name: in.Name, Email: in.Email}, nil
}

// stubInputs feeds answers to successive text prompts and a fixed password.
func stubInputs(t *testing.T, password string, answers ...string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, prompt string, _ io.Writer) (string, error) {
		if len(answers) == 0 {
			return "", fmt.Errorf("unexpected prompt %q", prompt)
		}
		a := answers[0]
		answers = answers[1:]
		return a, nil
	}
	getPassword = func(string, io.Writer) ([]byte, error) { return []byte(password), nil }
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

func newTestApp(f *fakeClient) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	return &App{client: f, out: &out}, &out
}

func TestRegister_Success(t *testing.T) {
	f := &fakeClient{}
	a, out := newTestApp(f)
	stubInputs(t, "secret", "Ann", "ann@example.org", "", "invite")

	require.NoError(t, a.Register(context.Background()))
	assert.Equal(t, &authrpc.RegisterRequest{
		Name:             "Ann",
		Email:            "ann@example.org",
		Password:         "secret",
		AdminInviteToken: "invite",
	}, f.registered)
	assert.Contains(t, out.String(), "User registered! Please verify your email.")
	assert.Equal(t, "ann@example.org", a.email)
}

func TestVerify_UsesRememberedEmail(t *testing.T) {
	f := &fakeClient{}
	a, out := newTestApp(f)
	a.email = "ann@example.org"
	stubInputs(t, "", "", "482913")

	require.NoError(t, a.Verify(context.Background()))
	assert.Equal(t, [2]string{"ann@example.org", "482913"}, f.verified)
	assert.True(t, a.isLoggedIn())
	assert.Contains(t, out.String(), "Email verified successfully!")
	assert.Equal(t, "(ann@example.org)", a.getStatus())
}

func TestVerify_LockedReportsUnblockTime(t *testing.T) {
	until := time.Now().Add(4 * time.Minute)
	f := &fakeClient{err: &client.LockedError{Message: "too many attempts, please wait 4:00 before trying again", BlockedUntil: until, Wait: 4 * time.Minute}}
	a, out := newTestApp(f)
	stubInputs(t, "", "ann@example.org", "000000")

	err := a.Verify(context.Background())
	require.ErrorIs(t, err, client.ErrRejected)
	assert.Contains(t, out.String(), "too many attempts")
	assert.Contains(t, out.String(), until.Local().Format("15:04:05"))
}

func TestResend(t *testing.T) {
	f := &fakeClient{}
	a, out := newTestApp(f)
	stubInputs(t, "", "ann@example.org", "")

	require.NoError(t, a.ResendOTP(context.Background()))
	require.NoError(t, a.ResendVerification(context.Background()))
	assert.Equal(t, "ann@example.org", f.resentTo)
	assert.Contains(t, out.String(), "OTP resent successfully!")
	assert.Contains(t, out.String(), "Verification email sent successfully!")
}

func TestLogin(t *testing.T) {
	f := &fakeClient{}
	a, out := newTestApp(f)
	stubInputs(t, "pw", "ann@example.org")

	require.NoError(t, a.Login(context.Background()))
	assert.Equal(t, "pw", f.loginPass)
	assert.Contains(t, out.String(), "Welcome back, Ann!")

	require.NoError(t, a.Logout(context.Background()))
	assert.False(t, a.isLoggedIn())
}

func TestLogin_UnverifiedHint(t *testing.T) {
	f := &fakeClient{err: &client.UnverifiedError{Message: "account is unverified", Email: "a@x.com"}}
	a, out := newTestApp(f)
	stubInputs(t, "pw", "a@x.com")

	require.Error(t, a.Login(context.Background()))
	assert.Contains(t, out.String(), "resend-verification")
	assert.Equal(t, "a@x.com", a.email)
	assert.False(t, a.isLoggedIn())
}

func TestLogin_UnauthorizedMentioningUnverifiedIsPlainError(t *testing.T) {
	f := &fakeClient{err: fmt.Errorf("%w: unverified looking text", client.ErrUnauthorized)}
	a, out := newTestApp(f)
	stubInputs(t, "pw", "a@x.com")

	require.Error(t, a.Login(context.Background()))
	assert.NotContains(t, out.String(), "resend-verification")
	assert.Contains(t, out.String(), "Error:")
}

func TestLogin_Unavailable(t *testing.T) {
	f := &fakeClient{err: client.ErrUnavailable}
	a, out := newTestApp(f)
	stubInputs(t, "pw", "a@x.com")

	require.ErrorIs(t, a.Login(context.Background()), client.ErrUnavailable)
	assert.Contains(t, out.String(), "Server unavailable")
}

func TestForgotAndReset(t *testing.T) {
	f := &fakeClient{}
	a, out := newTestApp(f)
	stubInputs(t, "newpass", "a@x.com", "reset-token")

	require.NoError(t, a.ForgotPassword(context.Background()))
	require.NoError(t, a.ResetPassword(context.Background()))
	assert.Equal(t, "a@x.com", f.forgotTo)
	assert.Equal(t, [2]string{"reset-token", "newpass"}, f.reset)
	assert.Contains(t, out.String(), "Password updated successfully!")
}

func TestProfile(t *testing.T) {
	f := &fakeClient{signedIn: true}
	a, out := newTestApp(f)

	require.NoError(t, a.Profile(context.Background()))
	assert.Contains(t, out.String(), "a@x.com")
	assert.Contains(t, out.String(), "role:     user")
}

func TestUpdateProfile(t *testing.T) {
	f := &fakeClient{signedIn: true}
	a, out := newTestApp(f)
	stubInputs(t, "", "Bea", "bea@x.com", "")

	require.NoError(t, a.UpdateProfile(context.Background()))
	assert.Equal(t, &authrpc.UpdateProfileRequest{Name: "Bea", Email: "bea@x.com"}, f.updated)
	assert.Equal(t, "bea@x.com", a.email)
	assert.Contains(t, out.String(), "Profile updated.")
}

func TestUpdateProfile_RequiresLogin(t *testing.T) {
	f := &fakeClient{}
	a, out := newTestApp(f)

	require.NoError(t, a.UpdateProfile(context.Background()))
	assert.Nil(t, f.updated)
	assert.Contains(t, out.String(), "Please log in first.")
}
