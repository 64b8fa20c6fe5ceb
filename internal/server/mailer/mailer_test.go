package mailer

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskforge/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposer_Registration(t *testing.T) {
	c := NewComposer("TaskForge", "http://localhost:5173/")

	msg, err := c.Compose(KindRegistration, "a@x.com", Data{
		Name: "Ann",
		Code: "482913",
		Link: c.VerifyLink("a@x.com"),
		TTL:  5 * time.Minute,
	})
	require.NoError(t, err)

	assert.Equal(t, "a@x.com", msg.To)
	assert.Equal(t, "Confirm Your Email to Get Started", msg.Subject)
	assert.Contains(t, msg.HTML, "482913")
	assert.Contains(t, msg.HTML, "http://localhost:5173/verify?email=a%40x.com")
	assert.Contains(t, msg.HTML, "valid for the next 5 minutes")
	assert.Contains(t, msg.HTML, "TaskForge Team")
	assert.Contains(t, msg.HTML, "Welcome aboard")
}

func TestComposer_Kinds(t *testing.T) {
	c := NewComposer("TaskForge", "http://app")

	tests := []struct {
		kind    Kind
		subject string
		want    []string
		absent  []string
	}{
		{KindResendOTP, "Your OTP for Email Verification", []string{"Your New Verification Code", "111111"}, []string{"<a href"}},
		{KindLegacyVerification, "Verify Your Email Account", []string{"<strong>111111</strong>", "Verify Email", "Best regards"}, nil},
		{KindPasswordReset, "Password Reset Request", []string{"Reset Password", "valid for 5 minutes"}, []string{"111111"}},
	}

	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			msg, err := c.Compose(tt.kind, "b@x.com", Data{Name: "Bob", Code: "111111", Link: "http://app/x", TTL: 5 * time.Minute})
			require.NoError(t, err)
			assert.Equal(t, tt.subject, msg.Subject)
			for _, w := range tt.want {
				assert.Contains(t, msg.HTML, w)
			}
			for _, a := range tt.absent {
				assert.NotContains(t, msg.HTML, a)
			}
		})
	}
}

func TestComposer_EscapesName(t *testing.T) {
	c := NewComposer("TaskForge", "http://app")
	msg, err := c.Compose(KindResendOTP, "a@x.com", Data{Name: "<script>alert(1)</script>", Code: "123456", TTL: time.Minute})
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "valid for the next 1 minute.")
}

func TestComposer_UnknownKind(t *testing.T) {
	c := NewComposer("TaskForge", "http://app")
	_, err := c.Compose(Kind(42), "a@x.com", Data{})
	require.Error(t, err)
}

func TestComposer_ResetLink(t *testing.T) {
	c := NewComposer("TaskForge", "https://taskforge.example/")
	assert.Equal(t, "https://taskforge.example/reset-password/abc.def.ghi", c.ResetLink("abc.def.ghi"))
}

func TestLogSender_Send(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSender(logging.NewJSONLogger(&buf, slog.LevelDebug))

	err := s.Send(context.Background(), Message{To: "a@x.com", Subject: "Hello", HTML: "<p>hi</p>"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"to":"a@x.com"`)
	assert.Contains(t, out, `"subject":"Hello"`)
	assert.Contains(t, out, `"module":"mailer"`)
}

func TestLogSender_EmptyRecipient(t *testing.T) {
	s := NewLogSender(logging.NewNopLogger())
	err := s.Send(context.Background(), Message{})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "empty recipient"))
}
