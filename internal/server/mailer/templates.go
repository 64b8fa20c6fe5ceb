package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"
)

const layout = `{{define "layout"}}<div style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
  <div style="max-width: 600px; margin: auto; background: #ffffff; padding: 30px; border-radius: 10px;">
    <p style="color: #555555; font-size: 16px;">Hi {{.Name}},</p>
    {{template "body" .}}
    <p style="color: #555555; font-size: 16px;">If you didn't request this, you can safely ignore this email.</p>
    <p style="color: #555555; font-size: 16px;">{{.Closing}},<br><strong>{{.Team}} Team</strong></p>
  </div>
</div>{{end}}`

const codeBlock = `{{define "code"}}<p style="text-align: center; font-size: 20px; font-weight: bold; color: #333333; margin: 15px 0;">{{.Code}}</p>
    <p style="color: #999999; font-size: 14px; text-align: center;">This OTP is valid for the next {{.TTL}}.</p>{{end}}`

const buttonBlock = `{{define "button"}}<p style="text-align: center; margin: 30px 0;">
      <a href="{{.Link}}" style="background-color: #4CAF50; color: #ffffff; padding: 12px 25px; border-radius: 5px; text-decoration: none;">{{.ButtonText}}</a>
    </p>{{end}}`

var bodies = map[Kind]string{
	KindRegistration: `{{define "body"}}<p>Thanks for signing up! You're almost ready to get started.</p>
    <p>Click the link below to verify your email:</p>
    {{template "button" .}}
    <p>Please enter this OTP on the verification page to complete your verification:</p>
    {{template "code" .}}{{end}}`,
	KindResendOTP: `{{define "body"}}<h2 style="color: #333333; text-align: center;">Your New Verification Code</h2>
    <p>Please enter this OTP on the verification page to verify your email:</p>
    {{template "code" .}}{{end}}`,
	KindLegacyVerification: `{{define "body"}}<p>We noticed you haven't verified your email yet. Click the button below to verify.</p>
    {{template "button" .}}
    <p>Enter this OTP to verify: <strong>{{.Code}}</strong></p>
    <p style="color: #999999; font-size: 14px; text-align: center;">This OTP is valid for the next {{.TTL}}.</p>{{end}}`,
	KindPasswordReset: `{{define "body"}}<p>We received a request to reset your password. Click the button below to securely set a new password:</p>
    {{template "button" .}}
    <p style="color: #999999; font-size: 14px; text-align: center;">This link is valid for {{.TTL}}.</p>{{end}}`,
}

// Kind selects one of the account e-mail templates.
type Kind int

const (
	KindRegistration Kind = iota
	KindResendOTP
	KindLegacyVerification
	KindPasswordReset
)

var subjects = map[Kind]string{
	KindRegistration:       "Confirm Your Email to Get Started",
	KindResendOTP:          "Your OTP for Email Verification",
	KindLegacyVerification: "Verify Your Email Account",
	KindPasswordReset:      "Password Reset Request",
}

var closings = map[Kind]string{
	KindRegistration:       "Welcome aboard",
	KindResendOTP:          "Welcome aboard",
	KindLegacyVerification: "Best regards",
	KindPasswordReset:      "Best regards",
}

// Data fills a template. Link and Code are used only by the kinds that show them.
type Data struct {
	Name string
	Code string
	Link string
	TTL  time.Duration
}

type view struct {
	Name       string
	Code       string
	Link       string
	TTL        string
	ButtonText string
	Closing    string
	Team       string
}

// Composer renders account e-mails signed with the product team name.
type Composer struct {
	team     string
	frontend string
	tmpl     map[Kind]*template.Template
}

// NewComposer parses every template up front; a parse error is a programming
// error and panics.
func NewComposer(team, frontendURL string) *Composer {
	c := &Composer{
		team:     team,
		frontend: strings.TrimRight(frontendURL, "/"),
		tmpl:     make(map[Kind]*template.Template, len(bodies)),
	}
	for k, body := range bodies {
		t := template.Must(template.New("mail").Parse(layout))
		template.Must(t.Parse(codeBlock))
		template.Must(t.Parse(buttonBlock))
		template.Must(t.Parse(body))
		c.tmpl[k] = t
	}
	return c
}

// VerifyLink is the frontend page where a code for email can be entered.
func (c *Composer) VerifyLink(email string) string {
	return c.frontend + "/verify?email=" + url.QueryEscape(email)
}

// ResetLink is the frontend page that accepts a password reset token.
func (c *Composer) ResetLink(token string) string {
	return c.frontend + "/reset-password/" + url.PathEscape(token)
}

// Compose renders the message of kind k for the recipient to.
func (c *Composer) Compose(k Kind, to string, d Data) (Message, error) {
	t, ok := c.tmpl[k]
	if !ok {
		return Message{}, fmt.Errorf("mailer: unknown template %d", k)
	}

	v := view{
		Name:       d.Name,
		Code:       d.Code,
		Link:       d.Link,
		TTL:        humanMinutes(d.TTL),
		ButtonText: "Verify Email",
		Closing:    closings[k],
		Team:       c.team,
	}
	if k == KindPasswordReset {
		v.ButtonText = "Reset Password"
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		return Message{}, fmt.Errorf("mailer: render: %w", err)
	}
	return Message{To: to, Subject: subjects[k], HTML: buf.String()}, nil
}

func humanMinutes(d time.Duration) string {
	m := int(d.Round(time.Minute) / time.Minute)
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}
