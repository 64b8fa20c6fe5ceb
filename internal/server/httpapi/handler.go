// Package httpapi exposes the account operations as a JSON API under
// /api/auth, routed with chi.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/taskforge/internal/common"
	"github.com/dmitrijs2005/taskforge/internal/logging"
	"github.com/dmitrijs2005/taskforge/internal/server/models"
	"github.com/dmitrijs2005/taskforge/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// Accounts is the service surface used by the handlers.
type Accounts interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.Account, error)
	VerifyOTP(ctx context.Context, email, code string) (*services.Session, error)
	ResendOTP(ctx context.Context, email string) error
	ResendVerification(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (*services.Session, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	Authenticate(token string) (string, error)
	GetProfile(ctx context.Context, id string) (*models.Account, error)
	UpdateProfile(ctx context.Context, id string, upd services.ProfileUpdate) (*services.Session, error)
}

type Handler struct {
	svc    Accounts
	logger logging.Logger
}

func NewHandler(svc Accounts, logger logging.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type registerRequest struct {
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	Password         string   `json:"password"`
	ProfileImageURL  imageURL `json:"profileImageUrl"`
	AdminInviteToken string   `json:"adminInviteToken"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type verifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetRequest struct {
	NewPassword string `json:"newPassword"`
}

type profileRequest struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Password        string   `json:"password"`
	ProfileImageURL imageURL `json:"profileImageUrl"`
}

// imageURL accepts either a plain string or an object with a url field.
type imageURL string

func (u *imageURL) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*u = imageURL(s)
		return nil
	}
	var obj struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*u = imageURL(obj.URL)
	return nil
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	_, err := h.svc.Register(r.Context(), services.RegisterInput{
		Name:             req.Name,
		Email:            req.Email,
		Password:         req.Password,
		ProfileImageURL:  string(req.ProfileImageURL),
		AdminInviteToken: req.AdminInviteToken,
	})
	if err != nil {
		h.fail(w, r, err, opDefault)
		return
	}
	writeMessage(w, http.StatusCreated, "User registered! Please verify your email.")
}

func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := h.svc.VerifyOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		h.fail(w, r, err, opVerify)
		return
	}
	writeJSON(w, http.StatusOK, verifyResponse{
		Message: "Email verified successfully!",
		User:    sess.Account.Summary(),
		Token:   sess.Token,
	})
}

func (h *Handler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.ResendOTP(r.Context(), req.Email); err != nil {
		h.fail(w, r, err, opResend)
		return
	}
	writeMessage(w, http.StatusOK, "OTP resent successfully!")
}

func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.ResendVerification(r.Context(), req.Email); err != nil {
		h.fail(w, r, err, opLegacyResend)
		return
	}
	writeMessage(w, http.StatusOK, "Verification email sent successfully!")
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err, opDefault)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{AccountSummary: sess.Account.Summary(), Token: sess.Token})
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.ForgotPassword(r.Context(), req.Email); err != nil {
		h.fail(w, r, err, opDefault)
		return
	}
	writeMessage(w, http.StatusOK, "Password reset link sent to your email.")
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.ResetPassword(r.Context(), chi.URLParam(r, "token"), req.NewPassword); err != nil {
		h.fail(w, r, err, opDefault)
		return
	}
	writeMessage(w, http.StatusOK, "Password updated successfully!")
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	acc, err := h.svc.GetProfile(r.Context(), accountIDFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err, opDefault)
		return
	}
	writeJSON(w, http.StatusOK, acc.Summary())
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := h.svc.UpdateProfile(r.Context(), accountIDFrom(r.Context()), services.ProfileUpdate{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ProfileImageURL: string(req.ProfileImageURL),
	})
	if err != nil {
		h.fail(w, r, err, opDefault)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{AccountSummary: sess.Account.Summary(), Token: sess.Token})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, op operation) {
	status, body := errorStatus(err, op)

	var rl *common.RateLimitError
	if errors.As(err, &rl) {
		w.Header().Set("Retry-After", retryAfterHeader(rl.Wait))
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		h.logger.Debug(r.Context(), "request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, body)
}
