package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/taskforge/internal/common"
	"github.com/dmitrijs2005/taskforge/internal/server/models"
)

const maxBodyBytes = 1 << 20

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Message      string     `json:"message"`
	Action       string     `json:"action,omitempty"`
	Email        string     `json:"email,omitempty"`
	BlockedUntil *time.Time `json:"blockedUntil,omitempty"`
}

type sessionResponse struct {
	models.AccountSummary
	Token string `json:"token"`
}

type verifyResponse struct {
	Message string                `json:"message"`
	User    models.AccountSummary `json:"user"`
	Token   string                `json:"token"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// operation selects the wording of rate-limit responses.
type operation int

const (
	opDefault operation = iota
	opVerify
	opResend
	opLegacyResend
)

// errorStatus maps a service error to its HTTP status and body.
func errorStatus(err error, op operation) (int, errorResponse) {
	var (
		ve *common.ValidationError
		rl *common.RateLimitError
		ue *common.UnverifiedAccountError
	)

	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, errorResponse{Message: ve.Msg}
	case errors.As(err, &rl):
		return http.StatusTooManyRequests, rateLimitBody(rl, op)
	case errors.As(err, &ue):
		return http.StatusUnauthorized, errorResponse{
			Message: "Your account is unverified. Please verify your email.",
			Action:  common.ResendVerificationAction,
			Email:   ue.Email,
		}
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, errorResponse{Message: "Invalid request"}
	case errors.Is(err, common.ErrAlreadyExists):
		return http.StatusBadRequest, errorResponse{Message: "User already exists"}
	case errors.Is(err, common.ErrAlreadyVerified):
		return http.StatusBadRequest, errorResponse{Message: "User already verified"}
	case errors.Is(err, common.ErrNoActiveOTP):
		return http.StatusBadRequest, errorResponse{Message: "OTP not found or expired"}
	case errors.Is(err, common.ErrOTPExpired):
		return http.StatusBadRequest, errorResponse{Message: "OTP expired. Please request a new one."}
	case errors.Is(err, common.ErrInvalidOTP):
		return http.StatusBadRequest, errorResponse{Message: "Invalid OTP"}
	case errors.Is(err, common.ErrInvalidOrExpiredToken):
		return http.StatusBadRequest, errorResponse{Message: "Invalid or expired token"}
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Message: "Invalid email or password"}
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, errorResponse{Message: "Not authorized"}
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, errorResponse{Message: "User not found"}
	case errors.Is(err, common.ErrRateLimited):
		return http.StatusTooManyRequests, errorResponse{Message: "Too many requests"}
	case errors.Is(err, common.ErrDeliveryFailed):
		return http.StatusBadGateway, errorResponse{Message: "Email could not be sent. Please try again later."}
	default:
		return http.StatusInternalServerError, errorResponse{Message: "Server error"}
	}
}

func rateLimitBody(rl *common.RateLimitError, op operation) errorResponse {
	switch op {
	case opVerify:
		return errorResponse{Message: fmt.Sprintf("Too many failed attempts. Please wait %d minute(s) before trying again.", rl.WaitMinutes())}
	case opResend:
		return errorResponse{Message: fmt.Sprintf("You have reached maximum resend attempts. Please wait %d minute(s) before trying again.", rl.WaitMinutes())}
	case opLegacyResend:
		until := rl.BlockedUntil.UTC()
		return errorResponse{
			Message:      fmt.Sprintf("Too many attempts. Please wait %s minutes before trying again.", rl.WaitClock()),
			BlockedUntil: &until,
		}
	default:
		return errorResponse{Message: fmt.Sprintf("Too many requests. Please wait %d minute(s) before trying again.", rl.WaitMinutes())}
	}
}

func retryAfterHeader(d time.Duration) string {
	seconds := int(math.Ceil(d.Seconds()))
	if seconds <= 0 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
