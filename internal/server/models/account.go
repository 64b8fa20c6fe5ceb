package models

import "time"

// Role is the authorization role of an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Account is the persisted user record. OTP fields and abuse counters are
// owned by the verification flow; see package verification.
type Account struct {
	ID              string
	Name            string
	Email           string
	PasswordHash    string
	ProfileImageURL string
	Role            Role
	IsVerified      bool

	OTP             *string
	OTPExpiresAt    *time.Time
	OTPFailedCount  int
	OTPResendCount  int
	OTPBlockedUntil *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AccountSummary is the public projection returned to clients.
type AccountSummary struct {
	ID              string `json:"_id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            Role   `json:"role"`
	ProfileImageURL string `json:"profileImageUrl"`
	IsVerified      bool   `json:"isVerified"`
}

func (a *Account) Summary() AccountSummary {
	return AccountSummary{
		ID:              a.ID,
		Name:            a.Name,
		Email:           a.Email,
		Role:            a.Role,
		ProfileImageURL: a.ProfileImageURL,
		IsVerified:      a.IsVerified,
	}
}
