package authrpc

// Account is the public view of an account.
type Account struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	ProfileImageURL string `json:"profile_image_url"`
	IsVerified      bool   `json:"is_verified"`
}

type RegisterRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	ProfileImageURL  string `json:"profile_image_url"`
	AdminInviteToken string `json:"admin_invite_token"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type EmailRequest struct {
	Email string `json:"email"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type ProfileRequest struct{}

type UpdateProfileRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ProfileImageURL string `json:"profile_image_url"`
}

type PingRequest struct{}

type MessageResponse struct {
	Message string `json:"message"`
}

type SessionResponse struct {
	Message string   `json:"message"`
	User    *Account `json:"user"`
	Token   string   `json:"token"`
}

type ProfileResponse struct {
	User *Account `json:"user"`
}

type PingResponse struct {
	Status string `json:"status"`
}
