package client

import (
	"context"

	"github.com/dmitrijs2005/taskforge/internal/authrpc"
)

// Client is the account API as seen by the CLI.
type Client interface {
	Close() error
	Ping(ctx context.Context) error
	Register(ctx context.Context, in *authrpc.RegisterRequest) (string, error)
	VerifyOTP(ctx context.Context, email, otp string) (*authrpc.Account, error)
	ResendOTP(ctx context.Context, email string) (string, error)
	ResendVerification(ctx context.Context, email string) (string, error)
	Login(ctx context.Context, email, password string) (*authrpc.Account, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) (string, error)
	Profile(ctx context.Context) (*authrpc.Account, error)
	UpdateProfile(ctx context.Context, in *authrpc.UpdateProfileRequest) (*authrpc.Account, error)
	Logout()
	SignedIn() bool
}
