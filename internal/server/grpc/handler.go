package grpc

import (
	"context"

	"github.com/dmitrijs2005/taskforge/internal/authrpc"
	"github.com/dmitrijs2005/taskforge/internal/server/models"
	"github.com/dmitrijs2005/taskforge/internal/server/services"
)

func toAccount(a *models.Account) *authrpc.Account {
	return &authrpc.Account{
		ID:              a.ID,
		Name:            a.Name,
		Email:           a.Email,
		Role:            string(a.Role),
		ProfileImageURL: a.ProfileImageURL,
		IsVerified:      a.IsVerified,
	}
}

func (s *GRPCServer) Register(ctx context.Context, req *authrpc.RegisterRequest) (*authrpc.MessageResponse, error) {
	acc, err := s.svc.Register(ctx, services.RegisterInput{
		Name:             req.Name,
		Email:            req.Email,
		Password:         req.Password,
		ProfileImageURL:  req.ProfileImageURL,
		AdminInviteToken: req.AdminInviteToken,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "account_id", acc.ID)
	return &authrpc.MessageResponse{Message: "User registered! Please verify your email."}, nil
}

func (s *GRPCServer) VerifyOTP(ctx context.Context, req *authrpc.VerifyOTPRequest) (*authrpc.SessionResponse, error) {
	sess, err := s.svc.VerifyOTP(ctx, req.Email, req.OTP)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &authrpc.SessionResponse{Message: "Email verified successfully!", User: toAccount(sess.Account), Token: sess.Token}, nil
}

func (s *GRPCServer) ResendOTP(ctx context.Context, req *authrpc.EmailRequest) (*authrpc.MessageResponse, error) {
	if err := s.svc.ResendOTP(ctx, req.Email); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &authrpc.MessageResponse{Message: "OTP resent successfully!"}, nil
}

func (s *GRPCServer) ResendVerification(ctx context.Context, req *authrpc.EmailRequest) (*authrpc.MessageResponse, error) {
	if err := s.svc.ResendVerification(ctx, req.Email); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &authrpc.MessageResponse{Message: "Verification email sent successfully!"}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *authrpc.LoginRequest) (*authrpc.SessionResponse, error) {
	sess, err := s.svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &authrpc.SessionResponse{User: toAccount(sess.Account), Token: sess.Token}, nil
}

func (s *GRPCServer) ForgotPassword(ctx context.Context, req *authrpc.EmailRequest) (*authrpc.MessageResponse, error) {
	if err := s.svc.ForgotPassword(ctx, req.Email); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &authrpc.MessageResponse{Message: "Password reset link sent to your email."}, nil
}

func (s *GRPCServer) ResetPassword(ctx context.Context, req *authrpc.ResetPasswordRequest) (*authrpc.MessageResponse, error) {
	if err := s.svc.ResetPassword(ctx, req.Token, req.NewPassword); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &authrpc.MessageResponse{Message: "Password updated successfully!"}, nil
}

func (s *GRPCServer) GetProfile(ctx context.Context, _ *authrpc.ProfileRequest) (*authrpc.ProfileResponse, error) {
	acc, err := s.svc.GetProfile(ctx, accountIDFrom(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &authrpc.ProfileResponse{User: toAccount(acc)}, nil
}

func (s *GRPCServer) UpdateProfile(ctx context.Context, req *authrpc.UpdateProfileRequest) (*authrpc.SessionResponse, error) {
	sess, err := s.svc.UpdateProfile(ctx, accountIDFrom(ctx), services.ProfileUpdate{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ProfileImageURL: req.ProfileImageURL,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &authrpc.SessionResponse{Message: "Profile updated", User: toAccount(sess.Account), Token: sess.Token}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *authrpc.PingRequest) (*authrpc.PingResponse, error) {
	return &authrpc.PingResponse{Status: "OK"}, nil
}
