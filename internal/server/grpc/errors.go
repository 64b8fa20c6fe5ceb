package grpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskforge/internal/authrpc"
	"github.com/dmitrijs2005/taskforge/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus converts a service error into a gRPC status error.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	var (
		ve *common.ValidationError
		rl *common.RateLimitError
		ue *common.UnverifiedAccountError
	)

	switch {
	case errors.As(err, &ve):
		return status.Error(codes.InvalidArgument, ve.Msg)
	case errors.As(err, &rl):
		msg := fmt.Sprintf("too many attempts, please wait %s before trying again", rl.WaitClock())
		return authrpc.LockoutStatus(msg, rl.BlockedUntil, rl.Wait).Err()
	case errors.As(err, &ue):
		return authrpc.UnverifiedStatus("account is unverified, please verify your email: "+ue.Email, ue.Email).Err()
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, "invalid request")
	case errors.Is(err, common.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, "user already exists")
	case errors.Is(err, common.ErrAlreadyVerified),
		errors.Is(err, common.ErrNoActiveOTP),
		errors.Is(err, common.ErrOTPExpired):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, common.ErrInvalidOTP):
		return status.Error(codes.InvalidArgument, "invalid otp")
	case errors.Is(err, common.ErrInvalidOrExpiredToken):
		return status.Error(codes.InvalidArgument, "invalid or expired token")
	case errors.Is(err, common.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, "invalid email or password")
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "user not found")
	case errors.Is(err, common.ErrDeliveryFailed), errors.Is(err, common.ErrStoreUnavailable):
		s.logger.Error(ctx, "dependency failure", "error", err)
		return status.Error(codes.Unavailable, "service temporarily unavailable")
	default:
		s.logger.Error(ctx, "internal error", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}
