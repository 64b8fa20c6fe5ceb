// Package grpc serves the account operations over gRPC using the contract
// in package authrpc.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/taskforge/internal/authrpc"
	"github.com/dmitrijs2005/taskforge/internal/logging"
	"github.com/dmitrijs2005/taskforge/internal/server/models"
	"github.com/dmitrijs2005/taskforge/internal/server/services"
	"google.golang.org/grpc"
)

// Accounts is the service surface used by the gRPC handlers.
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

type GRPCServer struct {
	address string
	svc     Accounts
	logger  logging.Logger
}

func NewGRPCServer(address string, l logging.Logger, svc Accounts) *GRPCServer {
	return &GRPCServer{
		address: address,
		logger:  l.With("module", "grpc_server"),
		svc:     svc,
	}
}

// NewServer returns a grpc.Server with the interceptors and AuthService
// registered, not yet serving.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	authrpc.RegisterAuthServiceServer(srv, s)
	return srv
}

// Run serves until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}
