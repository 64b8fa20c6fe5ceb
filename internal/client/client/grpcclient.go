package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskforge/internal/authrpc"
	"github.com/dmitrijs2005/taskforge/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type authService interface {
	Register(ctx context.Context, in *authrpc.RegisterRequest, opts ...grpc.CallOption) (*authrpc.MessageResponse, error)
	VerifyOTP(ctx context.Context, in *authrpc.VerifyOTPRequest, opts ...grpc.CallOption) (*authrpc.SessionResponse, error)
	ResendOTP(ctx context.Context, in *authrpc.EmailRequest, opts ...grpc.CallOption) (*authrpc.MessageResponse, error)
	ResendVerification(ctx context.Context, in *authrpc.EmailRequest, opts ...grpc.CallOption) (*authrpc.MessageResponse, error)
	Login(ctx context.Context, in *authrpc.LoginRequest, opts ...grpc.CallOption) (*authrpc.SessionResponse, error)
	ForgotPassword(ctx context.Context, in *authrpc.EmailRequest, opts ...grpc.CallOption) (*authrpc.MessageResponse, error)
	ResetPassword(ctx context.Context, in *authrpc.ResetPasswordRequest, opts ...grpc.CallOption) (*authrpc.MessageResponse, error)
	GetProfile(ctx context.Context, in *authrpc.ProfileRequest, opts ...grpc.CallOption) (*authrpc.ProfileResponse, error)
	UpdateProfile(ctx context.Context, in *authrpc.UpdateProfileRequest, opts ...grpc.CallOption) (*authrpc.SessionResponse, error)
	Ping(ctx context.Context, in *authrpc.PingRequest, opts ...grpc.CallOption) (*authrpc.PingResponse, error)
}

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      authService

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) setToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewTaskForgeClient dials endpointURL lazily; no connection is made until
// the first call.
func NewTaskForgeClient(endpointURL string, timeout time.Duration) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, timeout: timeout}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = authrpc.NewAuthServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.Ping(ctx, &authrpc.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Register(ctx context.Context, in *authrpc.RegisterRequest) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.Register(ctx, in)
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.Message, nil
}

// VerifyOTP confirms the account and keeps the returned session.
func (s *GRPCClient) VerifyOTP(ctx context.Context, email, otp string) (*authrpc.Account, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.VerifyOTP(ctx, &authrpc.VerifyOTPRequest{Email: email, OTP: otp})
	if err != nil {
		return nil, s.mapError(err)
	}
	s.setToken(resp.Token)
	return resp.User, nil
}

func (s *GRPCClient) ResendOTP(ctx context.Context, email string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.ResendOTP(ctx, &authrpc.EmailRequest{Email: email})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.Message, nil
}

func (s *GRPCClient) ResendVerification(ctx context.Context, email string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.ResendVerification(ctx, &authrpc.EmailRequest{Email: email})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.Message, nil
}

func (s *GRPCClient) Login(ctx context.Context, email, password string) (*authrpc.Account, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.Login(ctx, &authrpc.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}
	s.setToken(resp.Token)
	return resp.User, nil
}

func (s *GRPCClient) ForgotPassword(ctx context.Context, email string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.ForgotPassword(ctx, &authrpc.EmailRequest{Email: email})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.Message, nil
}

func (s *GRPCClient) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.ResetPassword(ctx, &authrpc.ResetPasswordRequest{Token: token, NewPassword: newPassword})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.Message, nil
}

func (s *GRPCClient) Profile(ctx context.Context) (*authrpc.Account, error) {
	if !s.SignedIn() {
		return nil, ErrNotSignedIn
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.GetProfile(ctx, &authrpc.ProfileRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.User, nil
}

// UpdateProfile replaces the held session with the freshly issued one.
func (s *GRPCClient) UpdateProfile(ctx context.Context, in *authrpc.UpdateProfileRequest) (*authrpc.Account, error) {
	if !s.SignedIn() {
		return nil, ErrNotSignedIn
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.UpdateProfile(ctx, in)
	if err != nil {
		return nil, s.mapError(err)
	}
	if resp.Token != "" {
		s.setToken(resp.Token)
	}
	return resp.User, nil
}

func (s *GRPCClient) Logout() { s.setToken("") }

func (s *GRPCClient) SignedIn() bool { return s.token() != "" }

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.ResourceExhausted:
		if until, wait, ok := authrpc.Lockout(err); ok {
			return &LockedError{Message: st.Message(), BlockedUntil: until, Wait: wait}
		}
		return fmt.Errorf("%w: %s", ErrRejected, st.Message())
	case codes.Unauthenticated, codes.PermissionDenied:
		if email, ok := authrpc.Unverified(err); ok {
			return &UnverifiedError{Message: st.Message(), Email: email}
		}
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.InvalidArgument, codes.FailedPrecondition, codes.NotFound, codes.AlreadyExists:
		return fmt.Errorf("%w: %s", ErrRejected, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
