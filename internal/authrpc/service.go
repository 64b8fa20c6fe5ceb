package authrpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "taskforge.auth.AuthService"

const (
	MethodRegister           = "Register"
	MethodVerifyOTP          = "VerifyOTP"
	MethodResendOTP          = "ResendOTP"
	MethodResendVerification = "ResendVerification"
	MethodLogin              = "Login"
	MethodForgotPassword     = "ForgotPassword"
	MethodResetPassword      = "ResetPassword"
	MethodGetProfile         = "GetProfile"
	MethodUpdateProfile      = "UpdateProfile"
	MethodPing               = "Ping"
)

// FullMethod returns the /service/method path of method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// AuthServiceServer is implemented by the server.
type AuthServiceServer interface {
	Register(context.Context, *RegisterRequest) (*MessageResponse, error)
	VerifyOTP(context.Context, *VerifyOTPRequest) (*SessionResponse, error)
	ResendOTP(context.Context, *EmailRequest) (*MessageResponse, error)
	ResendVerification(context.Context, *EmailRequest) (*MessageResponse, error)
	Login(context.Context, *LoginRequest) (*SessionResponse, error)
	ForgotPassword(context.Context, *EmailRequest) (*MessageResponse, error)
	ResetPassword(context.Context, *ResetPasswordRequest) (*MessageResponse, error)
	GetProfile(context.Context, *ProfileRequest) (*ProfileResponse, error)
	UpdateProfile(context.Context, *UpdateProfileRequest) (*SessionResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
}

func unary[Req, Resp any](method string, call func(AuthServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AuthServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(AuthServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes AuthService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodRegister, AuthServiceServer.Register),
		unary(MethodVerifyOTP, AuthServiceServer.VerifyOTP),
		unary(MethodResendOTP, AuthServiceServer.ResendOTP),
		unary(MethodResendVerification, AuthServiceServer.ResendVerification),
		unary(MethodLogin, AuthServiceServer.Login),
		unary(MethodForgotPassword, AuthServiceServer.ForgotPassword),
		unary(MethodResetPassword, AuthServiceServer.ResetPassword),
		unary(MethodGetProfile, AuthServiceServer.GetProfile),
		unary(MethodUpdateProfile, AuthServiceServer.UpdateProfile),
		unary(MethodPing, AuthServiceServer.Ping),
	},
	Metadata: "taskforge/auth.proto",
}

func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}
