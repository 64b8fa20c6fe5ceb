package authrpc

import (
	"time"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"
)

const (
	errorDomain      = "taskforge.auth"
	reasonLocked     = "ACCOUNT_LOCKED"
	reasonUnverified = "ACCOUNT_UNVERIFIED"
	metaBlockedUntil = "blocked_until"
	metaEmail        = "email"
)

// LockoutStatus builds a ResourceExhausted status carrying the remaining
// wait as RetryInfo and the unblock instant as ErrorInfo metadata.
func LockoutStatus(msg string, blockedUntil time.Time, wait time.Duration) *status.Status {
	st := status.New(codes.ResourceExhausted, msg)
	detailed, err := st.WithDetails(
		&errdetails.RetryInfo{RetryDelay: durationpb.New(wait)},
		&errdetails.ErrorInfo{
			Reason:   reasonLocked,
			Domain:   errorDomain,
			Metadata: map[string]string{metaBlockedUntil: blockedUntil.UTC().Format(time.RFC3339)},
		},
	)
	if err != nil {
		return st
	}
	return detailed
}

// Lockout extracts the details attached by LockoutStatus.
func Lockout(err error) (blockedUntil time.Time, wait time.Duration, ok bool) {
	st, isStatus := status.FromError(err)
	if !isStatus || st.Code() != codes.ResourceExhausted {
		return time.Time{}, 0, false
	}
	for _, d := range st.Details() {
		switch v := d.(type) {
		case *errdetails.RetryInfo:
			wait = v.GetRetryDelay().AsDuration()
			ok = true
		case *errdetails.ErrorInfo:
			if v.GetReason() != reasonLocked {
				continue
			}
			if t, perr := time.Parse(time.RFC3339, v.GetMetadata()[metaBlockedUntil]); perr == nil {
				blockedUntil = t
				ok = true
			}
		}
	}
	return blockedUntil, wait, ok
}

// UnverifiedStatus builds an Unauthenticated status whose ErrorInfo names
// the account that still has to confirm its email.
func UnverifiedStatus(msg, email string) *status.Status {
	st := status.New(codes.Unauthenticated, msg)
	detailed, err := st.WithDetails(&errdetails.ErrorInfo{
		Reason:   reasonUnverified,
		Domain:   errorDomain,
		Metadata: map[string]string{metaEmail: email},
	})
	if err != nil {
		return st
	}
	return detailed
}

// Unverified reports whether err was built by UnverifiedStatus.
func Unverified(err error) (email string, ok bool) {
	st, isStatus := status.FromError(err)
	if !isStatus || st.Code() != codes.Unauthenticated {
		return "", false
	}
	for _, d := range st.Details() {
		if v, isInfo := d.(*errdetails.ErrorInfo); isInfo && v.GetReason() == reasonUnverified && v.GetDomain() == errorDomain {
			return v.GetMetadata()[metaEmail], true
		}
	}
	return "", false
}
