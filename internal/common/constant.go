package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the session
// token on outbound requests.
const AccessTokenHeaderName = "access_token"

// ResendVerificationAction is returned to clients that try to log in with an
// unverified account so they can route to the resend flow.
const ResendVerificationAction = "resend_verification"
