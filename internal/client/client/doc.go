// Package client is the CLI side of the account server contract.
//
// GRPCClient wraps authrpc.AuthServiceClient: it keeps the session token in
// memory once a login or verification succeeds, attaches it to every call as
// access_token metadata, bounds each call with a timeout, and converts gRPC
// statuses into the sentinel errors below so the CLI can match them with
// errors.Is. Lockouts come back as *LockedError carrying the unblock instant,
// and logins refused for an unconfirmed email as *UnverifiedError.
package client
