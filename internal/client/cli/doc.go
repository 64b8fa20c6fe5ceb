// Package cli provides the interactive TaskForge account client.
//
// It wires configuration and the gRPC client into a line-oriented REPL that
// covers the whole account lifecycle: sign-up, e-mail verification with OTP
// resends, login, password reset and profile management. The session token
// lives only in memory for the lifetime of the process.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
