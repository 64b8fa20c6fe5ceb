package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskforge/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8000")
//	-g string   gRPC bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   token HMAC secret key
//	-t int      session token validity, hours
//	-f string   frontend base URL used in e-mail links
//	-i string   admin invite token
//	-m string   SMTP host
//	-p int      SMTP port
//	-u string   SMTP user
//	-w string   SMTP password
//	-r string   Redis address for rate limiting
//	-l int      auth requests per minute per client
//	-x string   comma-separated trusted proxy CIDRs
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-d", "-s", "-t", "-f", "-i", "-m", "-p", "-u", "-w", "-r", "-l", "-x"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port to run server")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionTokenValidity := fs.Int("t", int(config.SessionTokenValidityDuration.Hours()), "session_token_validity_duration (in hours)")

	fs.StringVar(&config.FrontendURL, "f", config.FrontendURL, "frontend base URL")
	fs.StringVar(&config.AdminInviteToken, "i", config.AdminInviteToken, "admin invite token")
	fs.StringVar(&config.SMTPHost, "m", config.SMTPHost, "SMTP host")
	fs.IntVar(&config.SMTPPort, "p", config.SMTPPort, "SMTP port")
	fs.StringVar(&config.SMTPUser, "u", config.SMTPUser, "SMTP user")
	fs.StringVar(&config.SMTPPassword, "w", config.SMTPPassword, "SMTP password")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "Redis address")
	fs.IntVar(&config.AuthRateLimitPerMin, "l", config.AuthRateLimitPerMin, "auth requests per minute per client")
	trustedProxies := fs.String("x", strings.Join(config.TrustedProxyCIDRs, ","), "comma-separated trusted proxy CIDRs")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTokenValidityDuration = time.Duration(*sessionTokenValidity) * time.Hour
	config.TrustedProxyCIDRs = splitList(*trustedProxies)
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
