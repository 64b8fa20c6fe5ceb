package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/taskforge/internal/flagx"
	"github.com/dmitrijs2005/taskforge/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration. Durations use
// timex.Duration so both "5m" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	SessionTokenValidityDuration timex.Duration `json:"session_token_validity_duration"`
	ResetTokenValidityDuration   timex.Duration `json:"reset_token_validity_duration"`
	OTPValidityDuration          timex.Duration `json:"otp_validity_duration"`
	LockoutDuration              timex.Duration `json:"lockout_duration"`
	MaxFailedAttempts            int            `json:"max_failed_attempts"`
	MaxResends                   int            `json:"max_resends"`
	FrontendURL                  string         `json:"frontend_url"`
	AdminInviteToken             string         `json:"admin_invite_token"`
	SMTPHost                     string         `json:"smtp_host"`
	SMTPPort                     int            `json:"smtp_port"`
	SMTPUser                     string         `json:"smtp_user"`
	SMTPPassword                 string         `json:"smtp_password"`
	FromName                     string         `json:"from_name"`
	FromEmail                    string         `json:"from_email"`
	RedisAddr                    string         `json:"redis_addr"`
	AuthRateLimitPerMin          int            `json:"auth_rate_limit_per_min"`
	TrustedProxyCIDRs            []string       `json:"trusted_proxy_cidrs"`
}

// parseJson overlays values from the file named by -c / -config onto config.
// Only keys present with a non-zero value override what is already set.
// A missing file or invalid JSON panics, mirroring flag parsing.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	overlay(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	overlay(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.SecretKey, c.SecretKey)
	overlay(&config.SessionTokenValidityDuration, c.SessionTokenValidityDuration.Duration)
	overlay(&config.ResetTokenValidityDuration, c.ResetTokenValidityDuration.Duration)
	overlay(&config.OTPValidityDuration, c.OTPValidityDuration.Duration)
	overlay(&config.LockoutDuration, c.LockoutDuration.Duration)
	overlay(&config.MaxFailedAttempts, c.MaxFailedAttempts)
	overlay(&config.MaxResends, c.MaxResends)
	overlay(&config.FrontendURL, c.FrontendURL)
	overlay(&config.AdminInviteToken, c.AdminInviteToken)
	overlay(&config.SMTPHost, c.SMTPHost)
	overlay(&config.SMTPPort, c.SMTPPort)
	overlay(&config.SMTPUser, c.SMTPUser)
	overlay(&config.SMTPPassword, c.SMTPPassword)
	overlay(&config.FromName, c.FromName)
	overlay(&config.FromEmail, c.FromEmail)
	overlay(&config.RedisAddr, c.RedisAddr)
	overlay(&config.AuthRateLimitPerMin, c.AuthRateLimitPerMin)
	if len(c.TrustedProxyCIDRs) > 0 {
		config.TrustedProxyCIDRs = c.TrustedProxyCIDRs
	}
}

func overlay[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
