package httpapi

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskforge/internal/logging"
	"github.com/dmitrijs2005/taskforge/internal/server/ratelimit"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey int

const accountIDKey ctxKey = iota

func accountIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(accountIDKey).(string)
	return id
}

// bearerAuth requires a valid session token in the Authorization header.
func bearerAuth(authenticate func(token string) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(r.Header.Get("Authorization"))
			const prefix = "bearer "
			if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
				writeMessage(w, http.StatusUnauthorized, "Not authorized, no token")
				return
			}

			id, err := authenticate(strings.TrimSpace(header[len(prefix):]))
			if err != nil {
				writeMessage(w, http.StatusUnauthorized, "Not authorized, token failed")
				return
			}

			ctx := context.WithValue(r.Context(), accountIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// rateLimit rejects clients over budget with 429. Limiter backend errors
// let the request through.
func rateLimit(l ratelimit.Limiter, logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d, err := l.Allow(r.Context(), clientIP(r))
			if err != nil {
				logger.Warn(r.Context(), "rate limiter unavailable, allowing request", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !d.Allowed {
				w.Header().Set("Retry-After", retryAfterHeader(d.RetryAfter))
				writeMessage(w, http.StatusTooManyRequests, "Too many requests, please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger logs one line per request and scopes the request id onto
// the context so downstream log lines carry it.
func requestLogger(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			r = r.WithContext(logging.ContextWith(r.Context(), "request_id", middleware.GetReqID(r.Context())))
			next.ServeHTTP(ww, r)

			logger.Info(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		})
	}
}

// ParseCIDRs parses trusted proxy networks. A bare IP is taken as a single
// host; invalid entries are reported.
func ParseCIDRs(cidrs []string) ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		v := strings.TrimSpace(cidr)
		if v == "" {
			continue
		}
		if !strings.Contains(v, "/") {
			ip := net.ParseIP(v)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", v)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, network, err := net.ParseCIDR(v)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", v, err)
		}
		nets = append(nets, network)
	}
	return nets, nil
}

func trusted(nets []*net.IPNet, ip net.IP) bool {
	if ip == nil {
		return false
	}
	for _, n := range nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// realIP replaces RemoteAddr with the forwarded client address, but only
// when the socket peer is a trusted proxy. X-Forwarded-For is walked from
// the right and the first hop outside the trusted set wins.
func realIP(proxies []*net.IPNet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(proxies) == 0 || !trusted(proxies, net.ParseIP(clientIP(r))) {
				next.ServeHTTP(w, r)
				return
			}
			if ip := forwardedFor(r, proxies); ip != "" {
				r.RemoteAddr = ip
			}
			next.ServeHTTP(w, r)
		})
	}
}

func forwardedFor(r *http.Request, proxies []*net.IPNet) string {
	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			ip := net.ParseIP(strings.TrimSpace(hops[i]))
			if ip == nil {
				return ""
			}
			if !trusted(proxies, ip) {
				return ip.String()
			}
		}
		return ""
	}
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}
	return ""
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
