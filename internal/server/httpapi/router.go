package httpapi

import (
	"net"
	"net/http"

	"github.com/dmitrijs2005/taskforge/internal/logging"
	"github.com/dmitrijs2005/taskforge/internal/server/ratelimit"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the HTTP surface. A nil limiter disables throttling.
// Forwarded client addresses are honoured only from trustedProxies.
func NewRouter(svc Accounts, limiter ratelimit.Limiter, trustedProxies []*net.IPNet, logger logging.Logger) http.Handler {
	logger = logger.With("module", "http")
	h := NewHandler(svc, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(realIP(trustedProxies))
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)

	r.Route("/api/auth", func(r chi.Router) {
		if limiter != nil {
			r.Use(rateLimit(limiter, logger))
		}

		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/verify-otp", h.VerifyOTP)
		r.Post("/resend-otp", h.ResendOTP)
		r.Post("/resend-verification-old-users", h.ResendVerification)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Post("/reset-password/{token}", h.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(bearerAuth(svc.Authenticate))
			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.UpdateProfile)
		})
	})

	return r
}
