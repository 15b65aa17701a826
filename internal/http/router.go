package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robertarktes/hotel-paradise/internal/auth"
	"github.com/robertarktes/hotel-paradise/internal/idempotency"
	"github.com/robertarktes/hotel-paradise/internal/observability"
	"github.com/robertarktes/hotel-paradise/internal/rateLimit"
)

type RouterConfig struct {
	Logger             observability.Logger
	Auth               *auth.Authenticator
	RateLimiter        *rateLimit.RateLimiter // nil disables rate limiting
	RateLimitPerMinute int
	Idempotency        *idempotency.Idempotency
}

func SetupRouter(h *Handlers, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(TracingMiddleware)
	r.Use(MetricsMiddleware)

	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(RateLimitMiddleware(cfg.RateLimiter, cfg.RateLimitPerMinute))
		}

		r.Get("/rooms", h.ListRooms)
		r.Get("/rooms/featured", h.FeaturedRooms)
		r.Get("/rooms/{id}", h.GetRoom)
		r.Get("/rooms/{id}/quote", h.Quote)
		r.Get("/availability", h.Availability)
		r.With(IdempotencyMiddleware(cfg.Idempotency)).Post("/bookings", h.CreateBooking)
		r.Get("/bookings/{id}", h.GetBooking)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.Login)

			r.Group(func(r chi.Router) {
				r.Use(AdminAuth(cfg.Auth))
				r.Post("/bookings/{id}/cancel", h.CancelBooking)
				r.Post("/bookings/{id}/check-in", h.CheckIn)
				r.Get("/bookings", h.AdminBookings)
				r.Get("/stats", h.Stats)
				r.Get("/rooms/status", h.RoomStatus)
				r.Get("/activities", h.Activities)
			})
		})
	})

	return r
}
