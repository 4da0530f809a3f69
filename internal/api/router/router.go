package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/http/handlers"
	httpmiddleware "github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/http/middleware"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger   *logging.Logger
	Honeypot *handlers.HoneypotHandler
	Health   *handlers.HealthHandler

	// APIKey guards the /api routes. Empty disables the check.
	APIKey string

	// Per-IP rate limit for the /api routes. Zero disables limiting.
	RateLimitRPS   float64
	RateLimitBurst int

	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (health checks, service banner)
	r.Group(func(public chi.Router) {
		public.Get("/", cfg.Health.Root)
		public.Get("/health", cfg.Health.Health)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Honeypot API, key-protected and rate-limited
	r.Route("/api", func(api chi.Router) {
		if cfg.RateLimitRPS > 0 {
			api.Use(httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
		}
		api.Use(httpmiddleware.APIKey(cfg.APIKey))

		api.Post("/analyze", cfg.Honeypot.Analyze)
		api.Get("/sessions", cfg.Honeypot.ListSessions)
		api.Route("/session/{sessionID}", func(s chi.Router) {
			s.Get("/", cfg.Honeypot.SessionStatus)
			s.Post("/complete", cfg.Honeypot.CompleteSession)
			s.Get("/report", cfg.Honeypot.SessionReport)
		})
	})

	return r
}
