package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/walletledger/internal/adapter/http/handler"
	"github.com/iho/walletledger/internal/adapter/http/middleware"
	"github.com/iho/walletledger/internal/infrastructure/auth"
	"github.com/iho/walletledger/internal/infrastructure/metrics"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	LedgerHandler  *handler.LedgerHandler
	AccountHandler *handler.AccountHandler
	AdminHandler   *handler.AdminHandler
	HealthHandler  *handler.HealthHandler

	Logger zerolog.Logger
	// JWTManager enables bearer authentication. Nil trusts gateway headers.
	JWTManager  *auth.JWTManager
	RateLimiter *middleware.RateLimiter
	Metrics     *metrics.Metrics
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.JWTManager))
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}
		r.Use(middleware.IdempotencyKey)

		// Money movements
		r.Post("/deposit", cfg.LedgerHandler.Deposit)
		r.Post("/transfer", cfg.LedgerHandler.Transfer)
		r.Post("/withdraw", cfg.LedgerHandler.Withdraw)

		// Accounts
		r.Route("/accounts/{id}", func(r chi.Router) {
			r.Get("/balance", cfg.AccountHandler.Balance)
			r.Get("/transactions", cfg.AccountHandler.History)
		})

		// Administration
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Post("/accounts", cfg.AdminHandler.OpenAccount)
			r.Get("/stats", cfg.AdminHandler.Stats)
			r.Get("/transactions", cfg.AdminHandler.ListTransactions)
		})
	})

	return r
}
