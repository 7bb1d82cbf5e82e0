package server

import (
	"context"
	"net/http"
	"time"

	"budgetbuddy/internal/advisor"
	"budgetbuddy/internal/auth"
	"budgetbuddy/internal/config"
	"budgetbuddy/internal/http/handlers"
	"budgetbuddy/internal/ledger"
	"budgetbuddy/internal/mail"
	"budgetbuddy/internal/middleware"
	"budgetbuddy/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires services, handlers, and middleware, and returns a ready server.
// The advisory generator may be nil; the engine then always answers with
// its deterministic rules.
func New(cfg config.Config, store storage.Store, mailer mail.Mailer, gen advisor.Generator) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           Handler(cfg, store, mailer, gen),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Handler builds the full route tree. Split out from New so tests can serve
// it through httptest.
func Handler(cfg config.Config, store storage.Store, mailer mail.Mailer, gen advisor.Generator) http.Handler {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost, cfg.HashWorkers)
	authSvc := auth.NewService(store, tokens, hasher, mailer, cfg.ResetBaseURL)
	ledgerSvc := ledger.NewService(store)
	engine := advisor.New(gen, cfg.AdvisorTimeout)

	protect := func(h http.HandlerFunc) http.Handler {
		return middleware.BearerAuth(tokens, h)
	}

	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now()).Register(mux)
	handlers.NewAuthHandler(authSvc).Register(mux)
	handlers.NewLedgerHandler(ledgerSvc).Register(mux, protect)
	handlers.NewRecommendationHandler(engine).Register(mux, protect)

	return middleware.CORS(cfg.CORSOrigins, middleware.Logging(mux))
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
