package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"cleanops/internal/domain/audit"
	"cleanops/internal/domain/auth"
	"cleanops/internal/domain/reports"
	"cleanops/internal/domain/roster"
	"cleanops/internal/platform/config"
	"cleanops/internal/platform/db"
	"cleanops/internal/platform/jobs"
	"cleanops/internal/platform/metrics"
	"cleanops/internal/transport/http/api"
	audithandler "cleanops/internal/transport/http/handlers/audit"
	authhandler "cleanops/internal/transport/http/handlers/auth"
	reportshandler "cleanops/internal/transport/http/handlers/reports"
	rosterhandler "cleanops/internal/transport/http/handlers/roster"
	"cleanops/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Metrics *metrics.Collector
}

// New connects to the database, applies migrations and seed data when
// enabled, and assembles the HTTP router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	collector := metrics.New()
	return &App{
		Config:  cfg,
		DB:      pool,
		Router:  newRouter(cfg, pool, collector),
		Metrics: collector,
	}, nil
}

func newRouter(cfg config.Config, pool *pgxpool.Pool, collector *metrics.Collector) http.Handler {
	auditService := audit.New(pool)
	authService := auth.NewService(auth.NewStore(pool), cfg.JWTSecret, cfg.TokenTTL)
	rosterService := roster.NewService(roster.NewStore(pool))
	reportsService := reports.NewService(reports.NewStore(pool))
	runs := jobs.New(pool)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

		r.Group(func(r chi.Router) {
			r.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
			authhandler.NewHandler(authService, auditService, cfg.AllowSelfSignup).RegisterRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.BodyLimit(cfg.MaxUploadBytes))
			rosterhandler.NewHandler(
				rosterService,
				runs,
				middleware.NewIdempotencyStore(pool),
				auditService,
				collector,
				cfg.MaxUploadBytes,
			).RegisterRoutes(r)
			reportshandler.NewHandler(reportsService).RegisterRoutes(r)
			audithandler.NewHandler(auditService).RegisterRoutes(r)
		})
	})

	return router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("cleanops server listening", "addr", a.Config.Addr, "env", a.Config.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	slog.Info("shutting down server")
	return srv.Shutdown(shutdownCtx)
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
