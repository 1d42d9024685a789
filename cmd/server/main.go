// FSLSM tutor - learning-style tutoring experiment server
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/fslsm-tutor/internal/agent"
	"github.com/ashureev/fslsm-tutor/internal/api"
	"github.com/ashureev/fslsm-tutor/internal/config"
	"github.com/ashureev/fslsm-tutor/internal/experiment"
	"github.com/ashureev/fslsm-tutor/internal/identity"
	"github.com/ashureev/fslsm-tutor/internal/middleware"
	"github.com/ashureev/fslsm-tutor/internal/observability/metrics"
	"github.com/ashureev/fslsm-tutor/internal/store"
	"github.com/ashureev/fslsm-tutor/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("Starting server",
		"port", cfg.Port,
		"dev", cfg.IsDevelopment(),
		"session_store", cfg.Session.Store,
		"session_lifetime", cfg.Session.Lifetime,
		"model", cfg.LLM.Model,
		"mock_llm", cfg.LLM.UseMock,
	)

	// Initialize dependencies.
	sessionStore, err := openSessionStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize session store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := sessionStore.Close(); closeErr != nil {
			slog.Error("Failed to close session store", "error", closeErr)
		}
	}()

	if err := sessionStore.Ping(context.Background()); err != nil {
		slog.Error("Session store health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Session store connected", "backend", cfg.Session.Store)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	var experimentMetrics *metrics.ExperimentMetrics
	if cfg.MetricsEnabled {
		experimentMetrics = metrics.NewExperimentMetrics(registry)
	}

	signer, err := identity.NewSigner(cfg.Session.Secret)
	if err != nil {
		slog.Error("Failed to initialize session signer", "error", err)
		os.Exit(1)
	}
	sessions := identity.NewManager(sessionStore, signer, cfg.Session.Lifetime, cfg.IsDevelopment())

	completer, err := newCompleter(cfg, logger, experimentMetrics)
	if err != nil {
		slog.Error("Failed to initialize AI gateway", "error", err)
		os.Exit(1)
	}

	pages, err := web.NewRenderer()
	if err != nil {
		slog.Error("Failed to parse page templates", "error", err)
		os.Exit(1)
	}

	// Initialize handlers.
	machine := experiment.NewMachine(logger, experimentMetrics)
	pageHandler := api.NewHandler(sessions, machine, experiment.NewAssigner(), pages, experimentMetrics)
	healthHandler := api.NewHealthHandler(sessionStore)
	chatHandler := agent.NewHandler(agent.NewService(completer, logger, experimentMetrics), sessions)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(cfg.CORSOrigins))

	// Public routes.
	healthHandler.RegisterHealth(r)
	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
	r.Handle("/static/*", web.StaticHandler())

	// Session-aware routes.
	r.Group(func(r chi.Router) {
		r.Use(sessions.Middleware)
		pageHandler.RegisterRoutes(r)
		chatHandler.RegisterRoutes(r)
	})

	// Create server.
	// Completion calls can be slow, so there is no WriteTimeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

func openSessionStore(cfg *config.Config) (store.SessionStore, error) {
	switch cfg.Session.Store {
	case config.StoreSQLite:
		s, err := store.NewSQLite(cfg.Session.DBPath)
		if err != nil {
			return nil, err
		}
		purged, err := s.PurgeExpired(context.Background())
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("purge expired sessions: %w", err)
		}
		slog.Info("Expired sessions purged", "count", purged)
		return s, nil
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return store.NewRedis(client), nil
	default:
		return store.NewMemory(), nil
	}
}

func newCompleter(cfg *config.Config, logger *slog.Logger, observer agent.CompletionObserver) (agent.Completer, error) {
	gatewayCfg := agent.DefaultConfig()
	gatewayCfg.APIKey = cfg.LLM.APIKey
	gatewayCfg.Temperature = float32(cfg.LLM.Temperature)
	gatewayCfg.MaxTokens = cfg.LLM.MaxTokens
	if cfg.LLM.BaseURL != "" {
		gatewayCfg.BaseURL = cfg.LLM.BaseURL
	}
	if cfg.LLM.Model != "" {
		gatewayCfg.ModelName = cfg.LLM.Model
	}
	if cfg.LLM.UseMock {
		slog.Warn("Using mock completion client, replies are not generated by a model")
		return agent.NewGateway(agent.NewMockClient(), gatewayCfg, logger, observer)
	}
	return agent.NewGateway(agent.NewOpenAIClient(gatewayCfg), gatewayCfg, logger, observer)
}
