// Package internal provides the main application initialization and runtime logic.
package internal

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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/changedesk/internal/api"
	"github.com/starford/changedesk/internal/changeservice"
	"github.com/starford/changedesk/internal/mcpserver"
	"github.com/starford/changedesk/internal/metrics"
	"github.com/starford/changedesk/internal/narrative"
	"github.com/starford/changedesk/internal/registry"
	"github.com/starford/changedesk/internal/reports"
	"github.com/starford/changedesk/internal/sse"
	"github.com/starford/changedesk/internal/store"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// logger builds the structured JSON logger and installs it as the default.
func (a *application) logger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// Runtime is an opened service together with the resources backing it.
type Runtime struct {
	Service *changeservice.Service
	DB      *store.DB
	Metrics *metrics.Metrics
}

// Close releases the database.
func (rt *Runtime) Close() error {
	return rt.DB.Close()
}

// Open wires the store, report archive, narrative drafter and vendor
// registry into a Service. publisher may be nil.
func Open(ctx context.Context, cfg *Config, logger *slog.Logger, publisher changeservice.Publisher) (*Runtime, error) {
	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	m := metrics.New()
	opts := []changeservice.Option{
		changeservice.WithLogger(logger),
		changeservice.WithMetrics(m),
		changeservice.WithScoringModel(cfg.Scoring.Model()),
		changeservice.WithPolicy(cfg.Portfolio.Policy),
		changeservice.WithCohortWeights(cfg.Portfolio.CohortExecutionWeights),
		changeservice.WithDrafter(newDrafter(cfg.LLM, logger)),
	}
	if publisher != nil {
		opts = append(opts, changeservice.WithPublisher(publisher))
	}
	if cfg.Reports.Path != "" {
		archive, err := reports.NewArchive(cfg.Reports.Path)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("init report archive: %w", err)
		}
		opts = append(opts, changeservice.WithArchive(archive))
	}
	svc := changeservice.New(db, opts...)

	if err := loadVendors(ctx, svc, cfg.Registry, logger); err != nil {
		db.Close()
		return nil, err
	}
	return &Runtime{Service: svc, DB: db, Metrics: m}, nil
}

// newDrafter returns a drafter backed by the configured provider, or a
// fail-soft drafter when no API key is set.
func newDrafter(cfg LLMConfig, logger *slog.Logger) *narrative.Drafter {
	if cfg.APIKey == "" {
		logger.Warn("llm api key not set, narrative drafts will fail soft")
		return narrative.NewDrafter(nil, cfg.SystemPrompt, logger)
	}
	retry := narrative.DefaultRetryConfig()
	retry.MaxAttempts = cfg.MaxAttempts
	client := narrative.NewOpenAIClient(cfg.BaseURL, cfg.Model, cfg.APIKey,
		narrative.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		narrative.WithRetryConfig(retry),
		narrative.WithLogger(logger),
	)
	return narrative.NewDrafter(client, cfg.SystemPrompt, logger)
}

// loadVendors makes the vendors file authoritative when configured and
// otherwise seeds an empty registry with the built-in vendors.
func loadVendors(ctx context.Context, svc *changeservice.Service, cfg RegistryConfig, logger *slog.Logger) error {
	if cfg.VendorsFile == "" {
		seeded, err := svc.SeedVendors(ctx, registry.Defaults())
		if err != nil {
			return fmt.Errorf("seed vendors: %w", err)
		}
		if seeded {
			logger.Info("vendor registry seeded with defaults")
		}
		return nil
	}
	vendors, err := registry.LoadFile(cfg.VendorsFile)
	if err != nil {
		return fmt.Errorf("load vendors: %w", err)
	}
	if err := svc.ReloadVendors(ctx, vendors); err != nil {
		return fmt.Errorf("load vendors: %w", err)
	}
	return nil
}

// Run starts the HTTP application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("reports_path", cfg.Reports.Path),
		slog.String("vendors_file", cfg.Registry.VendorsFile),
		slog.String("log_level", cfg.App.LogLevel.String()))

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	rt, err := Open(ctx, cfg, logger, broker)
	if err != nil {
		return err
	}
	defer rt.Close()

	apiRouter := api.NewRouter(rt.Service, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := rt.DB.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", rt.Metrics.Handler())

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Registry.VendorsFile != "" && cfg.Registry.Watch {
		g.Go(func() error {
			err := registry.Watch(gCtx, cfg.Registry.VendorsFile, logger, rt.Service.ReloadVendors)
			if err != nil {
				logger.Error("registry watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools over stdio until stdin closes.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	logger := app.logger()

	rt, err := Open(ctx, app.config, logger, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	logger.Info("Starting MCP server on stdio", slog.String("version", app.version))
	return mcpserver.New(rt.Service, app.version).ServeStdio()
}
