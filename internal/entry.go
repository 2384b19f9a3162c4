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
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/starford/mdnote/internal/api"
	"github.com/starford/mdnote/internal/inbox"
	"github.com/starford/mdnote/internal/index"
	"github.com/starford/mdnote/internal/mcpserver"
	"github.com/starford/mdnote/internal/metrics"
	"github.com/starford/mdnote/internal/models"
	"github.com/starford/mdnote/internal/noteservice"
	"github.com/starford/mdnote/internal/sse"
	"github.com/starford/mdnote/internal/storage"
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

func (a *application) logger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// openIndex opens the database and, when configured, rebuilds derived data.
func (a *application) openIndex(ctx context.Context, logger *slog.Logger, obs index.Observer) (*index.DB, error) {
	cfg := a.config
	db, err := index.Open(cfg.Storage.Dir,
		index.WithDriver(cfg.Storage.Driver),
		index.WithLogger(logger),
		index.WithObserver(obs),
	)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}
	if cfg.Index.RebuildOnStart {
		if _, err := index.Sync(ctx, db, logger); err != nil {
			logger.Warn("initial sync failed", slog.String("error", err.Error()))
		}
	}
	return db, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("storage_dir", cfg.Storage.Dir),
		slog.String("driver", cfg.Storage.Driver),
		slog.String("inbox_dir", cfg.Inbox.Dir),
		slog.String("log_level", cfg.App.LogLevel.String()))

	registry := metrics.NewRegistry()
	storeMetrics, err := metrics.NewStoreMetrics(registry)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	httpMetrics, err := metrics.NewHTTPMetrics(registry)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	db, err := app.openIndex(ctx, logger, storeMetrics)
	if err != nil {
		return err
	}
	defer db.Close()

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()
	if err := metrics.RegisterClientGauge(registry, broker.ClientCount); err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	svc := noteservice.NewService(db, noteservice.Options{
		AutoSyncLinks: cfg.Index.AutoSyncLinks,
		SettingsTTL:   cfg.Settings.CacheTTL,
		Events:        broker,
		Logger:        logger,
	})
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := newRouter(db, registry, httpMetrics)
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Inbox.Enabled() {
		fsys, err := storage.NewFS(cfg.Inbox.Dir)
		if err != nil {
			return fmt.Errorf("init inbox: %w", err)
		}
		importer := inbox.NewImporter(db, fsys, logger, func(kind string, note *models.Note) {
			broker.PublishChange(sse.EntityNote, kind, note.ID)
			broker.PublishChange(sse.EntityLinks, sse.Updated, note.ID)
		})
		g.Go(func() error {
			if err := importer.Watch(gCtx, fsys); err != nil {
				logger.Error("inbox watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
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

// errShutdown cancels the group so background workers stop with the server.
var errShutdown = errors.New("shutdown")

// newRouter builds the top-level router: health and metrics endpoints are
// unauthenticated; the API is mounted by the caller.
func newRouter(db *index.DB, registry *prometheus.Registry, httpMetrics *metrics.HTTPMetrics) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(httpMetrics.Middleware)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if _, err := db.SchemaVersion(r.Context()); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ok")
	})
	r.Handle("/metrics", metrics.Handler(registry))
	return r
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = fmt.Fprintf(w, `{"status":%q}`, status)
}

// RunMCP serves the MCP tools over stdio until stdin closes.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	logger := app.logger()

	db, err := app.openIndex(ctx, logger, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := noteservice.NewService(db, noteservice.Options{
		AutoSyncLinks: app.config.Index.AutoSyncLinks,
		Logger:        logger,
	})
	logger.Info("Starting MCP server on stdio")
	return mcpserver.New(svc, app.version).ServeStdio()
}

// RunExport writes every note to outDir as Markdown.
func RunExport(ctx context.Context, outDir string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.logger()

	db, err := app.openIndex(ctx, logger, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	out, err := storage.NewFS(outDir)
	if err != nil {
		return fmt.Errorf("init export dir: %w", err)
	}
	n, err := inbox.Export(ctx, db, out)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	logger.Info("Export finished", slog.Int("notes", n), slog.String("dir", outDir))
	return nil
}
