package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/water-supply/internal/application"
	"github.com/example/water-supply/internal/config"
	httptransport "github.com/example/water-supply/internal/http"
	"github.com/example/water-supply/internal/observability/metrics"
	"github.com/example/water-supply/internal/persistence/sqlite"
	"github.com/example/water-supply/internal/recurrence"
	"github.com/example/water-supply/internal/status"
)

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	level.Set(cfg.LogLevel)

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := runMigrations(ctx, storage, logger); err != nil {
		os.Exit(1)
	}

	handler, err := buildHandler(cfg, storage, prometheus.DefaultRegisterer, promhttp.Handler(), logger)
	if err != nil {
		logger.Error("failed to build handler", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("supply API listening", "addr", server.Addr, "timezone", cfg.Location.String())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

type migrator interface {
	Migrate(ctx context.Context) error
}

func runMigrations(ctx context.Context, storage migrator, logger *slog.Logger) error {
	logger.Info("applying database migrations")
	started := time.Now()
	if err := storage.Migrate(ctx); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		return err
	}
	logger.Info("database migrations completed", "execution_time", time.Since(started))
	return nil
}

// buildHandler wires the supply service into the HTTP router. Metrics are
// registered with reg and exposed through metricsHandler.
func buildHandler(cfg config.Config, storage *sqlite.Storage, reg prometheus.Registerer, metricsHandler http.Handler, logger *slog.Logger) (http.Handler, error) {
	policy, err := cfg.LimitPolicy()
	if err != nil {
		return nil, err
	}

	resolver := status.NewResolver(status.WithLimitPolicy(policy))
	engine := recurrence.NewEngine(cfg.Location)
	service := application.NewSupplyService(storage, resolver, engine, application.Options{
		Location: cfg.Location,
		Logger:   logger,
		Metrics:  metrics.New(reg),
	})

	return httptransport.NewRouter(httptransport.RouterConfig{
		Statuses:   httptransport.NewStatusHandler(service, cfg.Location, logger),
		Profiles:   httptransport.NewProfileHandler(service, logger),
		Health:     storage,
		Metrics:    metricsHandler,
		Middleware: []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	}), nil
}
