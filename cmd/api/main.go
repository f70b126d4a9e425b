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

	"babyai/apps/stats/internal/config"
	"babyai/apps/stats/internal/db"
	"babyai/apps/stats/internal/logging"
	"babyai/apps/stats/internal/server"
	"babyai/apps/stats/internal/stats"
)

func main() {
	cfg := config.Load()
	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", slog.Any("err", err))
		os.Exit(1)
	}
	loc, err := cfg.Location()
	if err != nil {
		logger.Error("invalid config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns)
	if err != nil {
		logger.Error("database connect failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := server.ValidateRuntimeSchema(ctx, pool); err != nil {
		logger.Error("database schema mismatch", slog.Any("err", err))
		os.Exit(1)
	}

	engine := stats.NewEngine(
		stats.WithLocation(loc),
		stats.WithMinFrequency(cfg.StatsMinPatternFrequency),
		stats.WithLogger(logger),
	)
	app := server.New(cfg, pool, engine, logger)
	httpServer := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info(
			"babyai stats api listening",
			slog.String("addr", "http://localhost:"+cfg.AppPort),
			slog.String("timezone", loc.String()),
			slog.Int("min_pattern_frequency", cfg.StatsMinPatternFrequency),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("err", err))
	}
	logger.Info("babyai stats api stopped")
}
