package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"babyai/apps/stats/internal/config"
	"babyai/apps/stats/internal/db"
	"babyai/apps/stats/internal/logging"
)

type globalFlags struct {
	databaseURL string
	timezone    string
	logLevel    string
}

func newRootCmd() *cobra.Command {
	cfg := config.Load()
	globals := &globalFlags{}

	root := &cobra.Command{
		Use:           "weeklystats",
		Short:         "Compute and seed weekly behavioral statistics",
		Long:          "weeklystats computes weekly feeding, sleep and excretion statistics for a baby straight from the projection tables, and seeds patterned rows for local verification.",
		SilenceUsage:  true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&globals.databaseURL, "db", cfg.DatabaseURL, "Postgres connection URL (defaults to DATABASE_URL)")
	pf.StringVar(&globals.timezone, "tz", cfg.StatsTimezone, "IANA timezone for calendar days (defaults to STATS_TIMEZONE)")
	pf.StringVar(&globals.logLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")

	root.AddCommand(
		newComputeCmd(cfg, globals),
		newSeedCmd(globals),
		newCleanupCmd(globals),
	)
	return root
}

func (g *globalFlags) location() (*time.Location, error) {
	name := strings.TrimSpace(g.timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

func (g *globalFlags) logger(cmd *cobra.Command) *slog.Logger {
	return logging.NewWithWriter(cmd.ErrOrStderr(), g.logLevel, "text")
}

func (g *globalFlags) connect(ctx context.Context) (*pgxpool.Pool, error) {
	if strings.TrimSpace(g.databaseURL) == "" {
		return nil, errors.New("--db or DATABASE_URL is required")
	}
	pool, err := db.Connect(ctx, g.databaseURL, 2)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	return pool, nil
}

// resolveDate parses a YYYY-MM-DD day in loc, defaulting to today.
func resolveDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		now := time.Now().In(loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc), nil
	}
	date, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", raw)
	}
	return date, nil
}
