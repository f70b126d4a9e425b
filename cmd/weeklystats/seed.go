package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"babyai/apps/stats/internal/seed"
)

type seedFlags struct {
	babyID string
	date   string
	days   int
	tag    string
}

func newSeedCmd(globals *globalFlags) *cobra.Command {
	flags := seedFlags{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert a patterned week of feeding, sleep and diaper rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, globals, flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.babyID, "baby-id", "", "Target baby id (default: latest created baby)")
	f.StringVar(&flags.date, "date", "", "Last seeded day in YYYY-MM-DD (default: today)")
	f.IntVar(&flags.days, "days", 7, "Number of days to seed")
	f.StringVar(&flags.tag, "tag", seed.DefaultTag, "Seed tag stored in note, used for replace and cleanup")
	return cmd
}

func newCleanupCmd(globals *globalFlags) *cobra.Command {
	flags := seedFlags{}
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete rows previously written by seed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCleanup(cmd, globals, flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.babyID, "baby-id", "", "Target baby id (default: latest created baby)")
	f.StringVar(&flags.tag, "tag", seed.DefaultTag, "Seed tag to delete")
	return cmd
}

func runSeed(cmd *cobra.Command, globals *globalFlags, flags seedFlags) error {
	if flags.days < 1 {
		return errors.New("--days must be positive")
	}
	loc, err := globals.location()
	if err != nil {
		return err
	}
	date, err := resolveDate(flags.date, loc)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	pool, err := globals.connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	babyID, err := resolveTargetBaby(ctx, pool, flags.babyID)
	if err != nil {
		return fmt.Errorf("resolve baby: %w", err)
	}

	var result seed.Result
	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		var applyErr error
		result, applyErr = seed.Apply(ctx, tx, seed.Options{
			BabyID:   babyID,
			Tag:      flags.tag,
			Date:     date,
			Days:     flags.days,
			Location: loc,
		})
		return applyErr
	})
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	globals.logger(cmd).Info(
		"seed complete",
		"baby_id", babyID,
		"date", date.Format("2006-01-02"),
		"tz", loc.String(),
		"tag", flags.tag,
		"inserted", result.Inserted,
		"replaced", result.Replaced,
	)
	return nil
}

func runCleanup(cmd *cobra.Command, globals *globalFlags, flags seedFlags) error {
	ctx := commandContext(cmd)
	pool, err := globals.connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	babyID, err := resolveTargetBaby(ctx, pool, flags.babyID)
	if err != nil {
		return fmt.Errorf("resolve baby: %w", err)
	}

	var deleted int64
	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		var cleanupErr error
		deleted, cleanupErr = seed.Cleanup(ctx, tx, babyID, flags.tag)
		return cleanupErr
	})
	if err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}

	globals.logger(cmd).Info("cleanup complete", "baby_id", babyID, "tag", flags.tag, "deleted", deleted)
	return nil
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func resolveTargetBaby(ctx context.Context, db rowQuerier, explicitBabyID string) (string, error) {
	var babyID string
	explicitBabyID = strings.TrimSpace(explicitBabyID)
	if explicitBabyID != "" {
		err := db.QueryRow(ctx, `SELECT id FROM "Baby" WHERE id = $1`, explicitBabyID).Scan(&babyID)
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("baby not found: %s", explicitBabyID)
		}
		return babyID, err
	}

	err := db.QueryRow(ctx, `SELECT id FROM "Baby" ORDER BY "createdAt" DESC LIMIT 1`).Scan(&babyID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", errors.New("no babies found")
	}
	return babyID, err
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
