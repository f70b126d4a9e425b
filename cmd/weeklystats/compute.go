package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"babyai/apps/stats/internal/config"
	"babyai/apps/stats/internal/stats"
	"babyai/apps/stats/internal/store"
)

type computeFlags struct {
	babyID       string
	category     string
	date         string
	minFrequency int
}

func newComputeCmd(cfg config.Config, globals *globalFlags) *cobra.Command {
	flags := computeFlags{}
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Print the weekly rollup for one baby and category as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompute(cmd, globals, flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.babyID, "baby-id", "", "Baby id (required)")
	f.StringVar(&flags.category, "category", string(stats.CategoryFeeding), "FEEDING, SLEEP or EXCRETION")
	f.StringVar(&flags.date, "date", "", "Last day of the week in YYYY-MM-DD (default: today)")
	f.IntVar(&flags.minFrequency, "min-frequency", cfg.StatsMinPatternFrequency, "Days a slot must recur in to count as a pattern")
	return cmd
}

func (f computeFlags) validate(engine *stats.Engine) (stats.Category, error) {
	if strings.TrimSpace(f.babyID) == "" {
		return "", errors.New("--baby-id is required")
	}
	if f.minFrequency < 1 || f.minFrequency > 7 {
		return "", errors.New("--min-frequency must be between 1 and 7")
	}
	category, ok := stats.ParseCategory(f.category)
	if !ok || !engine.Supports(category) {
		return "", fmt.Errorf("%w: %s", stats.ErrUnsupportedCategory, f.category)
	}
	return category, nil
}

func runCompute(cmd *cobra.Command, globals *globalFlags, flags computeFlags) error {
	loc, err := globals.location()
	if err != nil {
		return err
	}
	engine := stats.NewEngine(
		stats.WithLocation(loc),
		stats.WithMinFrequency(flags.minFrequency),
		stats.WithLogger(globals.logger(cmd)),
	)
	category, err := flags.validate(engine)
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

	var rollup stats.WeeklyRollup
	err = store.ReadSnapshot(ctx, pool, func(s *store.Store) error {
		var computeErr error
		rollup, computeErr = engine.WeeklyStatistics(ctx, s, category, date, strings.TrimSpace(flags.babyID))
		return computeErr
	})
	if err != nil {
		return err
	}
	return writeRollup(cmd, rollup)
}

func writeRollup(cmd *cobra.Command, rollup stats.WeeklyRollup) error {
	encoded, err := json.MarshalIndent(rollup, "", "  ")
	if err != nil {
		return fmt.Errorf("encode rollup: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	return err
}
