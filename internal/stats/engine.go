// Package stats computes weekly behavioral pattern statistics for a child:
// per-day activity ranges, recurring half-hour pattern blocks, category
// rollups and a week-over-week delta. Everything is derived on request from
// an EventSource; nothing is cached or persisted.
package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

var (
	ErrUnsupportedCategory = errors.New("unsupported category")
	ErrInvalidChild        = errors.New("child id is required")
)

type RollupStrategy interface {
	Category() Category
	Rollup(ctx context.Context, src EventSource, childID string, date time.Time) (WeeklyRollup, error)
}

type strategyConfig struct {
	loc     *time.Location
	minFreq map[Category]int
}

func (c strategyConfig) minFreqFor(category Category) int {
	if value, ok := c.minFreq[category]; ok && value > 0 {
		return value
	}
	return defaultMinFreq
}

type Option func(*Engine)

func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.cfg.loc = loc
		}
	}
}

// WithMinFrequency overrides the pattern threshold; with no categories it applies to all of them.
func WithMinFrequency(minFreq int, categories ...Category) Option {
	return func(e *Engine) {
		if minFreq <= 0 {
			return
		}
		if len(categories) == 0 {
			categories = []Category{CategoryFeeding, CategorySleep, CategoryExcretion}
		}
		for _, category := range categories {
			e.cfg.minFreq[category] = minFreq
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

type Engine struct {
	cfg        strategyConfig
	logger     *slog.Logger
	strategies map[Category]RollupStrategy
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		cfg: strategyConfig{
			loc:     time.UTC,
			minFreq: map[Category]int{},
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.strategies = map[Category]RollupStrategy{}
	for _, strategy := range []RollupStrategy{
		&feedingStrategy{cfg: e.cfg},
		&sleepStrategy{cfg: e.cfg},
		&excretionStrategy{cfg: e.cfg},
	} {
		e.strategies[strategy.Category()] = strategy
	}
	return e
}

func (e *Engine) Location() *time.Location {
	return e.cfg.loc
}

func (e *Engine) Categories() []Category {
	categories := make([]Category, 0, len(e.strategies))
	for category := range e.strategies {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i] < categories[j]
	})
	return categories
}

func (e *Engine) Supports(category Category) bool {
	_, ok := e.strategies[category]
	return ok
}

// WeeklyStatistics computes the rollup for the 7 days ending on date (inclusive).
func (e *Engine) WeeklyStatistics(ctx context.Context, src EventSource, category Category, date time.Time, childID string) (WeeklyRollup, error) {
	strategy, ok := e.strategies[category]
	if !ok {
		return WeeklyRollup{}, fmt.Errorf("%w: %s", ErrUnsupportedCategory, category)
	}
	if strings.TrimSpace(childID) == "" {
		return WeeklyRollup{}, ErrInvalidChild
	}

	rollup, err := strategy.Rollup(ctx, src, childID, date)
	if err != nil {
		return WeeklyRollup{}, fmt.Errorf("%s weekly statistics: %w", strings.ToLower(string(category)), err)
	}
	e.logger.DebugContext(
		ctx,
		"weekly statistics computed",
		slog.String("category", string(category)),
		slog.String("date", rollup.Date.Format("2006-01-02")),
		slog.Int("days_active", len(rollup.DailyActiveTimes)),
		slog.Int("pattern_blocks", len(rollup.PatternBlocks)),
	)
	return rollup, nil
}
