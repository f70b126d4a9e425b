package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"babyai/apps/stats/internal/stats"
)

var intakeTypes = map[string]stats.FeedingType{
	"breastfeed":        stats.FeedingDirect,
	"direct":            stats.FeedingDirect,
	"formula":           stats.FeedingFormula,
	"breastmilk_bottle": stats.FeedingBreastmilkBottle,
	"bottle_breastmilk": stats.FeedingBreastmilkBottle,
	"pumping":           stats.FeedingPumping,
	"pumped":            stats.FeedingPumping,
}

func normalizeIntakeType(raw string) (stats.FeedingType, bool) {
	feedingType, ok := intakeTypes[strings.ToLower(strings.TrimSpace(raw))]
	return feedingType, ok
}

func (s *Store) FeedingEvents(ctx context.Context, childID string, w stats.Window) ([]stats.FeedingEvent, error) {
	rows, err := s.query(ctx, windowQuery(
		`"IntakeEvent"`, `"startAt"`, childID, w,
		`"startAt"`, `"intakeType"`, `COALESCE("amountMl", 0)::float8`,
	))
	if err != nil {
		return nil, fmt.Errorf("load intake events: %w", err)
	}
	defer rows.Close()

	events := make([]stats.FeedingEvent, 0)
	for rows.Next() {
		var startAt time.Time
		var intakeType string
		var amountML float64
		if err := rows.Scan(&startAt, &intakeType, &amountML); err != nil {
			return nil, fmt.Errorf("scan intake event: %w", err)
		}
		feedingType, ok := normalizeIntakeType(intakeType)
		if !ok {
			continue
		}
		events = append(events, stats.FeedingEvent{
			At:       startAt.UTC(),
			Type:     feedingType,
			AmountML: amountML,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read intake events: %w", err)
	}
	return events, nil
}

// SleepSessions loads sessions overlapping w, including ones that started before it.
func (s *Store) SleepSessions(ctx context.Context, childID string, w stats.Window) ([]stats.SleepSession, error) {
	builder := psql.Select(`"startAt"`, `"endAt"`).
		From(`"SleepEvent"`).
		Where(squirrel.Eq{`"childId"`: childID}).
		Where(squirrel.Lt{`"startAt"`: w.End.UTC()}).
		Where(squirrel.Or{
			squirrel.Gt{`"endAt"`: w.Start.UTC()},
			squirrel.GtOrEq{`"startAt"`: w.Start.UTC()},
		}).
		Where(squirrel.NotEq{`"endAt"`: nil}).
		Where(squirrel.Expr(`"endAt" >= "startAt"`)).
		OrderBy(`"startAt" ASC`)
	rows, err := s.query(ctx, builder)
	if err != nil {
		return nil, fmt.Errorf("load sleep events: %w", err)
	}
	defer rows.Close()

	sessions := make([]stats.SleepSession, 0)
	for rows.Next() {
		var startAt, endAt time.Time
		if err := rows.Scan(&startAt, &endAt); err != nil {
			return nil, fmt.Errorf("scan sleep event: %w", err)
		}
		sessions = append(sessions, stats.SleepSession{Start: startAt.UTC(), End: endAt.UTC()})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read sleep events: %w", err)
	}
	return sessions, nil
}

func excretionType(pee, poo bool) (stats.ExcretionType, bool) {
	switch {
	case pee && poo:
		return stats.ExcretionMixed, true
	case poo:
		return stats.ExcretionStool, true
	case pee:
		return stats.ExcretionUrine, true
	default:
		return "", false
	}
}

func (s *Store) ExcretionEvents(ctx context.Context, childID string, w stats.Window) ([]stats.ExcretionEvent, error) {
	rows, err := s.query(ctx, windowQuery(
		`"DiaperEvent"`, "at", childID, w,
		"at", "pee", "poo", `COALESCE("pooType", '')`, `COALESCE(color, '')`,
	))
	if err != nil {
		return nil, fmt.Errorf("load diaper events: %w", err)
	}
	defer rows.Close()

	events := make([]stats.ExcretionEvent, 0)
	for rows.Next() {
		var at time.Time
		var pee, poo bool
		var status, color string
		if err := rows.Scan(&at, &pee, &poo, &status, &color); err != nil {
			return nil, fmt.Errorf("scan diaper event: %w", err)
		}
		kind, ok := excretionType(pee, poo)
		if !ok {
			continue
		}
		events = append(events, stats.ExcretionEvent{
			At:     at.UTC(),
			Type:   kind,
			Status: status,
			Color:  color,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read diaper events: %w", err)
	}
	return events, nil
}
