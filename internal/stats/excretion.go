package stats

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type excretionStrategy struct {
	cfg strategyConfig
}

func (s *excretionStrategy) Category() Category {
	return CategoryExcretion
}

func (s *excretionStrategy) Rollup(ctx context.Context, src EventSource, childID string, date time.Time) (WeeklyRollup, error) {
	week := WeekWindow(date, s.cfg.loc)
	current, err := src.ExcretionEvents(ctx, childID, week)
	if err != nil {
		return WeeklyRollup{}, fmt.Errorf("load excretion events: %w", err)
	}
	previous, err := src.ExcretionEvents(ctx, childID, week.PriorWeek())
	if err != nil {
		return WeeklyRollup{}, fmt.Errorf("load prior excretion events: %w", err)
	}

	current = excretionsIn(current, week)
	previous = excretionsIn(previous, week.PriorWeek())

	times := make([]time.Time, 0, len(current))
	detail := &ExcretionDetail{
		StatusCount: map[string]int{},
		ColorCount:  map[string]int{},
	}
	for _, event := range current {
		times = append(times, event.At)
		if event.IsUrination() {
			detail.UrinationCount++
			continue
		}
		status := normalizeLabel(event.Status)
		if status != StatusNormal && status != unknownValue {
			detail.AbnormalCount++
		}
		detail.StatusCount[status]++
		detail.ColorCount[normalizeLabel(event.Color)]++
	}

	header := newHeader(
		CategoryExcretion,
		calendarDay(date, s.cfg.loc),
		len(current),
		PointActivity(times, week, s.cfg.loc),
		ExtractPointPatterns(times, s.cfg.loc, s.cfg.minFreqFor(CategoryExcretion)),
	)
	detail.WeekOverWeekChange = weekOverWeek(header.AverageWeeklyCount, averageWeeklyCount(len(previous)))
	return WeeklyRollup{WeeklyHeader: header, Detail: detail}, nil
}

// normalizeLabel folds free-text values such as "Light Brown" into "light_brown".
func normalizeLabel(value string) string {
	label := strings.ToLower(strings.TrimSpace(value))
	if label == "" {
		return unknownValue
	}
	return strings.Join(strings.Fields(strings.ReplaceAll(label, "-", " ")), "_")
}

func excretionsIn(events []ExcretionEvent, w Window) []ExcretionEvent {
	result := make([]ExcretionEvent, 0, len(events))
	for _, event := range events {
		if w.Contains(event.At) {
			result = append(result, event)
		}
	}
	return result
}
