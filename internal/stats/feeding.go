package stats

import (
	"context"
	"fmt"
	"time"
)

var feedingTypes = []FeedingType{
	FeedingDirect,
	FeedingFormula,
	FeedingBreastmilkBottle,
	FeedingPumping,
}

// dailyVolumeFunc returns the ml recorded for one sub-type inside a single-day window.
type dailyVolumeFunc func(events []FeedingEvent, day Window) float64

var feedingVolumeFuncs = map[FeedingType]dailyVolumeFunc{
	FeedingDirect:           volumeOf(FeedingDirect),
	FeedingFormula:          volumeOf(FeedingFormula),
	FeedingBreastmilkBottle: volumeOf(FeedingBreastmilkBottle),
	FeedingPumping:          volumeOf(FeedingPumping),
}

func volumeOf(feedingType FeedingType) dailyVolumeFunc {
	return func(events []FeedingEvent, day Window) float64 {
		total := 0.0
		for _, event := range events {
			if event.Type != feedingType || !day.Contains(event.At) {
				continue
			}
			if event.AmountML > 0 {
				total += event.AmountML
			}
		}
		return total
	}
}

type feedingStrategy struct {
	cfg strategyConfig
}

func (s *feedingStrategy) Category() Category {
	return CategoryFeeding
}

func (s *feedingStrategy) Rollup(ctx context.Context, src EventSource, childID string, date time.Time) (WeeklyRollup, error) {
	week := WeekWindow(date, s.cfg.loc)
	current, err := src.FeedingEvents(ctx, childID, week)
	if err != nil {
		return WeeklyRollup{}, fmt.Errorf("load feeding events: %w", err)
	}
	previous, err := src.FeedingEvents(ctx, childID, week.PriorWeek())
	if err != nil {
		return WeeklyRollup{}, fmt.Errorf("load prior feeding events: %w", err)
	}

	current = feedingsIn(current, week)
	previous = feedingsIn(previous, week.PriorWeek())

	times := make([]time.Time, 0, len(current))
	countByType := make(map[FeedingType]int, len(feedingTypes))
	for _, event := range current {
		times = append(times, event.At)
		countByType[event.Type]++
	}

	header := newHeader(
		CategoryFeeding,
		calendarDay(date, s.cfg.loc),
		len(current),
		PointActivity(times, week, s.cfg.loc),
		ExtractPointPatterns(times, s.cfg.loc, s.cfg.minFreqFor(CategoryFeeding)),
	)
	return WeeklyRollup{
		WeeklyHeader: header,
		Detail: &FeedingDetail{
			AverageAmountML:    averageDailyAmount(current, week),
			CountByType:        countByType,
			WeekOverWeekChange: weekOverWeek(header.AverageWeeklyCount, averageWeeklyCount(len(previous))),
		},
	}, nil
}

// averageDailyAmount is the 7-day mean of each day's summed positive sub-type volumes.
func averageDailyAmount(events []FeedingEvent, week Window) *float64 {
	sum := 0.0
	hasData := false
	for _, day := range week.Days() {
		dayWindow := Window{Start: day, End: day.AddDate(0, 0, 1)}
		dayTotal := 0.0
		for _, feedingType := range feedingTypes {
			if volume := feedingVolumeFuncs[feedingType](events, dayWindow); volume > 0 {
				dayTotal += volume
			}
		}
		if dayTotal > 0 {
			hasData = true
		}
		sum += dayTotal
	}
	if !hasData {
		return nil
	}
	return floatPtr(round1(sum / daysPerWeek))
}

func feedingsIn(events []FeedingEvent, w Window) []FeedingEvent {
	result := make([]FeedingEvent, 0, len(events))
	for _, event := range events {
		if w.Contains(event.At) {
			result = append(result, event)
		}
	}
	return result
}
