package stats

import (
	"context"
	"fmt"
	"math"
	"time"
)

type sleepStrategy struct {
	cfg strategyConfig
}

func (s *sleepStrategy) Category() Category {
	return CategorySleep
}

func (s *sleepStrategy) Rollup(ctx context.Context, src EventSource, childID string, date time.Time) (WeeklyRollup, error) {
	week := WeekWindow(date, s.cfg.loc)
	current, err := src.SleepSessions(ctx, childID, week)
	if err != nil {
		return WeeklyRollup{}, fmt.Errorf("load sleep sessions: %w", err)
	}
	previous, err := src.SleepSessions(ctx, childID, week.PriorWeek())
	if err != nil {
		return WeeklyRollup{}, fmt.Errorf("load prior sleep sessions: %w", err)
	}

	current = sessionsIn(current, week)
	previous = sessionsIn(previous, week.PriorWeek())

	header := newHeader(
		CategorySleep,
		calendarDay(date, s.cfg.loc),
		len(current),
		SleepActivity(current, week, s.cfg.loc),
		ExtractSleepPatterns(current, s.cfg.loc, s.cfg.minFreqFor(CategorySleep)),
	)
	currentHours := averageSleepHours(current)
	return WeeklyRollup{
		WeeklyHeader: header,
		Detail: &SleepDetail{
			AverageSleepHours:     currentHours,
			LongestSessionMinutes: longestSessionMinutes(current),
			WeekOverWeekChange:    weekOverWeek(currentHours, averageSleepHours(previous)),
		},
	}, nil
}

// averageSleepHours is total minutes over 7*60, so it reads as hours slept per day.
func averageSleepHours(sessions []SleepSession) *float64 {
	if len(sessions) == 0 {
		return nil
	}
	total := 0.0
	for _, session := range sessions {
		total += session.Minutes()
	}
	return floatPtr(round1(total / (daysPerWeek * 60)))
}

func longestSessionMinutes(sessions []SleepSession) *int {
	if len(sessions) == 0 {
		return nil
	}
	longest := 0.0
	for _, session := range sessions {
		longest = math.Max(longest, session.Minutes())
	}
	minutes := int(math.Round(longest))
	return &minutes
}

// sessionsIn keeps sessions overlapping w. A session crossing a window edge
// keeps its full duration.
func sessionsIn(sessions []SleepSession, w Window) []SleepSession {
	result := make([]SleepSession, 0, len(sessions))
	for _, session := range sessions {
		if !session.End.Before(session.Start) && w.Overlaps(session.Start, session.End) {
			result = append(result, session)
		}
	}
	return result
}
