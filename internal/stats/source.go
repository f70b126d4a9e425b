package stats

import (
	"context"
	"time"
)

type FeedingType string

const (
	FeedingDirect           FeedingType = "direct"
	FeedingFormula          FeedingType = "formula"
	FeedingBreastmilkBottle FeedingType = "breastmilk_bottle"
	FeedingPumping          FeedingType = "pumping"
)

type FeedingEvent struct {
	At       time.Time
	Type     FeedingType
	AmountML float64
}

type SleepSession struct {
	Start time.Time
	End   time.Time
}

func (s SleepSession) Minutes() float64 {
	if !s.End.After(s.Start) {
		return 0
	}
	return s.End.Sub(s.Start).Minutes()
}

type ExcretionType string

const (
	ExcretionUrine ExcretionType = "urine"
	ExcretionStool ExcretionType = "stool"
	ExcretionMixed ExcretionType = "mixed"
)

const (
	StatusNormal = "normal"
	unknownValue = "unknown"
)

type ExcretionEvent struct {
	At     time.Time
	Type   ExcretionType
	Status string
	Color  string
}

func (e ExcretionEvent) IsUrination() bool {
	return e.Type == ExcretionUrine
}

// EventSource returns the rows whose start falls inside w, ordered by start.
type EventSource interface {
	FeedingEvents(ctx context.Context, childID string, w Window) ([]FeedingEvent, error)
	SleepSessions(ctx context.Context, childID string, w Window) ([]SleepSession, error)
	ExcretionEvents(ctx context.Context, childID string, w Window) ([]ExcretionEvent, error)
}
