package stats

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	minutesPerDay  = 24 * 60
	slotMinutes    = 30
	slotsPerDay    = minutesPerDay / slotMinutes
	daysPerWeek    = 7
	hoursPerDay    = 24
	defaultMinFreq = 4
)

// TimeOfDay is a wall-clock time without a date, stored as minutes since midnight.
type TimeOfDay int

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(((hour*60+minute)%minutesPerDay + minutesPerDay) % minutesPerDay)
}

func (t TimeOfDay) Hour() int {
	return int(t) / 60
}

func (t TimeOfDay) Minute() int {
	return int(t) % 60
}

func (t TimeOfDay) Add(minutes int) TimeOfDay {
	return NewTimeOfDay(0, int(t)+minutes)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

type RoundingRule int

const (
	// Floor30 is used for point-in-time events (feeding, excretion).
	Floor30 RoundingRule = iota
	// Nearest30WithRollover is used for sleep boundaries; :45 and later roll to the next hour.
	Nearest30WithRollover
)

func Quantize(ts time.Time, rule RoundingRule) TimeOfDay {
	hour, minute := ts.Hour(), ts.Minute()
	switch rule {
	case Nearest30WithRollover:
		switch {
		case minute < 15:
			return NewTimeOfDay(hour, 0)
		case minute < 45:
			return NewTimeOfDay(hour, 30)
		default:
			return NewTimeOfDay(hour+1, 0)
		}
	default:
		if minute < 30 {
			return NewTimeOfDay(hour, 0)
		}
		return NewTimeOfDay(hour, 30)
	}
}

// TimeBlock is a half-open [Start, End) interval of the day. End == 00:00 means midnight.
type TimeBlock struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

func HalfHourBlock(start TimeOfDay) TimeBlock {
	return TimeBlock{Start: start, End: start.Add(slotMinutes)}
}

func (b TimeBlock) String() string {
	return b.Start.String() + "-" + b.End.String()
}

// Wraps reports whether the block crosses midnight.
func (b TimeBlock) Wraps() bool {
	return b.End != 0 && b.End <= b.Start
}

// Hour-level rounding on a 0..24 scale, matching Nearest30WithRollover without wrapping.
func roundedStartHour(ts time.Time) int {
	if ts.Minute() >= 45 {
		return ts.Hour() + 1
	}
	return ts.Hour()
}

func roundedEndHour(ts time.Time) int {
	if ts.Minute() < 15 {
		return ts.Hour()
	}
	return ts.Hour() + 1
}

// roundedInstant applies Nearest30WithRollover to ts in loc and keeps the date.
func roundedInstant(ts time.Time, loc *time.Location) time.Time {
	local := ts.In(loc)
	hour := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), 0, 0, 0, loc)
	switch minute := local.Minute(); {
	case minute < 15:
		return hour
	case minute < 45:
		return hour.Add(slotMinutes * time.Minute)
	default:
		return hour.Add(time.Hour)
	}
}
