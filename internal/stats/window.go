package stats

import "time"

// Window is a half-open [Start, End) range of whole calendar days.
type Window struct {
	Start time.Time
	End   time.Time
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// calendarDay is midnight in loc of the calendar day date names in its own zone.
func calendarDay(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
}

// WeekWindow covers date-6 00:00:00 through date 23:59:59 in loc.
func WeekWindow(date time.Time, loc *time.Location) Window {
	end := calendarDay(date, loc).AddDate(0, 0, 1)
	return Window{Start: end.AddDate(0, 0, -daysPerWeek), End: end}
}

func (w Window) PriorWeek() Window {
	return Window{Start: w.Start.AddDate(0, 0, -daysPerWeek), End: w.Start}
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Overlaps reports whether [start, end) shares time with w. A zero-length
// interval overlaps when it sits inside w.
func (w Window) Overlaps(start, end time.Time) bool {
	if !start.Before(w.End) {
		return false
	}
	return end.After(w.Start) || !start.Before(w.Start)
}

// Days lists the midnight of every calendar day in the window.
func (w Window) Days() []time.Time {
	days := make([]time.Time, 0, daysPerWeek)
	for day := w.Start; day.Before(w.End); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
	}
	return days
}
