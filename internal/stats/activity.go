package stats

import (
	"encoding/json"
	"sort"
	"time"
)

type HourRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type DailyActiveTime struct {
	Date   time.Time   `json:"-"`
	Ranges []HourRange `json:"ranges"`
}

func (d DailyActiveTime) MarshalJSON() ([]byte, error) {
	type alias DailyActiveTime
	return json.Marshal(struct {
		Date string `json:"date"`
		alias
	}{
		Date:  d.Date.Format("2006-01-02"),
		alias: alias(d),
	})
}

type dayBuckets map[time.Time][]HourRange

func (b dayBuckets) add(day time.Time, r HourRange) {
	if r.End <= r.Start {
		return
	}
	b[day] = append(b[day], r)
}

func (b dayBuckets) ordered() []DailyActiveTime {
	days := make([]time.Time, 0, len(b))
	for day := range b {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})

	result := make([]DailyActiveTime, 0, len(days))
	for _, day := range days {
		ranges := b[day]
		sort.SliceStable(ranges, func(i, j int) bool {
			if ranges[i].Start != ranges[j].Start {
				return ranges[i].Start < ranges[j].Start
			}
			return ranges[i].End < ranges[j].End
		})
		result = append(result, DailyActiveTime{Date: day, Ranges: ranges})
	}
	return result
}

// PointActivity emits one {hour, hour+1} range per event, grouped by calendar day.
func PointActivity(times []time.Time, w Window, loc *time.Location) []DailyActiveTime {
	buckets := dayBuckets{}
	for _, ts := range times {
		if !w.Contains(ts) {
			continue
		}
		local := ts.In(loc)
		hour := local.Hour()
		buckets.add(startOfDay(local, loc), HourRange{Start: hour, End: hour + 1})
	}
	return buckets.ordered()
}

// SleepActivity splits each session at midnight into per-day ranges.
// Segments falling on days outside w are dropped.
func SleepActivity(sessions []SleepSession, w Window, loc *time.Location) []DailyActiveTime {
	buckets := dayBuckets{}
	for _, session := range sessions {
		if !session.End.After(session.Start) {
			continue
		}
		start := session.Start.In(loc)
		end := session.End.In(loc)
		firstDay := startOfDay(start, loc)
		lastDay := startOfDay(end, loc)

		for day := firstDay; !day.After(lastDay); day = day.AddDate(0, 0, 1) {
			if !w.Contains(day) {
				continue
			}
			r := HourRange{Start: 0, End: hoursPerDay}
			if day.Equal(firstDay) {
				r.Start = roundedStartHour(start)
			}
			if day.Equal(lastDay) {
				r.End = roundedEndHour(end)
			}
			buckets.add(day, r)
		}
	}
	return buckets.ordered()
}
