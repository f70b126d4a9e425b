package stats

import (
	"encoding/json"
	"math"
	"time"
)

// WeeklyHeader holds the fields every category reports.
type WeeklyHeader struct {
	Date               time.Time         `json:"-"`
	Category           Category          `json:"category"`
	AverageWeeklyCount *float64          `json:"average_weekly_count"`
	DailyActiveTimes   []DailyActiveTime `json:"daily_active_times"`
	PatternBlocks      []TimeBlock       `json:"pattern_blocks"`
}

// RollupDetail is implemented only by the category payloads in this package.
type RollupDetail interface {
	detailCategory() Category
}

type FeedingDetail struct {
	AverageAmountML    *float64            `json:"average_amount_ml"`
	CountByType        map[FeedingType]int `json:"count_by_type"`
	WeekOverWeekChange *float64            `json:"week_over_week_change"`
}

func (*FeedingDetail) detailCategory() Category { return CategoryFeeding }

type SleepDetail struct {
	AverageSleepHours     *float64 `json:"average_sleep_hours"`
	LongestSessionMinutes *int     `json:"longest_session_minutes"`
	WeekOverWeekChange    *float64 `json:"week_over_week_change"`
}

func (*SleepDetail) detailCategory() Category { return CategorySleep }

type ExcretionDetail struct {
	AbnormalCount      int            `json:"abnormal_count"`
	UrinationCount     int            `json:"urination_count"`
	StatusCount        map[string]int `json:"status_count"`
	ColorCount         map[string]int `json:"color_count"`
	WeekOverWeekChange *float64       `json:"week_over_week_change"`
}

func (*ExcretionDetail) detailCategory() Category { return CategoryExcretion }

type WeeklyRollup struct {
	WeeklyHeader
	Detail RollupDetail `json:"detail"`
}

func (r WeeklyRollup) FeedingDetail() (*FeedingDetail, bool) {
	d, ok := r.Detail.(*FeedingDetail)
	return d, ok
}

func (r WeeklyRollup) SleepDetail() (*SleepDetail, bool) {
	d, ok := r.Detail.(*SleepDetail)
	return d, ok
}

func (r WeeklyRollup) ExcretionDetail() (*ExcretionDetail, bool) {
	d, ok := r.Detail.(*ExcretionDetail)
	return d, ok
}

func (r WeeklyRollup) MarshalJSON() ([]byte, error) {
	type header WeeklyHeader
	return json.Marshal(struct {
		Date string `json:"date"`
		header
		Detail RollupDetail `json:"detail"`
	}{
		Date:   r.Date.Format("2006-01-02"),
		header: header(r.WeeklyHeader),
		Detail: r.Detail,
	})
}

func round1(value float64) float64 {
	return math.Round(value*10) / 10
}

func floatPtr(value float64) *float64 {
	return &value
}

func averageWeeklyCount(count int) *float64 {
	if count == 0 {
		return nil
	}
	return floatPtr(round1(float64(count) / daysPerWeek))
}

func weekOverWeek(current, previous *float64) *float64 {
	if current == nil || previous == nil {
		return nil
	}
	if *current == *previous {
		return floatPtr(0)
	}
	return floatPtr(round1(*current - *previous))
}

func newHeader(category Category, date time.Time, count int, active []DailyActiveTime, blocks []TimeBlock) WeeklyHeader {
	if active == nil {
		active = []DailyActiveTime{}
	}
	if blocks == nil {
		blocks = []TimeBlock{}
	}
	return WeeklyHeader{
		Date:               date,
		Category:           category,
		AverageWeeklyCount: averageWeeklyCount(count),
		DailyActiveTimes:   active,
		PatternBlocks:      blocks,
	}
}
