package server

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"babyai/apps/stats/internal/stats"
)

type weeklyStatisticsRequest struct {
	BabyID   string
	Category stats.Category
	Date     time.Time
}

type weeklyStatisticsResponse struct {
	BabyID     string             `json:"baby_id"`
	Timezone   string             `json:"timezone"`
	WeekStart  string             `json:"week_start"`
	WeekEnd    string             `json:"week_end"`
	Statistics stats.WeeklyRollup `json:"statistics"`
}

type categoriesResponse struct {
	Categories      []stats.Category `json:"categories"`
	Timezone        string           `json:"timezone"`
	DefaultCategory stats.Category   `json:"default_category"`
}

func newWeeklyStatisticsResponse(babyID string, date time.Time, loc *time.Location, rollup stats.WeeklyRollup) weeklyStatisticsResponse {
	window := stats.WeekWindow(date, loc)
	return weeklyStatisticsResponse{
		BabyID:     babyID,
		Timezone:   loc.String(),
		WeekStart:  window.Start.Format("2006-01-02"),
		WeekEnd:    window.End.AddDate(0, 0, -1).Format("2006-01-02"),
		Statistics: rollup,
	}
}

func normalizeBabyID(input string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", false
	}
	parsed, err := uuid.Parse(trimmed)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

func categoryNames(categories []stats.Category) string {
	names := make([]string, 0, len(categories))
	for _, category := range categories {
		names = append(names, string(category))
	}
	return strings.Join(names, ", ")
}
