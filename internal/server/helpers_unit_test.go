package server

import (
	"testing"
	"time"

	"babyai/apps/stats/internal/stats"
)

func TestClaimHasAudience(t *testing.T) {
	if !claimHasAudience("expected", "expected") {
		t.Fatalf("expected string audience to match")
	}
	if claimHasAudience("other", "expected") {
		t.Fatalf("expected mismatched string audience to fail")
	}
	if !claimHasAudience([]any{"x", "expected", "y"}, "expected") {
		t.Fatalf("expected []any audience to match")
	}
	if !claimHasAudience([]string{"x", "expected", "y"}, "expected") {
		t.Fatalf("expected []string audience to match")
	}
	if claimHasAudience(nil, "expected") {
		t.Fatalf("expected nil audience to fail")
	}
}

func TestParseDate(t *testing.T) {
	got, err := parseDate("2026-02-15", nil)
	if err != nil {
		t.Fatalf("expected parseDate to succeed: %v", err)
	}
	if got.Format(time.RFC3339) != "2026-02-15T00:00:00Z" {
		t.Fatalf("unexpected parsed date: %s", got.Format(time.RFC3339))
	}

	newYork, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	local, err := parseDate(" 2026-02-15 ", newYork)
	if err != nil {
		t.Fatalf("expected parseDate to succeed: %v", err)
	}
	if local.Day() != 15 || local.Hour() != 0 || local.Location() != newYork {
		t.Fatalf("expected local midnight, got %s", local.Format(time.RFC3339))
	}

	if _, err := parseDate("02/15/2026", time.UTC); err == nil {
		t.Fatalf("expected invalid date to fail")
	}
}

func TestToday(t *testing.T) {
	kst := time.FixedZone("KST", 9*60*60)
	got := today(kst)
	if got.Location() != kst || got.Hour() != 0 || got.Minute() != 0 {
		t.Fatalf("expected local midnight, got %s", got.Format(time.RFC3339))
	}
}

func TestNormalizeBabyID(t *testing.T) {
	id, ok := normalizeBabyID("  6F9619FF-8B86-D011-B42D-00C04FC964FF ")
	if !ok {
		t.Fatalf("expected uuid to be valid")
	}
	if id != "6f9619ff-8b86-d011-b42d-00c04fc964ff" {
		t.Fatalf("expected canonical uuid, got %q", id)
	}
	for _, raw := range []string{"", "   ", "baby-1"} {
		if _, ok := normalizeBabyID(raw); ok {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestNewWeeklyStatisticsResponseWindow(t *testing.T) {
	date := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	resp := newWeeklyStatisticsResponse("baby-1", date, time.UTC, stats.WeeklyRollup{})
	if resp.WeekStart != "2026-02-09" || resp.WeekEnd != "2026-02-15" {
		t.Fatalf("unexpected window %s..%s", resp.WeekStart, resp.WeekEnd)
	}
	if resp.Timezone != "UTC" {
		t.Fatalf("unexpected timezone %q", resp.Timezone)
	}
}

func TestCategoryNames(t *testing.T) {
	got := categoryNames(stats.NewEngine().Categories())
	if got != "EXCRETION, FEEDING, SLEEP" {
		t.Fatalf("unexpected category list %q", got)
	}
}
