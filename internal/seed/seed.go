// Package seed writes a repeating daily timeline of feeding, sleep and diaper
// rows into the projection tables read by the statistics store.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const DefaultTag = "weekly_stats_seed_v1"

type Kind string

const (
	KindFeeding Kind = "feeding"
	KindSleep   Kind = "sleep"
	KindDiaper  Kind = "diaper"
)

type Entry struct {
	Kind       Kind
	StartHM    string
	EndHM      string
	IntakeType string
	AmountML   float64
	SleepType  string
	Pee        bool
	Poo        bool
	PooType    string
	Color      string
}

// DailySchedule repeats every seeded day. A sleep whose end is earlier than its
// start finishes on the following day.
var DailySchedule = []Entry{
	{Kind: KindFeeding, StartHM: "06:30", IntakeType: "formula", AmountML: 145},
	{Kind: KindDiaper, StartHM: "08:10", Poo: true, PooType: "normal", Color: "light brown"},
	{Kind: KindFeeding, StartHM: "09:20", IntakeType: "breastmilk_bottle", AmountML: 120},
	{Kind: KindSleep, StartHM: "09:45", EndHM: "10:40"},
	{Kind: KindFeeding, StartHM: "12:00", IntakeType: "breastfeed"},
	{Kind: KindDiaper, StartHM: "12:20", Pee: true},
	{Kind: KindSleep, StartHM: "13:00", EndHM: "14:10"},
	{Kind: KindFeeding, StartHM: "15:50", IntakeType: "formula", AmountML: 150},
	{Kind: KindDiaper, StartHM: "18:40", Pee: true, Poo: true, PooType: "watery", Color: "green"},
	{Kind: KindFeeding, StartHM: "19:30", IntakeType: "pumping", AmountML: 80},
	{Kind: KindSleep, StartHM: "21:45", EndHM: "06:10"},
}

type Options struct {
	BabyID   string
	Tag      string
	Date     time.Time
	Days     int
	Location *time.Location
	Schedule []Entry
}

func (o Options) normalized() (Options, error) {
	o.BabyID = strings.TrimSpace(o.BabyID)
	if o.BabyID == "" {
		return Options{}, errors.New("baby id is required")
	}
	o.Tag = strings.TrimSpace(o.Tag)
	if o.Tag == "" {
		o.Tag = DefaultTag
	}
	if o.Days <= 0 {
		o.Days = 7
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Date.IsZero() {
		o.Date = time.Now()
	}
	if o.Schedule == nil {
		o.Schedule = DailySchedule
	}
	return o, nil
}

type Row struct {
	Entry Entry
	Start time.Time
	End   *time.Time
}

// Rows expands the schedule over the Days calendar days ending on Date.
func Rows(opts Options) ([]Row, error) {
	opts, err := opts.normalized()
	if err != nil {
		return nil, err
	}
	local := opts.Date.In(opts.Location)
	last := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, opts.Location)

	rows := make([]Row, 0, opts.Days*len(opts.Schedule))
	for offset := opts.Days - 1; offset >= 0; offset-- {
		day := last.AddDate(0, 0, -offset)
		for _, entry := range opts.Schedule {
			start, err := atClock(day, entry.StartHM)
			if err != nil {
				return nil, err
			}
			row := Row{Entry: entry, Start: start.UTC()}
			if strings.TrimSpace(entry.EndHM) != "" {
				end, err := atClock(day, entry.EndHM)
				if err != nil {
					return nil, err
				}
				if !end.After(start) {
					end = end.AddDate(0, 0, 1)
				}
				endUTC := end.UTC()
				row.End = &endUTC
				if entry.Kind == KindSleep && entry.SleepType == "" {
					row.Entry.SleepType = sleepTypeFor(start, end)
				}
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func atClock(day time.Time, hourMinute string) (time.Time, error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(hourMinute))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse clock %q: %w", hourMinute, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), 0, 0, day.Location()), nil
}

// sleepTypeFor classifies by local start hour; long daytime sessions stay unknown.
func sleepTypeFor(start, end time.Time) string {
	hour := start.Hour()
	if hour >= 18 || hour < 6 {
		return "night"
	}
	if end.Sub(start).Hours() >= 4 {
		return "unknown"
	}
	return "nap"
}

type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Result struct {
	Inserted int
	Replaced int64
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var projectionTables = []string{`"IntakeEvent"`, `"SleepEvent"`, `"DiaperEvent"`}

// Apply replaces any rows previously seeded under the same tag, then inserts the timeline.
// Callers wanting atomicity pass a transaction.
func Apply(ctx context.Context, db Execer, opts Options) (Result, error) {
	opts, err := opts.normalized()
	if err != nil {
		return Result{}, err
	}
	rows, err := Rows(opts)
	if err != nil {
		return Result{}, err
	}

	replaced, err := Cleanup(ctx, db, opts.BabyID, opts.Tag)
	if err != nil {
		return Result{}, err
	}

	result := Result{Replaced: replaced}
	for _, row := range rows {
		sql, args, err := insertRow(opts.BabyID, opts.Tag, row).ToSql()
		if err != nil {
			return Result{}, fmt.Errorf("build %s insert: %w", row.Entry.Kind, err)
		}
		if _, err := db.Exec(ctx, sql, args...); err != nil {
			return Result{}, fmt.Errorf("insert %s at %s: %w", row.Entry.Kind, row.Start.Format(time.RFC3339), err)
		}
		result.Inserted++
	}
	return result, nil
}

func insertRow(babyID, tag string, row Row) squirrel.InsertBuilder {
	now := squirrel.Expr("NOW()")
	entry := row.Entry
	switch entry.Kind {
	case KindSleep:
		return psql.Insert(`"SleepEvent"`).
			Columns("id", `"childId"`, `"startAt"`, `"endAt"`, "note", `"endIsEstimated"`, `"sleepType"`, `"sleepTypeSource"`, `"createdAt"`, `"updatedAt"`).
			Values(uuid.NewString(), babyID, row.Start, row.End, tag, false, entry.SleepType, "auto", now, now)
	case KindDiaper:
		return psql.Insert(`"DiaperEvent"`).
			Columns("id", `"childId"`, "at", "pee", "poo", `"pooType"`, "color", "note", `"createdAt"`, `"updatedAt"`).
			Values(uuid.NewString(), babyID, row.Start, entry.Pee, entry.Poo, optional(entry.PooType), optional(entry.Color), tag, now, now)
	default:
		var amount any
		if entry.AmountML > 0 {
			amount = entry.AmountML
		}
		return psql.Insert(`"IntakeEvent"`).
			Columns("id", `"childId"`, `"startAt"`, `"endAt"`, "note", `"endIsEstimated"`, `"intakeType"`, `"amountMl"`, `"createdAt"`, `"updatedAt"`).
			Values(uuid.NewString(), babyID, row.Start, row.End, tag, false, entry.IntakeType, amount, now, now)
	}
}

func optional(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

// Cleanup deletes every projection row seeded for babyID under tag.
func Cleanup(ctx context.Context, db Execer, babyID, tag string) (int64, error) {
	babyID = strings.TrimSpace(babyID)
	if babyID == "" {
		return 0, errors.New("baby id is required")
	}
	if strings.TrimSpace(tag) == "" {
		tag = DefaultTag
	}

	var deleted int64
	for _, table := range projectionTables {
		sql, args, err := psql.Delete(table).
			Where(squirrel.Eq{`"childId"`: babyID, "note": tag}).
			ToSql()
		if err != nil {
			return 0, fmt.Errorf("build cleanup for %s: %w", table, err)
		}
		tagResult, err := db.Exec(ctx, sql, args...)
		if err != nil {
			return 0, fmt.Errorf("cleanup %s: %w", table, err)
		}
		deleted += tagResult.RowsAffected()
	}
	return deleted, nil
}
