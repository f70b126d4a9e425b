package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"babyai/apps/stats/internal/stats"
)

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootRegistersSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"compute", "seed", "cleanup"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("expected %s subcommand, got %v (%v)", name, cmd, err)
		}
	}
}

func TestComputeValidatesBeforeConnecting(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "missing baby",
			args:    []string{"compute", "--category", "sleep"},
			wantErr: "--baby-id is required",
		},
		{
			name:    "unsupported category",
			args:    []string{"compute", "--baby-id", "baby-1", "--category", "growth"},
			wantErr: "unsupported category",
		},
		{
			name:    "bad frequency",
			args:    []string{"compute", "--baby-id", "baby-1", "--min-frequency", "9"},
			wantErr: "--min-frequency must be between 1 and 7",
		},
		{
			name:    "bad date",
			args:    []string{"compute", "--baby-id", "baby-1", "--date", "2026/02/15"},
			wantErr: "invalid --date",
		},
		{
			name:    "bad timezone",
			args:    []string{"compute", "--baby-id", "baby-1", "--tz", "Nowhere/City"},
			wantErr: "load timezone",
		},
		{
			name:    "no database",
			args:    []string{"compute", "--baby-id", "baby-1", "--db", " "},
			wantErr: "--db or DATABASE_URL is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeRoot(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestComputeFlagsValidateCategory(t *testing.T) {
	engine := stats.NewEngine()
	category, err := computeFlags{babyID: "baby-1", category: "excretion", minFrequency: 4}.validate(engine)
	if err != nil || category != stats.CategoryExcretion {
		t.Fatalf("expected EXCRETION, got %q (%v)", category, err)
	}
	_, err = computeFlags{babyID: "baby-1", category: "medication", minFrequency: 4}.validate(engine)
	if !errors.Is(err, stats.ErrUnsupportedCategory) {
		t.Fatalf("expected ErrUnsupportedCategory, got %v", err)
	}
}

func TestResolveDate(t *testing.T) {
	kst := time.FixedZone("KST", 9*60*60)
	date, err := resolveDate("2026-02-15", kst)
	if err != nil {
		t.Fatalf("resolveDate() error = %v", err)
	}
	if date.Format(time.RFC3339) != "2026-02-15T00:00:00+09:00" {
		t.Fatalf("unexpected date %s", date.Format(time.RFC3339))
	}
	today, err := resolveDate("", kst)
	if err != nil || today.Hour() != 0 || today.Location() != kst {
		t.Fatalf("expected local midnight today, got %s (%v)", today, err)
	}
}

func TestWriteRollupPrintsIndentedJSON(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)

	rollup := stats.WeeklyRollup{
		WeeklyHeader: stats.WeeklyHeader{
			Date:     time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
			Category: stats.CategorySleep,
		},
		Detail: &stats.SleepDetail{},
	}
	if err := writeRollup(root, rollup); err != nil {
		t.Fatalf("writeRollup() error = %v", err)
	}
	if !strings.Contains(out.String(), "\n  \"category\": \"SLEEP\"") {
		t.Fatalf("expected indented category, got %s", out.String())
	}
}

func TestResolveTargetBaby(t *testing.T) {
	mock, err := pgxmock.NewConn()
	if err != nil {
		t.Fatalf("create pgxmock conn: %v", err)
	}
	defer mock.Close(context.Background())

	mock.ExpectQuery(`SELECT id FROM "Baby" WHERE id = \$1`).WithArgs("baby-1").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("baby-1"))
	mock.ExpectQuery(`SELECT id FROM "Baby" WHERE id = \$1`).WithArgs("baby-2").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`ORDER BY "createdAt" DESC LIMIT 1`).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("latest"))

	ctx := context.Background()
	if got, err := resolveTargetBaby(ctx, mock, " baby-1 "); err != nil || got != "baby-1" {
		t.Fatalf("expected explicit baby, got %q (%v)", got, err)
	}
	if _, err := resolveTargetBaby(ctx, mock, "baby-2"); err == nil || !strings.Contains(err.Error(), "baby not found") {
		t.Fatalf("expected baby not found, got %v", err)
	}
	if got, err := resolveTargetBaby(ctx, mock, ""); err != nil || got != "latest" {
		t.Fatalf("expected latest baby, got %q (%v)", got, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
