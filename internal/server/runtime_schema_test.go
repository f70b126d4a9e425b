package server

import (
	"context"
	"errors"
	"strings"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v2"
)

func TestValidateRuntimeSchema(t *testing.T) {
	t.Run("all projection columns present", func(t *testing.T) {
		mock := newMockPool(t)
		for _, item := range projectionColumns {
			mock.ExpectQuery(`FROM information_schema.columns`).
				WithArgs(item.table, item.column).
				WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		}
		if err := ValidateRuntimeSchema(context.Background(), mock); err != nil {
			t.Fatalf("ValidateRuntimeSchema() error = %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
	})

	t.Run("missing column", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`FROM information_schema.columns`).
			WithArgs("IntakeEvent", "childId").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		err := ValidateRuntimeSchema(context.Background(), mock)
		if err == nil || !strings.Contains(err.Error(), "IntakeEvent.childId is missing") {
			t.Fatalf("expected missing column error, got %v", err)
		}
	})

	t.Run("query failure", func(t *testing.T) {
		mock := newMockPool(t)
		boom := errors.New("permission denied")
		mock.ExpectQuery(`FROM information_schema.columns`).WillReturnError(boom)

		if err := ValidateRuntimeSchema(context.Background(), mock); !errors.Is(err, boom) {
			t.Fatalf("expected wrapped query error, got %v", err)
		}
	})

	t.Run("nil database", func(t *testing.T) {
		if err := ValidateRuntimeSchema(context.Background(), nil); err == nil {
			t.Fatalf("expected nil database to fail")
		}
	})
}
