package server

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("create pgxmock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestGetBabyWithAccess(t *testing.T) {
	const (
		userID      = "user-1"
		babyID      = "baby-1"
		householdID = "household-1"
	)
	babyQuery := `SELECT id, "householdId" FROM "Baby"`
	householdQuery := `SELECT "ownerUserId" FROM "Household"`
	memberQuery := `SELECT role FROM "HouseholdMember"`

	tests := []struct {
		name       string
		setup      func(mock pgxmock.PgxPoolIface)
		wantStatus int
		wantErr    bool
	}{
		{
			name: "owner",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(babyQuery).WithArgs(babyID).
					WillReturnRows(pgxmock.NewRows([]string{"id", "householdId"}).AddRow(babyID, householdID))
				mock.ExpectQuery(householdQuery).WithArgs(householdID).
					WillReturnRows(pgxmock.NewRows([]string{"ownerUserId"}).AddRow(userID))
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "active family viewer",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(babyQuery).WithArgs(babyID).
					WillReturnRows(pgxmock.NewRows([]string{"id", "householdId"}).AddRow(babyID, householdID))
				mock.ExpectQuery(householdQuery).WithArgs(householdID).
					WillReturnRows(pgxmock.NewRows([]string{"ownerUserId"}).AddRow("someone-else"))
				mock.ExpectQuery(memberQuery).WithArgs(householdID, userID).
					WillReturnRows(pgxmock.NewRows([]string{"role"}).AddRow(roleFamilyViewer))
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "baby missing",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(babyQuery).WithArgs(babyID).WillReturnError(pgx.ErrNoRows)
			},
			wantStatus: http.StatusNotFound,
			wantErr:    true,
		},
		{
			name: "not a member",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(babyQuery).WithArgs(babyID).
					WillReturnRows(pgxmock.NewRows([]string{"id", "householdId"}).AddRow(babyID, householdID))
				mock.ExpectQuery(householdQuery).WithArgs(householdID).
					WillReturnRows(pgxmock.NewRows([]string{"ownerUserId"}).AddRow("someone-else"))
				mock.ExpectQuery(memberQuery).WithArgs(householdID, userID).WillReturnError(pgx.ErrNoRows)
			},
			wantStatus: http.StatusForbidden,
			wantErr:    true,
		},
		{
			name: "role outside allowed set",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(babyQuery).WithArgs(babyID).
					WillReturnRows(pgxmock.NewRows([]string{"id", "householdId"}).AddRow(babyID, householdID))
				mock.ExpectQuery(householdQuery).WithArgs(householdID).
					WillReturnRows(pgxmock.NewRows([]string{"ownerUserId"}).AddRow("someone-else"))
				mock.ExpectQuery(memberQuery).WithArgs(householdID, userID).
					WillReturnRows(pgxmock.NewRows([]string{"role"}).AddRow("GUEST"))
			},
			wantStatus: http.StatusForbidden,
			wantErr:    true,
		},
		{
			name: "database failure",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(babyQuery).WithArgs(babyID).WillReturnError(errors.New("connection reset"))
			},
			wantStatus: http.StatusInternalServerError,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockPool(t)
			tt.setup(mock)

			identities := &pgIdentityStore{db: mock}
			record, status, err := identities.getBabyWithAccess(context.Background(), userID, babyID, readRoles)
			if (err != nil) != tt.wantErr {
				t.Fatalf("getBabyWithAccess() error = %v, wantErr %v", err, tt.wantErr)
			}
			if status != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, status)
			}
			if !tt.wantErr && (record.ID != babyID || record.HouseholdID != householdID) {
				t.Fatalf("unexpected record %+v", record)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestGetOrCreateUser(t *testing.T) {
	userQuery := `SELECT id, provider, "providerUid", phone, name FROM "User"`

	t.Run("existing user", func(t *testing.T) {
		mock := newMockPool(t)
		phone := "+821012345678"
		mock.ExpectQuery(userQuery).WithArgs("user-1").
			WillReturnRows(pgxmock.NewRows([]string{"id", "provider", "providerUid", "phone", "name"}).
				AddRow("user-1", "phone", nil, &phone, "Parent"))

		user, err := (&pgIdentityStore{db: mock}).getOrCreateUser(context.Background(), "user-1", jwt.MapClaims{})
		if err != nil {
			t.Fatalf("getOrCreateUser() error = %v", err)
		}
		if user.Name != "Parent" || user.Phone == nil || *user.Phone != phone {
			t.Fatalf("unexpected user %+v", user)
		}
	})

	t.Run("missing user without auto create", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(userQuery).WithArgs("user-2").WillReturnError(pgx.ErrNoRows)

		_, err := (&pgIdentityStore{db: mock}).getOrCreateUser(context.Background(), "user-2", jwt.MapClaims{})
		if err == nil || err.Error() != "User not found" {
			t.Fatalf("expected User not found, got %v", err)
		}
	})

	t.Run("auto create from claims", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(userQuery).WithArgs("0123456789abcdef").WillReturnError(pgx.ErrNoRows)
		mock.ExpectExec(`INSERT INTO "User"`).
			WithArgs("0123456789abcdef", "google", pgxmock.AnyArg(), pgxmock.AnyArg(), "user-01234567").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		user, err := (&pgIdentityStore{db: mock, autoCreate: true}).getOrCreateUser(
			context.Background(),
			"0123456789abcdef",
			jwt.MapClaims{"provider": "google", "provider_uid": "  g-1 "},
		)
		if err != nil {
			t.Fatalf("getOrCreateUser() error = %v", err)
		}
		if user.Provider != "google" || user.ProviderUID == nil || *user.ProviderUID != "g-1" {
			t.Fatalf("unexpected user %+v", user)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
	})
}

func TestProviderFromClaim(t *testing.T) {
	if providerFromClaim("apple") != "apple" {
		t.Fatalf("expected apple provider")
	}
	if providerFromClaim("facebook") != "phone" || providerFromClaim(nil) != "phone" {
		t.Fatalf("expected unknown providers to fall back to phone")
	}
}
