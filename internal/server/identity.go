package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	roleOwner        = "OWNER"
	roleParent       = "PARENT"
	roleFamilyViewer = "FAMILY_VIEWER"
	roleCaregiver    = "CAREGIVER"
)

var readRoles = map[string]struct{}{
	roleOwner:        {},
	roleParent:       {},
	roleCaregiver:    {},
	roleFamilyViewer: {},
}

type dbQuerier interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type babyRecord struct {
	ID          string
	HouseholdID string
}

type identityStore interface {
	getOrCreateUser(ctx context.Context, userID string, claims jwt.MapClaims) (AuthUser, error)
	getBabyWithAccess(ctx context.Context, userID, babyID string, allowed map[string]struct{}) (babyRecord, int, error)
}

type pgIdentityStore struct {
	db         dbQuerier
	autoCreate bool
}

func providerFromClaim(raw any) string {
	if s, ok := raw.(string); ok {
		switch s {
		case "apple", "google", "phone":
			return s
		}
	}
	return "phone"
}

func toOptionalString(raw any) *string {
	if s, ok := raw.(string); ok {
		trimmed := strings.TrimSpace(s)
		if trimmed != "" {
			return &trimmed
		}
	}
	return nil
}

func (s *pgIdentityStore) getOrCreateUser(ctx context.Context, userID string, claims jwt.MapClaims) (AuthUser, error) {
	user := AuthUser{}
	var providerUID *string
	var phone *string

	err := s.db.QueryRow(
		ctx,
		`SELECT id, provider, "providerUid", phone, name FROM "User" WHERE id = $1`,
		userID,
	).Scan(&user.ID, &user.Provider, &providerUID, &phone, &user.Name)
	if err == nil {
		user.ProviderUID = providerUID
		user.Phone = phone
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return AuthUser{}, err
	}
	if !s.autoCreate {
		return AuthUser{}, errors.New("User not found")
	}

	provider := providerFromClaim(claims["provider"])
	providerUID = toOptionalString(claims["provider_uid"])
	phone = toOptionalString(claims["phone"])

	name := ""
	if rawName, ok := claims["name"].(string); ok {
		name = strings.TrimSpace(rawName)
	}
	if name == "" {
		name = fmt.Sprintf("user-%s", truncate(userID, 8))
	}

	if _, err := s.db.Exec(
		ctx,
		`INSERT INTO "User" (id, provider, "providerUid", phone, name, "createdAt")
		 VALUES ($1, $2, $3, $4, $5, NOW())`,
		userID,
		provider,
		providerUID,
		phone,
		name,
	); err != nil {
		return AuthUser{}, err
	}

	return AuthUser{
		ID:          userID,
		Provider:    provider,
		ProviderUID: providerUID,
		Phone:       phone,
		Name:        name,
	}, nil
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit]
}

func containsRole(allowed map[string]struct{}, role string) bool {
	_, ok := allowed[role]
	return ok
}

func (s *pgIdentityStore) getHouseholdRole(ctx context.Context, userID, householdID string) (string, int, error) {
	var ownerUserID string
	err := s.db.QueryRow(
		ctx,
		`SELECT "ownerUserId" FROM "Household" WHERE id = $1`,
		householdID,
	).Scan(&ownerUserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", http.StatusNotFound, errors.New("Household not found")
	}
	if err != nil {
		return "", http.StatusInternalServerError, err
	}
	if ownerUserID == userID {
		return roleOwner, http.StatusOK, nil
	}

	var role string
	err = s.db.QueryRow(
		ctx,
		`SELECT role FROM "HouseholdMember"
		 WHERE "householdId" = $1 AND "userId" = $2 AND status = 'ACTIVE'
		 LIMIT 1`,
		householdID,
		userID,
	).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", http.StatusForbidden, errors.New("Household access denied")
	}
	if err != nil {
		return "", http.StatusInternalServerError, err
	}
	return role, http.StatusOK, nil
}

func (s *pgIdentityStore) getBabyWithAccess(ctx context.Context, userID, babyID string, allowed map[string]struct{}) (babyRecord, int, error) {
	record := babyRecord{}
	err := s.db.QueryRow(
		ctx,
		`SELECT id, "householdId" FROM "Baby" WHERE id = $1`,
		babyID,
	).Scan(&record.ID, &record.HouseholdID)
	if errors.Is(err, pgx.ErrNoRows) {
		return babyRecord{}, http.StatusNotFound, errors.New("Baby not found")
	}
	if err != nil {
		return babyRecord{}, http.StatusInternalServerError, err
	}

	role, statusCode, err := s.getHouseholdRole(ctx, userID, record.HouseholdID)
	if err != nil {
		return babyRecord{}, statusCode, err
	}
	if !containsRole(allowed, role) {
		return babyRecord{}, http.StatusForbidden, errors.New("Insufficient role for this action")
	}
	return record, http.StatusOK, nil
}
