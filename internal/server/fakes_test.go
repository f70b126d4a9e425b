package server

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"babyai/apps/stats/internal/config"
	"babyai/apps/stats/internal/stats"
)

type fakeIdentities struct {
	// babyID -> userID -> role
	babies map[string]map[string]string
}

func (f *fakeIdentities) getOrCreateUser(_ context.Context, userID string, _ jwt.MapClaims) (AuthUser, error) {
	if userID == "unknown-user" {
		return AuthUser{}, errors.New("User not found")
	}
	return AuthUser{ID: userID, Provider: "phone", Name: "user-" + truncate(userID, 8)}, nil
}

func (f *fakeIdentities) getBabyWithAccess(_ context.Context, userID, babyID string, allowed map[string]struct{}) (babyRecord, int, error) {
	members, ok := f.babies[babyID]
	if !ok {
		return babyRecord{}, http.StatusNotFound, errors.New("Baby not found")
	}
	role, ok := members[userID]
	if !ok {
		return babyRecord{}, http.StatusForbidden, errors.New("Household access denied")
	}
	if !containsRole(allowed, role) {
		return babyRecord{}, http.StatusForbidden, errors.New("Insufficient role for this action")
	}
	return babyRecord{ID: babyID, HouseholdID: "household-1"}, http.StatusOK, nil
}

type memorySource struct {
	feedings   []stats.FeedingEvent
	sleeps     []stats.SleepSession
	excretions []stats.ExcretionEvent
	err        error
}

func (m *memorySource) FeedingEvents(_ context.Context, _ string, w stats.Window) ([]stats.FeedingEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	result := make([]stats.FeedingEvent, 0)
	for _, event := range m.feedings {
		if w.Contains(event.At) {
			result = append(result, event)
		}
	}
	return result, nil
}

func (m *memorySource) SleepSessions(_ context.Context, _ string, w stats.Window) ([]stats.SleepSession, error) {
	if m.err != nil {
		return nil, m.err
	}
	result := make([]stats.SleepSession, 0)
	for _, session := range m.sleeps {
		if w.Overlaps(session.Start, session.End) {
			result = append(result, session)
		}
	}
	return result, nil
}

func (m *memorySource) ExcretionEvents(_ context.Context, _ string, w stats.Window) ([]stats.ExcretionEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	result := make([]stats.ExcretionEvent, 0)
	for _, event := range m.excretions {
		if w.Contains(event.At) {
			result = append(result, event)
		}
	}
	return result, nil
}

type unitFixture struct {
	router     *gin.Engine
	identities *fakeIdentities
	source     *memorySource
	snapshots  int
}

func newUnitFixture(t *testing.T, opts ...stats.Option) *unitFixture {
	t.Helper()
	return newUnitFixtureWithConfig(t, baseTestConfig, opts...)
}

func newUnitFixtureWithConfig(t *testing.T, cfg config.Config, opts ...stats.Option) *unitFixture {
	t.Helper()
	fixture := &unitFixture{
		identities: &fakeIdentities{babies: map[string]map[string]string{}},
		source:     &memorySource{},
	}
	opts = append([]stats.Option{stats.WithLogger(discardLogger())}, opts...)
	app := &App{
		cfg:        cfg,
		engine:     stats.NewEngine(opts...),
		identities: fixture.identities,
		snapshot: func(_ context.Context, fn func(stats.EventSource) error) error {
			fixture.snapshots++
			return fn(fixture.source)
		},
		logger: discardLogger(),
	}
	fixture.router = app.Router()
	return fixture
}

func (f *unitFixture) grant(babyID, userID, role string) {
	members, ok := f.identities.babies[babyID]
	if !ok {
		members = map[string]string{}
		f.identities.babies[babyID] = members
	}
	members[userID] = role
}
