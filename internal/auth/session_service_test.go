package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Mathew1327/Construction-tracker/internal/database/testutil"
	"github.com/Mathew1327/Construction-tracker/internal/models"
	"github.com/Mathew1327/Construction-tracker/pkg/crypto"
)

func TestCreateSessionGeneratesTokens(t *testing.T) {
	db, svc, clock := setupSessionService(t)
	user := createTestUser(t, db, "foreman")

	tokens, session, err := svc.CreateSession(context.Background(), user.ID, SessionMetadata{
		IPAddress: "10.0.0.1 ",
		UserAgent: "unit-test",
		Email:     user.Email,
	})
	require.NoError(t, err)

	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)
	require.True(t, tokens.ExpiresAt.Equal(clock.Now().Add(time.Hour)))
	require.Equal(t, user.ID, session.UserID)
	require.Equal(t, "10.0.0.1", session.IPAddress)

	var reloaded models.Session
	require.NoError(t, db.Take(&reloaded, "id = ?", session.ID).Error)
	require.Equal(t, crypto.HashToken(tokens.RefreshToken), reloaded.TokenHash)
	require.NotEqual(t, tokens.RefreshToken, reloaded.TokenHash)
	require.True(t, reloaded.ExpiresAt.After(clock.Now()))

	require.NoError(t, svc.ValidateSession(context.Background(), session.ID))
}

func TestRefreshSessionRotatesToken(t *testing.T) {
	db, svc, clock := setupSessionService(t)
	user := createTestUser(t, db, "engineer")
	ctx := context.Background()

	tokens, session, err := svc.CreateSession(ctx, user.ID, SessionMetadata{})
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)

	newTokens, updated, err := svc.RefreshSession(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, tokens.RefreshToken, newTokens.RefreshToken)
	require.NotEqual(t, tokens.AccessToken, newTokens.AccessToken)
	require.Equal(t, session.ID, updated.ID)
	require.True(t, updated.LastUsedAt.Equal(clock.Now()))

	_, _, err = svc.RefreshSession(ctx, tokens.RefreshToken)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRefreshSessionExpired(t *testing.T) {
	db, svc, clock := setupSessionService(t)
	user := createTestUser(t, db, "expired")
	ctx := context.Background()

	tokens, session, err := svc.CreateSession(ctx, user.ID, SessionMetadata{})
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Session{}).
		Where("id = ?", session.ID).
		Update("expires_at", clock.Now().Add(-time.Minute)).Error)

	_, _, err = svc.RefreshSession(ctx, tokens.RefreshToken)
	require.ErrorIs(t, err, ErrSessionExpired)
	require.ErrorIs(t, svc.ValidateSession(ctx, session.ID), ErrSessionExpired)
}

func TestRevokeSessionPreventsRefresh(t *testing.T) {
	db, svc, _ := setupSessionService(t)
	user := createTestUser(t, db, "revoked")
	ctx := context.Background()

	tokens, session, err := svc.CreateSession(ctx, user.ID, SessionMetadata{})
	require.NoError(t, err)

	require.NoError(t, svc.RevokeSession(ctx, session.ID))
	require.ErrorIs(t, svc.RevokeSession(ctx, "non-existent"), ErrSessionNotFound)

	_, _, err = svc.RefreshSession(ctx, tokens.RefreshToken)
	require.ErrorIs(t, err, ErrSessionRevoked)
	require.ErrorIs(t, svc.ValidateSession(ctx, session.ID), ErrSessionRevoked)
}

func TestRevokeUserSessionsAndCleanup(t *testing.T) {
	db, svc, clock := setupSessionService(t)
	user := createTestUser(t, db, "many")
	other := createTestUser(t, db, "other")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, _, err := svc.CreateSession(ctx, user.ID, SessionMetadata{})
		require.NoError(t, err)
	}
	_, kept, err := svc.CreateSession(ctx, other.ID, SessionMetadata{})
	require.NoError(t, err)

	require.NoError(t, svc.RevokeUserSessions(ctx, user.ID))

	removed, err := svc.CleanupExpired(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, removed)

	clock.Advance(3 * time.Hour)
	removed, err = svc.CleanupExpired(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	require.ErrorIs(t, svc.ValidateSession(ctx, kept.ID), ErrSessionNotFound)
}

func setupSessionService(t *testing.T) (*gorm.DB, *SessionService, *testClock) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	clock := &testClock{current: time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)}

	jwtService, err := NewJWTService(JWTConfig{
		Secret:         "session-secret",
		AccessTokenTTL: time.Hour,
		Clock:          clock.Now,
	})
	require.NoError(t, err)

	sessionService, err := NewSessionService(db, jwtService, SessionConfig{
		RefreshTokenTTL: 2 * time.Hour,
		RefreshLength:   24,
		Clock:           clock.Now,
	})
	require.NoError(t, err)

	return db, sessionService, clock
}

func createTestUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()

	hashed, err := crypto.HashPassword("password")
	require.NoError(t, err)

	user := &models.User{
		FullName: name,
		Email:    name + "@site.test",
		Password: hashed,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

type testClock struct {
	current time.Time
}

func (c *testClock) Now() time.Time {
	return c.current
}

func (c *testClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}
