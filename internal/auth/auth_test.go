package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zuvomo/internal/cache"
	"zuvomo/internal/model"
)

func testUser() *model.User {
	return &model.User{ID: uuid.New(), Email: "founder@zuvomo.com", Role: model.RoleProjectOwner}
}

func TestJWTService_AccessToken(t *testing.T) {
	svc := NewJWTService("access-secret", "refresh-secret")
	user := testUser()

	token, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, model.RoleProjectOwner, claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.Type)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTService_TokensAreNotInterchangeable(t *testing.T) {
	svc := NewJWTService("access-secret", "refresh-secret")
	user := testUser()

	access, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	_, refresh, err := svc.GenerateRefreshToken(user)
	require.NoError(t, err)

	_, err = svc.ValidateRefreshToken(access)
	assert.Error(t, err)
	_, err = svc.ValidateAccessToken(refresh)
	assert.Error(t, err)
}

func TestJWTService_SameSecretStillChecksType(t *testing.T) {
	svc := NewJWTService("shared", "shared")
	user := testUser()

	_, refresh, err := svc.GenerateRefreshToken(user)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestJWTService_Expired(t *testing.T) {
	svc := NewJWTService("access-secret", "refresh-secret")
	issued := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issued }

	token, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenStore_RefreshRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewTokenStore(cache.NewMemory())
	userID := uuid.New()

	require.NoError(t, store.StoreRefreshToken(ctx, "jti-1", userID, "a@b.c", time.Hour))

	gotID, gotEmail, err := store.GetRefreshToken(ctx, "jti-1")
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, "a@b.c", gotEmail)

	require.NoError(t, store.DeleteRefreshToken(ctx, "jti-1"))
	_, _, err = store.GetRefreshToken(ctx, "jti-1")
	assert.Error(t, err)
}

func TestTokenStore_Blacklist(t *testing.T) {
	ctx := context.Background()
	store := NewTokenStore(cache.NewMemory())

	listed, _ := store.IsAccessTokenBlacklisted(ctx, "jti-2")
	assert.False(t, listed)

	require.NoError(t, store.BlacklistAccessToken(ctx, "jti-2", time.Minute))
	listed, _ = store.IsAccessTokenBlacklisted(ctx, "jti-2")
	assert.True(t, listed)
}
