package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrateekJaiswal16/taskflow-api/internal/config"
	"github.com/PrateekJaiswal16/taskflow-api/internal/domain"
)

const testSecret = "test-secret-that-is-at-least-32-chars!!"

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:            testSecret,
		TokenLifetimeMinutes: 60,
	}
}

func TestNewJWTService(t *testing.T) {
	_, err := NewJWTService(testAuthConfig())
	assert.NoError(t, err)

	_, err = NewJWTService(config.AuthConfig{JWTSecret: "too short"})
	assert.Error(t, err, "short secrets must be rejected")
}

func TestJWTRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, err := NewJWTService(testAuthConfig())
	require.NoError(t, err)

	userID := uuid.New()
	token, err := svc.GenerateToken(ctx, userID, domain.RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)

	actor := claims.Actor()
	assert.Equal(t, userID, actor.ID)
	assert.True(t, actor.IsAdmin())
}

func TestJWTExpiry(t *testing.T) {
	ctx := context.Background()

	issued := time.Now()
	svc := &hmacJWTService{
		signingKey:    []byte(testSecret),
		tokenLifetime: 10 * time.Minute,
		timeFunc:      func() time.Time { return issued },
		clockSkew:     time.Minute,
	}

	userID := uuid.New()
	token, err := svc.GenerateToken(ctx, userID, domain.RoleUser)
	require.NoError(t, err)

	// Still valid just before expiry plus skew
	svc.timeFunc = func() time.Time { return issued.Add(10 * time.Minute) }
	_, err = svc.ValidateToken(ctx, token)
	assert.NoError(t, err, "token within skew should validate")

	// Expired well past the lifetime
	svc.timeFunc = func() time.Time { return issued.Add(15 * time.Minute) }
	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTRejectsTampering(t *testing.T) {
	ctx := context.Background()
	svc, err := NewJWTService(testAuthConfig())
	require.NoError(t, err)

	otherCfg := testAuthConfig()
	otherCfg.JWTSecret = "another-secret-that-is-32-chars-long!!!"
	otherSvc, err := NewJWTService(otherCfg)
	require.NoError(t, err)

	token, err := otherSvc.GenerateToken(ctx, uuid.New(), domain.RoleUser)
	require.NoError(t, err)

	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken, "token signed with a different key must fail")

	_, err = svc.ValidateToken(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTRejectsUnknownRole(t *testing.T) {
	ctx := context.Background()

	svc := &hmacJWTService{
		signingKey:    []byte(testSecret),
		tokenLifetime: 10 * time.Minute,
		timeFunc:      time.Now,
		clockSkew:     time.Minute,
	}

	token, err := svc.GenerateToken(ctx, uuid.New(), domain.Role("superuser"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken, "claims with an undefined role must fail")
}
