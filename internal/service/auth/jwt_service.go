// Package auth provides token issuance/validation and password verification.
package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/PrateekJaiswal16/taskflow-api/internal/domain"
)

// Common authentication errors.
var (
	// ErrInvalidToken is returned when a token fails signature or claim
	// validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a token is past its expiry.
	ErrExpiredToken = errors.New("token expired")
)

// Claims is the validated content of an access token: the actor's identity
// and role.
type Claims struct {
	UserID uuid.UUID
	Role   domain.Role
}

// Actor converts the claims into the domain actor passed to services.
func (c *Claims) Actor() domain.Actor {
	return domain.Actor{ID: c.UserID, Role: c.Role}
}

// JWTService issues and validates access tokens.
type JWTService interface {
	// GenerateToken creates a signed access token carrying the user's ID
	// and role.
	GenerateToken(ctx context.Context, userID uuid.UUID, role domain.Role) (string, error)

	// ValidateToken verifies a token and returns its claims.
	// Returns ErrExpiredToken or ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}
