package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Token types carried in the "type" claim.
const (
	TokenTypeAccess = "access"
	TokenTypeState  = "oauth_state"
)

// StateTokenLifetime bounds how long a GitHub authorization may take.
const StateTokenLifetime = 10 * time.Minute

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for userID.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken validates an access token and extracts its claims.
	// Returns ErrExpiredToken, ErrInvalidToken or ErrWrongTokenType on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateStateToken creates the OAuth state parameter for userID.
	// It expires after StateTokenLifetime.
	GenerateStateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateStateToken returns the user an OAuth state parameter was
	// issued to. Any failure is reported as ErrInvalidState.
	ValidateStateToken(ctx context.Context, state string) (uuid.UUID, error)
}

// Claims represents the custom claims structure for the JWT tokens.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID `json:"uid,omitempty"`

	// TokenType is TokenTypeAccess or TokenTypeState.
	TokenType string `json:"type,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
