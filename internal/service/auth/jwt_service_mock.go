package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MockJWTService is a configurable JWTService for handler and middleware tests.
type MockJWTService struct {
	GenerateTokenFunc      func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateTokenFunc      func(ctx context.Context, tokenString string) (*Claims, error)
	ValidateStateTokenFunc func(ctx context.Context, state string) (uuid.UUID, error)

	// Fixed fields for simple cases
	Token           string
	StateToken      string
	TokenError      error
	ValidationError error
	Claims          *Claims
}

var _ JWTService = (*MockJWTService)(nil)

// NewMockJWTService creates a mock that accepts every token for a random user.
func NewMockJWTService() *MockJWTService {
	now := time.Now()
	userID := uuid.New()

	return &MockJWTService{
		Token:      "mock-jwt-token",
		StateToken: "mock-state-token",
		Claims: &Claims{
			UserID:    userID,
			TokenType: TokenTypeAccess,
			Subject:   userID.String(),
			IssuedAt:  now,
			ExpiresAt: now.Add(1 * time.Hour),
			ID:        uuid.New().String(),
		},
	}
}

// GenerateToken implements JWTService.
func (m *MockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(ctx, userID)
	}
	return m.Token, m.TokenError
}

// ValidateToken implements JWTService.
func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	if m.ValidateTokenFunc != nil {
		return m.ValidateTokenFunc(ctx, tokenString)
	}
	return m.Claims, m.ValidationError
}

// GenerateStateToken implements JWTService.
func (m *MockJWTService) GenerateStateToken(_ context.Context, _ uuid.UUID) (string, error) {
	return m.StateToken, m.TokenError
}

// ValidateStateToken implements JWTService. Without a custom function it
// accepts StateToken for the mock's user.
func (m *MockJWTService) ValidateStateToken(ctx context.Context, state string) (uuid.UUID, error) {
	if m.ValidateStateTokenFunc != nil {
		return m.ValidateStateTokenFunc(ctx, state)
	}
	if state != m.StateToken || m.Claims == nil {
		return uuid.Nil, ErrInvalidState
	}
	return m.Claims.UserID, nil
}

// WithClaims sets custom claims and returns the mock.
func (m *MockJWTService) WithClaims(claims *Claims) *MockJWTService {
	m.Claims = claims
	return m
}

// WithValidationError sets a custom token validation error and returns the mock.
func (m *MockJWTService) WithValidationError(err error) *MockJWTService {
	m.ValidationError = err
	return m
}
