package github

import (
	"errors"
	"fmt"
)

var (
	// ErrItemNotFound is returned when an issue or pull request does not exist
	// or is not visible to the token.
	ErrItemNotFound = errors.New("github item not found")

	// ErrUnauthorized is returned when GitHub rejects the token.
	ErrUnauthorized = errors.New("github authorization failed")

	// ErrNotConfigured is returned by OAuth operations when no client ID is set.
	ErrNotConfigured = errors.New("github oauth is not configured")

	// ErrExchangeFailed is returned when an authorization code cannot be
	// exchanged for a token.
	ErrExchangeFailed = errors.New("github oauth exchange failed")
)

// APIError is returned for unexpected GitHub responses.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("github api error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("github api error (status %d): %s", e.StatusCode, e.Message)
}
