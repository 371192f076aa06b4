package shared

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGetTraceID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	traced := SetTraceID(ctx)

	traceID := GetTraceID(traced)
	assert.Len(t, traceID, 32)
	_, err := hex.DecodeString(traceID)
	assert.NoError(t, err)
	assert.Empty(t, GetTraceID(ctx), "original context must be unchanged")
}

func TestGetTraceIDWrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), TraceIDKey, 123)
	assert.Empty(t, GetTraceID(ctx))
}

func TestGenerateTraceIDUnique(t *testing.T) {
	seen := make(map[string]bool, 500)
	for range 500 {
		id := generateTraceID()
		require.Len(t, id, 32)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestFallbackTraceID(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 42, time.UTC)

	id := fallbackTraceID(now)

	assert.Len(t, id, 32)
	assert.NotEqual(t, id, fallbackTraceID(now.Add(time.Nanosecond)))
}

func TestUserIDFromContext(t *testing.T) {
	userID := uuid.New()

	got, ok := UserIDFromContext(WithUserID(context.Background(), userID))
	assert.True(t, ok)
	assert.Equal(t, userID, got)

	_, ok = UserIDFromContext(WithUserID(context.Background(), uuid.Nil))
	assert.False(t, ok)

	_, ok = UserIDFromContext(context.WithValue(context.Background(), UserIDContextKey, "not-a-uuid"))
	assert.False(t, ok)
}
