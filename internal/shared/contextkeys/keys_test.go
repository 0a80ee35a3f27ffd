package contextkeys

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextKey_String(t *testing.T) {
	assert.Equal(t, "tripack context key userID", UserIDKey.String())
}

func TestContextKeys_NoCollision(t *testing.T) {
	// A raw string key must not collide with the typed key.
	ctx := context.WithValue(context.Background(), UserIDKey, "u1")
	assert.Nil(t, ctx.Value("userID"))
	assert.Equal(t, "u1", ctx.Value(UserIDKey))
}

func TestContextKeys_Distinct(t *testing.T) {
	ctx := context.WithValue(context.Background(), UserIDKey, "u1")
	ctx = context.WithValue(ctx, TripIDKey, "t1")
	assert.Equal(t, "u1", ctx.Value(UserIDKey))
	assert.Equal(t, "t1", ctx.Value(TripIDKey))
}
