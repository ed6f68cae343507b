package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrent(t *testing.T) {
	t.Run("Carries values through the context", func(t *testing.T) {
		current := NewCurrent()
		current.Set(RequestIDKey, "abc-123")

		ctx := WithCurrent(context.Background(), current)

		assert.Equal(t, "abc-123", RequestID(ctx))
		assert.True(t, GetCurrent(ctx).Exists(RequestIDKey))
	})

	t.Run("Missing current", func(t *testing.T) {
		ctx := context.Background()

		_, ok := FromContext(ctx)

		assert.False(t, ok)
		assert.Empty(t, RequestID(ctx))
		assert.NotNil(t, GetCurrent(ctx))
	})

	t.Run("Typed getters", func(t *testing.T) {
		current := NewCurrent()
		current.Set("count", 3)

		_, ok := current.GetString("count")

		assert.False(t, ok)
		assert.Equal(t, map[string]any{"count": 3}, current.All())
	})
}
