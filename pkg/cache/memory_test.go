package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedUser struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "user:1", cachedUser{Name: "Jane", Phone: "+15550001"}, 0))

	var got cachedUser
	require.NoError(t, c.Get(ctx, "user:1", &got))
	assert.Equal(t, "Jane", got.Name)
	assert.Equal(t, "+15550001", got.Phone)

	ok, err := c.Exists(ctx, "user:1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryCache_Miss(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	var got cachedUser
	err := c.Get(context.Background(), "absent", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_Delete(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", 1, 0))
	require.NoError(t, c.Set(ctx, "b", 2, 0))
	require.NoError(t, c.Delete(ctx, "a", "b"))

	assert.Equal(t, 0, c.ItemCount())
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", "v", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	var got string
	assert.ErrorIs(t, c.Get(ctx, "short", &got), ErrCacheMiss)
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	ctx := context.Background()

	original := cachedUser{Name: "Jane"}
	require.NoError(t, c.Set(ctx, "u", &original, 0))
	original.Name = "Changed"

	var got cachedUser
	require.NoError(t, c.Get(ctx, "u", &got))
	assert.Equal(t, "Jane", got.Name)
}
