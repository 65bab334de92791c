// internal/cache/cache_test.go
package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/batisource/sourcing-backend/internal/models"
)

func TestTermKeyNormalizes(t *testing.T) {
	assert.Equal(t, "ciment", TermKey("  Ciment "))
	assert.Equal(t, TermKey("CIMENT"), TermKey("ciment"))
	assert.NotEqual(t, TermKey("ciment"), TermKey("béton"))
}

func TestImageKeyPrefix(t *testing.T) {
	assert.Equal(t, "img:https://x.example.com/a.jpg", ImageKey("https://x.example.com/a.jpg"))
}

func TestMemoryGetSet(t *testing.T) {
	store := NewMemory(time.Minute)
	ctx := context.Background()

	_, ok := store.Get(ctx, "missing")
	assert.False(t, ok)

	result := &models.TermResult{SearchQuery: "ciment", TotalFound: 3}
	store.Set(ctx, TermKey("ciment"), result)

	got, ok := store.Get(ctx, TermKey("ciment"))
	assert.True(t, ok)
	assert.Equal(t, "ciment", got.SearchQuery)
	assert.Equal(t, 3, got.TotalFound)
}

func TestMemoryExpiry(t *testing.T) {
	store := NewMemory(10 * time.Millisecond)
	ctx := context.Background()

	store.Set(ctx, "k", &models.TermResult{SearchQuery: "k"})

	_, ok := store.Get(ctx, "k")
	assert.True(t, ok)

	time.Sleep(25 * time.Millisecond)

	_, ok = store.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryZeroTTLNeverExpires(t *testing.T) {
	store := NewMemory(0)
	ctx := context.Background()

	store.Set(ctx, "k", &models.TermResult{SearchQuery: "k"})

	time.Sleep(10 * time.Millisecond)

	_, ok := store.Get(ctx, "k")
	assert.True(t, ok)
}
