package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aicryptogpt/crypto-radar-bot/internal/models"
)

func TestMemoryStore_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	first := models.Session{Symbol: "BTC", Price: 64000, Lang: "en", CreatedAt: time.Now()}
	second := models.Session{Symbol: "ETH", Price: 3200, Lang: "en", CreatedAt: time.Now()}

	require.NoError(t, store.Put(ctx, 42, first))
	require.NoError(t, store.Put(ctx, 42, second))

	got, ok, err := store.Get(ctx, 42)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ETH", got.Symbol)
	assert.Equal(t, 3200.0, got.Price)
}

func TestMemoryStore_GetAbsent(t *testing.T) {
	store := NewMemoryStore(0)

	_, ok, err := store.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_Evict(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	require.NoError(t, store.Put(ctx, 42, models.Session{Symbol: "BTC", CreatedAt: time.Now()}))
	require.NoError(t, store.Evict(ctx, 42))

	_, ok, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_ExpiredSessionBehavesLikeAbsent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	stale := models.Session{Symbol: "BTC", CreatedAt: time.Now().Add(-2 * time.Hour)}
	require.NoError(t, store.Put(ctx, 42, stale))

	_, ok, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_ZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	old := models.Session{Symbol: "BTC", CreatedAt: time.Now().Add(-240 * time.Hour)}
	require.NoError(t, store.Put(ctx, 42, old))

	_, ok, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStore_IsolatedPerUser(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	require.NoError(t, store.Put(ctx, 1, models.Session{Symbol: "BTC", CreatedAt: time.Now()}))
	require.NoError(t, store.Put(ctx, 2, models.Session{Symbol: "SOL", CreatedAt: time.Now()}))

	got, ok, err := store.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "BTC", got.Symbol)
}
