package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Expiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "surahs", []byte("[]"), time.Hour))
	value, ok, err := store.Get(ctx, "surahs")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[]", string(value))

	now = now.Add(time.Hour)
	_, ok, err = store.Get(ctx, "surahs")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_SetEvictsExpiredEntries(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "hadith:bukhari:1", []byte("{}"), time.Minute))
	require.NoError(t, store.Set(ctx, "hadith:bukhari:2", []byte("{}"), time.Hour))
	require.Equal(t, 2, store.Len())

	now = now.Add(30 * time.Second)
	require.NoError(t, store.Set(ctx, "hadith:bukhari:3", []byte("{}"), time.Minute))
	assert.Equal(t, 3, store.Len())

	now = now.Add(2 * time.Minute)
	require.NoError(t, store.Set(ctx, "hadith:muslim:1", []byte("{}"), time.Hour))
	assert.Equal(t, 2, store.Len())

	_, ok, err := store.Get(ctx, "hadith:bukhari:2")
	require.NoError(t, err)
	assert.True(t, ok)
}

type brokenStore struct{ calls int }

func (b *brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	b.calls++
	return nil, false, errors.New("dial tcp: connection refused")
}

func (b *brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	b.calls++
	return errors.New("dial tcp: connection refused")
}

func TestTiered_FallsBackWhileRemoteIsDown(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	remote := &brokenStore{}
	tiered := NewTiered(nil, "", func() time.Time { return now })
	tiered.remote = remote
	ctx := context.Background()

	require.NoError(t, tiered.Set(ctx, "k", []byte("v"), time.Hour))
	assert.Equal(t, 1, remote.calls)

	value, ok, err := tiered.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", string(value))
	assert.Equal(t, 1, remote.calls)

	now = now.Add(redisBreakerDuration)
	_, _, err = tiered.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 2, remote.calls)
}
