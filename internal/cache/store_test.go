package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniStore(t *testing.T) (*miniredis.Miniredis, *Store) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb, err := NewClient(mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, NewStore(rdb)
}

type page struct {
	Items []string `json:"items"`
}

func TestStore_AsideCachesFetchResult(t *testing.T) {
	mr, store := newMiniStore(t)
	ctx := context.Background()
	calls := 0
	fetch := func(dest *page) func() error {
		return func() error {
			calls++
			dest.Items = []string{"a", "b"}
			return nil
		}
	}

	var first page
	hit, err := store.Aside(ctx, "k", &first, time.Minute, fetch(&first))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.True(t, mr.Exists("k"))

	var second page
	hit, err = store.Aside(ctx, "k", &second, time.Minute, fetch(&second))
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"a", "b"}, second.Items)
	assert.Equal(t, 1, calls)

	mr.FastForward(2 * time.Minute)
	var third page
	hit, err = store.Aside(ctx, "k", &third, time.Minute, fetch(&third))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, calls)
}

func TestStore_AsidePropagatesFetchError(t *testing.T) {
	_, store := newMiniStore(t)
	boom := errors.New("boom")

	var dest page
	_, err := store.Aside(context.Background(), "k", &dest, time.Minute, func() error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestStore_NilClientIsAlwaysMiss(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	assert.False(t, store.Enabled())

	calls := 0
	var dest page
	for i := 0; i < 2; i++ {
		hit, err := store.Aside(ctx, "k", &dest, time.Minute, func() error { calls++; return nil })
		require.NoError(t, err)
		assert.False(t, hit)
	}
	assert.Equal(t, 2, calls)
	assert.NoError(t, store.InvalidateIndex(ctx))
	assert.False(t, store.IsRevoked(ctx, "jti"))
}

func TestStore_IndexVersionBumps(t *testing.T) {
	_, store := newMiniStore(t)
	ctx := context.Background()

	v, err := store.IndexVersion(ctx)
	require.NoError(t, err)
	assert.Zero(t, v)

	require.NoError(t, store.InvalidateIndex(ctx))
	v, err = store.IndexVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	assert.NotEqual(t, IndexPageKey(0, 1), IndexPageKey(v, 1))
}

func TestStore_Revoke(t *testing.T) {
	mr, store := newMiniStore(t)
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "abc", time.Hour))
	assert.True(t, store.IsRevoked(ctx, "abc"))
	assert.False(t, store.IsRevoked(ctx, "other"))

	mr.FastForward(2 * time.Hour)
	assert.False(t, store.IsRevoked(ctx, "abc"))
}
