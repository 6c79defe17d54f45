package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetGetDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "wineCart")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "wineCart", []byte(`[]`)))
	v, err := store.Get(ctx, "wineCart")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(v))

	require.NoError(t, store.Delete(ctx, "wineCart"))
	require.NoError(t, store.Delete(ctx, "wineCart"))
	_, err = store.Get(ctx, "wineCart")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore_ValuesAreCopied(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", value))
	value[0] = 'x'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'y'
	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Set(ctx, "k", nil), context.Canceled)
	assert.ErrorIs(t, store.Ping(ctx), context.Canceled)
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Set(ctx, "k", []byte("v"))
			_, _ = store.Get(ctx, "k")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, store.Len())
}

func TestScoped_NamespacesKeys(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	alice := NewScoped(store, "alice")
	bob := NewScoped(store, "bob")

	require.NoError(t, alice.Set(ctx, "wineCart", []byte("a")))

	_, err := bob.Get(ctx, "wineCart")
	assert.ErrorIs(t, err, ErrNotFound)

	raw, err := store.Get(ctx, "session:alice:wineCart")
	require.NoError(t, err)
	assert.Equal(t, "a", string(raw))

	require.NoError(t, alice.Delete(ctx, "wineCart"))
	assert.Equal(t, 0, store.Len())
}
