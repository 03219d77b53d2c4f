package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/exceleasy/pkg/cache"
	"github.com/yeisme/exceleasy/pkg/internal/storage/kv"
)

type replay struct {
	FileID string `json:"fileId"`
	Owner  string `json:"owner"`
}

func newCache(t testing.TB, ns string) (*cache.Cache, kv.KVStore) {
	t.Helper()

	store, err := kv.NewKVStore(context.Background(), kv.KVTypeMemory, nil)
	require.NoError(t, err)

	return cache.New(store, ns), store
}

func TestKeyIsStableAndNamespaced(t *testing.T) {
	c, _ := newCache(t, "idem")

	k1 := c.Key("alice", "abc")
	assert.Equal(t, k1, c.Key("alice", "abc"))
	assert.NotEqual(t, k1, c.Key("alic", "eabc"), "parts are separated before hashing")
	assert.Regexp(t, `^idem\.[0-9a-f]+$`, k1)
}

func TestLookupMissIsNotAnError(t *testing.T) {
	c, _ := newCache(t, "idem")
	ctx := context.Background()

	_, found, err := cache.Lookup[replay](ctx, c, c.Key("nobody"))
	require.NoError(t, err)
	assert.False(t, found)

	_, err = cache.Get[replay](ctx, c, c.Key("nobody"))
	assert.ErrorIs(t, err, kv.ErrKeyNotFound)
}

func TestSetLookupDelete(t *testing.T) {
	c, _ := newCache(t, "idem")
	ctx := context.Background()
	key := c.Key("alice", "k1")

	require.NoError(t, cache.Set(ctx, c, key, replay{FileID: "01HX", Owner: "alice"}, time.Hour))

	got, found, err := cache.Lookup[replay](ctx, c, key)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "01HX", got.FileID)

	require.NoError(t, c.Delete(ctx, key))

	ok, err := c.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLookupCorruptValue(t *testing.T) {
	c, store := newCache(t, "idem")
	ctx := context.Background()
	key := c.Key("x")

	require.NoError(t, store.Set(ctx, key, []byte("{not json"), 0))

	_, found, err := cache.Lookup[replay](ctx, c, key)
	require.Error(t, err)
	assert.False(t, found)
}

func TestGetOrSet(t *testing.T) {
	c, _ := newCache(t, "n")
	ctx := context.Background()
	calls := 0

	getter := func() (int, error) {
		calls++
		return 42, nil
	}

	for range 3 {
		v, err := cache.GetOrSet(ctx, c, c.Key("answer"), getter, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	}

	assert.Equal(t, 1, calls)

	boom := errors.New("boom")
	_, err := cache.GetOrSet(ctx, c, c.Key("other"), func() (int, error) { return 0, boom }, time.Minute)
	assert.ErrorIs(t, err, boom)
}

func TestClearOnlyTouchesNamespace(t *testing.T) {
	store, err := kv.NewKVStore(context.Background(), kv.KVTypeMemory, nil)
	require.NoError(t, err)

	ctx := context.Background()
	a := cache.New(store, "a")
	b := cache.New(store, "b")

	require.NoError(t, cache.Set(ctx, a, a.Key("1"), 1, 0))
	require.NoError(t, cache.Set(ctx, b, b.Key("1"), 1, 0))

	require.NoError(t, a.Clear(ctx))

	_, found, _ := cache.Lookup[int](ctx, a, a.Key("1"))
	assert.False(t, found)

	_, found, _ = cache.Lookup[int](ctx, b, b.Key("1"))
	assert.True(t, found)
}

func BenchmarkSetLookup(b *testing.B) {
	c, _ := newCache(b, "bench")
	ctx := context.Background()
	v := replay{FileID: "01HXYZ", Owner: "alice@example.com"}

	b.ReportAllocs()

	for i := 0; b.Loop(); i++ {
		key := c.Key("alice", string(rune('a'+i%26)))
		if err := cache.Set(ctx, c, key, v, time.Minute); err != nil {
			b.Fatal(err)
		}

		if _, _, err := cache.Lookup[replay](ctx, c, key); err != nil {
			b.Fatal(err)
		}
	}
}
