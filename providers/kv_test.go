package providers

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKVStores(t *testing.T) map[string]KVStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return map[string]KVStore{
		"memory": NewMemoryKV(),
		"redis":  NewRedisKV(client),
	}
}

func TestKVStoreRoundTrip(t *testing.T) {
	for name, store := range testKVStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, found, err := store.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, store.Set(ctx, "a", "1"))
			require.NoError(t, store.Set(ctx, "ab", "2"))
			require.NoError(t, store.Set(ctx, "b", "3"))

			v, found, err := store.Get(ctx, "a")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, "1", v)

			exists, err := store.Exists(ctx, "ab")
			require.NoError(t, err)
			assert.True(t, exists)

			keys, err := store.List(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "ab"}, keys)

			deleted, err := store.Delete(ctx, "a")
			require.NoError(t, err)
			assert.True(t, deleted)
			deleted, err = store.Delete(ctx, "a")
			require.NoError(t, err)
			assert.False(t, deleted)

			require.NoError(t, store.Clear(ctx))
			keys, err = store.List(ctx, "")
			require.NoError(t, err)
			assert.Empty(t, keys)
		})
	}
}

func TestRedisKVNamespacesKeys(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	ctx := context.Background()
	store := NewRedisKV(client)
	require.NoError(t, store.Set(ctx, "orders", "open"))

	// The raw Redis key carries the provider keyspace prefix, and keys
	// outside it are invisible to the store.
	got, err := mr.Get("wasmatrix:kv:orders")
	require.NoError(t, err)
	assert.Equal(t, "open", got)

	require.NoError(t, mr.Set("unrelated", "x"))
	keys, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"orders"}, keys)

	require.NoError(t, store.Clear(ctx))
	v, err := mr.Get("unrelated")
	require.NoError(t, err)
	assert.Equal(t, "x", v)
}

func TestKVProviderOperations(t *testing.T) {
	ctx := context.Background()
	p := NewKVProvider(NewMemoryKV())

	res, err := p.Invoke(ctx, Invocation{Operation: "set", Params: map[string]any{"key": "a", "value": "1"}})
	require.NoError(t, err)
	assert.Equal(t, true, res["stored"])

	res, err = p.Invoke(ctx, Invocation{Operation: "get", Params: map[string]any{"key": "a"}})
	require.NoError(t, err)
	assert.Equal(t, "1", res["value"])
	assert.Equal(t, true, res["found"])

	res, err = p.Invoke(ctx, Invocation{Operation: "get", Params: map[string]any{"key": "missing"}})
	require.NoError(t, err)
	assert.Equal(t, false, res["found"])

	res, err = p.Invoke(ctx, Invocation{Operation: "exists", Params: map[string]any{"key": "a"}})
	require.NoError(t, err)
	assert.Equal(t, true, res["exists"])

	res, err = p.Invoke(ctx, Invocation{Operation: "list", Params: map[string]any{}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, res["keys"])

	res, err = p.Invoke(ctx, Invocation{Operation: "delete", Params: map[string]any{"key": "a"}})
	require.NoError(t, err)
	assert.Equal(t, true, res["deleted"])

	res, err = p.Invoke(ctx, Invocation{Operation: "clear", Params: map[string]any{}})
	require.NoError(t, err)
	assert.Equal(t, true, res["cleared"])
}

func TestKVProviderRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	p := NewKVProvider(NewMemoryKV())

	_, err := p.Invoke(ctx, Invocation{Operation: "get", Params: map[string]any{}})
	require.Error(t, err)

	_, err = p.Invoke(ctx, Invocation{Operation: "drop", Params: map[string]any{"key": "a"}})
	var unknown *UnknownOperationError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "drop", unknown.Operation)
}
