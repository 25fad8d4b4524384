package providers

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/wasmatrix/wasmatrix/core"
)

// KVStore is the storage backend of the key-value provider.
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
}

// MemoryKV is the in-process KVStore used when no Redis backend is
// configured.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryKV returns an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	delete(m.data, key)
	return ok, nil
}

func (m *MemoryKV) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryKV) Exists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *MemoryKV) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]string)
	return nil
}

// redisKeyspace namespaces provider keys so unrelated data in the same
// Redis database is never touched.
const redisKeyspace = "wasmatrix:kv:"

// RedisKV is a KVStore backed by Redis.
type RedisKV struct {
	client *redis.Client
}

// NewRedisKV returns a store using the given client.
func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{client: client}
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, redisKeyspace+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, redisKeyspace+key, value, 0).Err()
}

func (r *RedisKV) Delete(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Del(ctx, redisKeyspace+key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RedisKV) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, redisKeyspace+prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), redisKeyspace))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

func (r *RedisKV) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, redisKeyspace+key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RedisKV) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, redisKeyspace+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// KVProvider serves kv capability invocations against a KVStore.
type KVProvider struct {
	store KVStore
}

// NewKVProvider returns a provider over the given store.
func NewKVProvider(store KVStore) *KVProvider {
	return &KVProvider{store: store}
}

func (p *KVProvider) Type() core.ProviderType { return core.ProviderKV }

func (p *KVProvider) Invoke(ctx context.Context, inv Invocation) (map[string]any, error) {
	switch inv.Operation {
	case "get":
		key, err := stringParam(inv.Params, "key")
		if err != nil {
			return nil, err
		}
		value, found, err := p.store.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		return map[string]any{"key": key, "value": value, "found": found}, nil

	case "set":
		key, err := stringParam(inv.Params, "key")
		if err != nil {
			return nil, err
		}
		value, err := stringParam(inv.Params, "value")
		if err != nil {
			return nil, err
		}
		if err := p.store.Set(ctx, key, value); err != nil {
			return nil, err
		}
		return map[string]any{"key": key, "stored": true}, nil

	case "delete":
		key, err := stringParam(inv.Params, "key")
		if err != nil {
			return nil, err
		}
		deleted, err := p.store.Delete(ctx, key)
		if err != nil {
			return nil, err
		}
		return map[string]any{"key": key, "deleted": deleted}, nil

	case "list":
		prefix := ""
		if _, ok := inv.Params["prefix"]; ok {
			p, err := stringParam(inv.Params, "prefix")
			if err != nil {
				return nil, err
			}
			prefix = p
		}
		keys, err := p.store.List(ctx, prefix)
		if err != nil {
			return nil, err
		}
		if keys == nil {
			keys = []string{}
		}
		return map[string]any{"keys": keys}, nil

	case "exists":
		key, err := stringParam(inv.Params, "key")
		if err != nil {
			return nil, err
		}
		exists, err := p.store.Exists(ctx, key)
		if err != nil {
			return nil, err
		}
		return map[string]any{"key": key, "exists": exists}, nil

	case "clear":
		if err := p.store.Clear(ctx); err != nil {
			return nil, err
		}
		return map[string]any{"cleared": true}, nil

	default:
		return nil, &UnknownOperationError{Provider: core.ProviderKV, Operation: inv.Operation}
	}
}

// UnknownOperationError reports an operation the provider does not serve.
type UnknownOperationError struct {
	Provider  core.ProviderType
	Operation string
}

func (e *UnknownOperationError) Error() string {
	return "unknown " + e.Provider.String() + " operation " + e.Operation
}
