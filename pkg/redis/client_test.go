package redis

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/printshop-backend/pkg/config"
)

func TestSnapshotLifecycle(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	key := client.SnapshotKey("product-1")
	require.NoError(t, client.Set(ctx, key, `{"version":3}`, 10*time.Minute))
	assert.Equal(t, 10*time.Minute, mock.ttls[key])

	payload, err := client.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"version":3}`, payload)

	require.NoError(t, client.Del(ctx, key))
	_, err = client.Get(ctx, key)
	assert.True(t, IsNil(err), "expected redis.Nil after delete, got %v", err)
}

func TestSetNXOnlyOnce(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}
	key := client.IdempotencyKey("POST|/api/admin/v1/products", "abc")

	ok, err := client.SetNX(ctx, key, "pending", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "first reservation should win")

	ok, err = client.SetNX(ctx, key, "pending", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second reservation should lose")
}

func TestDelWithoutKeysSkipsRoundTrip(t *testing.T) {
	mock := newMockCmdable()
	client := &Client{store: mock}

	require.NoError(t, client.Del(context.Background()))
	assert.Zero(t, mock.delCalls)
}

func TestIncrAndMGet(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}
	gen := client.GenerationKey("product-1")
	snap := client.SnapshotKey("product-1")

	n, err := client.Incr(ctx, gen)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = client.Incr(ctx, gen)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	values, err := client.MGet(ctx, snap, gen)
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Nil(t, values[0], "missing keys come back as nil")
	assert.Equal(t, "2", values[1])

	values, err = client.MGet(ctx)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestUninitializedClient(t *testing.T) {
	ctx := context.Background()
	client := &Client{}

	assert.ErrorIs(t, client.Ping(ctx), ErrNotInitialized)
	assert.ErrorIs(t, client.Set(ctx, "k", "v", 0), ErrNotInitialized)
	_, err := client.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = client.Incr(ctx, "k")
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = client.MGet(ctx, "k")
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.NoError(t, client.Close())

	var nilClient *Client
	assert.ErrorIs(t, nilClient.Del(ctx, "k"), ErrNotInitialized)
	assert.NoError(t, nilClient.Close())
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	assert.Equal(t, "ps:idempotency:scope:id", client.IdempotencyKey("scope", "id"))
	assert.Equal(t, "ps:config_snapshot:abc", client.SnapshotKey("abc"))
	assert.Equal(t, "ps:config_generation:abc", client.GenerationKey("abc"))
	assert.Equal(t, "ps:idempotency:scope", client.IdempotencyKey("scope", ""), "empty parts should be skipped")

	staging := &Client{namespace: " staging "}
	assert.Equal(t, "staging:config_snapshot:abc", staging.SnapshotKey("abc"))
}

func TestOptionsFromConfig(t *testing.T) {
	t.Run("requires url or address", func(t *testing.T) {
		_, err := optionsFromConfig(config.RedisConfig{})
		assert.Error(t, err)
	})

	t.Run("url values win over config", func(t *testing.T) {
		opts, err := optionsFromConfig(config.RedisConfig{
			URL:         "redis://localhost:6379/4",
			DB:          1,
			PoolSize:    7,
			DialTimeout: 3 * time.Second,
		})
		require.NoError(t, err)
		assert.Equal(t, "localhost:6379", opts.Addr)
		assert.Equal(t, 4, opts.DB)
		assert.Equal(t, 7, opts.PoolSize)
		assert.Equal(t, 3*time.Second, opts.DialTimeout)
	})

	t.Run("address fallback", func(t *testing.T) {
		opts, err := optionsFromConfig(config.RedisConfig{Address: "cache:6380", Password: "secret", DB: 2})
		require.NoError(t, err)
		assert.Equal(t, "cache:6380", opts.Addr)
		assert.Equal(t, "secret", opts.Password)
		assert.Equal(t, 2, opts.DB)
	})

	t.Run("bad url", func(t *testing.T) {
		_, err := optionsFromConfig(config.RedisConfig{URL: "http://nope"})
		assert.Error(t, err)
	})
}

type mockCmdable struct {
	data     map[string]string
	ttls     map[string]time.Duration
	delCalls int
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(_ context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	m.delCalls++
	for _, key := range keys {
		delete(m.data, key)
		delete(m.ttls, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (m *mockCmdable) Incr(_ context.Context, key string) *redis.IntCmd {
	n, err := strconv.ParseInt(m.data[key], 10, 64)
	if err != nil && m.data[key] != "" {
		return redis.NewIntResult(0, err)
	}
	n++
	m.data[key] = strconv.FormatInt(n, 10)
	return redis.NewIntResult(n, nil)
}

func (m *mockCmdable) MGet(_ context.Context, keys ...string) *redis.SliceCmd {
	values := make([]any, len(keys))
	for i, key := range keys {
		if v, ok := m.data[key]; ok {
			values[i] = v
		}
	}
	return redis.NewSliceResult(values, nil)
}
