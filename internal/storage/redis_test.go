package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCmdable struct {
	data    map[string]string
	failSet error
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: make(map[string]string)}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	if m.failSet != nil {
		return redis.NewStatusResult("", m.failSet)
	}
	m.data[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestRedisKV_NamespacesKeys(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	kv := &RedisKV{store: mock}

	require.NoError(t, kv.Set(ctx, "auth-storage", `{"version":1}`))
	assert.Equal(t, `{"version":1}`, mock.data["sanctuary:auth-storage"])

	value, ok, err := kv.Get(ctx, "auth-storage")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"version":1}`, value)

	require.NoError(t, kv.Remove(ctx, "auth-storage"))
	_, ok, err = kv.Get(ctx, "auth-storage")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisKV_WrapsWriteErrors(t *testing.T) {
	boom := errors.New("connection reset")
	kv := &RedisKV{store: &mockCmdable{data: map[string]string{}, failSet: boom}}

	err := kv.Set(context.Background(), "theme-mode", `"dark"`)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestRedisKV_NilClient(t *testing.T) {
	var kv *RedisKV
	_, _, err := kv.Get(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.NoError(t, kv.Close())
}
