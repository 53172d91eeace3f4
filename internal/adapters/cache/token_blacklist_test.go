package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis is a minimal in-memory stand-in for the go-redis client.
type fakeRedis struct {
	mu   sync.Mutex
	data map[string]time.Duration

	SetError    error
	ExistsError error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]time.Duration)}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewStatusCmd(ctx)
	if f.SetError != nil {
		cmd.SetErr(f.SetError)
		return cmd
	}
	f.data[key] = expiration
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedis) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewIntCmd(ctx)
	if f.ExistsError != nil {
		cmd.SetErr(f.ExistsError)
		return cmd
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

func TestRedisTokenBlacklist_RevokeAndCheck(t *testing.T) {
	fake := newFakeRedis()
	bl := NewRedisTokenBlacklist(fake, nil)
	ctx := context.Background()

	revoked, err := bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, bl.Revoke(ctx, "jti-1", time.Hour))

	revoked, err = bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, time.Hour, fake.data["blacklist:jti-1"])
}

func TestRedisTokenBlacklist_PropagatesErrors(t *testing.T) {
	fake := newFakeRedis()
	fake.SetError = errors.New("connection reset")
	fake.ExistsError = errors.New("connection reset")
	bl := NewRedisTokenBlacklist(fake, nil)

	assert.Error(t, bl.Revoke(context.Background(), "jti-1", time.Hour))
	_, err := bl.IsRevoked(context.Background(), "jti-1")
	assert.Error(t, err)
}
