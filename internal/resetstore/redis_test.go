package resetstore

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// redisStore connects to REDIS_TEST_ADDR or skips.
func redisStore(t *testing.T) *Redis {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client, err := Connect(context.Background(), RedisConfig{Addr: addr, Timeout: 2 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client)
}

func TestConnectUnreachable(t *testing.T) {
	_, err := Connect(context.Background(), RedisConfig{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping")
}

func TestRedisTakeOnce(t *testing.T) {
	s := redisStore(t)
	ctx := context.Background()
	tok := uuid.NewString()
	require.NoError(t, s.Put(ctx, tok, "u-1", time.Minute))

	ttl, err := s.client.TTL(ctx, key(tok)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)

	id, err := s.Take(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", id)

	_, err = s.Take(ctx, tok)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisExpiry(t *testing.T) {
	s := redisStore(t)
	ctx := context.Background()
	tok := uuid.NewString()
	require.NoError(t, s.Put(ctx, tok, "u-1", 100*time.Millisecond))

	time.Sleep(300 * time.Millisecond)
	_, err := s.Take(ctx, tok)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisConcurrentTake(t *testing.T) {
	s := redisStore(t)
	ctx := context.Background()
	tok := uuid.NewString()
	require.NoError(t, s.Put(ctx, tok, "u-1", time.Minute))

	var won atomic.Int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Take(ctx, tok); err == nil {
				won.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, won.Load())
}
