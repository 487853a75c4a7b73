package resetstore

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Memory is an in-process Store for single-instance deployments.
type Memory struct {
	mu sync.Mutex
	c  *cache.Cache
}

func NewMemory() *Memory {
	return &Memory{c: cache.New(time.Hour, 10*time.Minute)}
}

func (m *Memory) Put(_ context.Context, token, userID string, ttl time.Duration) error {
	m.c.Set(key(token), userID, ttl)
	return nil
}

func (m *Memory) Take(_ context.Context, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.c.Get(key(token))
	if !ok {
		return "", ErrNotFound
	}
	m.c.Delete(key(token))
	return v.(string), nil
}
