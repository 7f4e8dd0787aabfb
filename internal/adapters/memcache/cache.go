// Package memcache is an in-process, time-windowed cache behind the
// domain.Cache port. Entries expire purely by time; the only eviction is
// overwrite-on-refresh, so a stale entry lives until the next Set.
package memcache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"hotel_concierge/internal/adapters/observability"
	"hotel_concierge/internal/domain"
)

type entry struct {
	body []byte
	at   time.Time
	ttl  time.Duration
}

type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

func New() *Cache {
	return &Cache{entries: make(map[string]entry), now: time.Now}
}

var _ domain.Cache = (*Cache)(nil)

func (c *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().Sub(e.at) >= e.ttl {
		observability.ObserveCache("memory", "miss")
		return false, nil
	}
	observability.ObserveCache("memory", "hit")
	return true, json.Unmarshal(e.body, dst)
}

func (c *Cache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	observability.ObserveCache("memory", "set")
	c.mu.Lock()
	c.entries[key] = entry{body: b, at: c.now(), ttl: time.Duration(ttlSec) * time.Second}
	c.mu.Unlock()
	return nil
}

func (c *Cache) Del(ctx context.Context, key string) error {
	observability.ObserveCache("memory", "del")
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}
