// Package cache holds short-lived catalog responses for the bff. Values are
// stored as JSON so the in-memory and Redis backends behave the same.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// InvalidateSubject carries a cache key to drop, or "ALL" to flush.
const InvalidateSubject = "bff.cache.invalidate"

// Cache is the read/write interface for catalog responses.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string, dst any) bool
	Set(ctx context.Context, key string, v any)
	Invalidate(ctx context.Context, key string)
}

type item struct {
	val       []byte
	expiresAt time.Time
}

// TTLCache is an in-memory Cache with per-entry expiry.
type TTLCache struct {
	mu    sync.RWMutex
	items map[string]item
	ttl   time.Duration
	now   func() time.Time
}

func NewTTLCache(ttl time.Duration) *TTLCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &TTLCache{items: make(map[string]item), ttl: ttl, now: time.Now}
}

func (c *TTLCache) Get(_ context.Context, key string, dst any) bool {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return false
	}
	if c.now().After(it.expiresAt) {
		c.mu.Lock()
		if cur, ok2 := c.items[key]; ok2 && c.now().After(cur.expiresAt) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return false
	}
	return json.Unmarshal(it.val, dst) == nil
}

func (c *TTLCache) Set(_ context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.items[key] = item{val: b, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *TTLCache) Invalidate(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if key == "" || strings.EqualFold(key, "ALL") {
		c.items = make(map[string]item)
		return
	}
	delete(c.items, key)
}

// SubscribeInvalidation drops keys published on subj. The returned
// subscription is nil when nc is nil.
func SubscribeInvalidation(nc *nats.Conn, subj string, c Cache, log *zap.Logger) (*nats.Subscription, error) {
	if nc == nil || subj == "" {
		return nil, nil
	}
	return nc.Subscribe(subj, func(m *nats.Msg) {
		key := strings.TrimSpace(string(m.Data))
		c.Invalidate(context.Background(), key)
		if log != nil {
			log.Debug("cache invalidated", zap.String("key", key))
		}
	})
}
