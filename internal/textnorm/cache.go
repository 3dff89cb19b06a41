package textnorm

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/guillametlucia/relevant-document-retrieval/internal/config"
	"github.com/guillametlucia/relevant-document-retrieval/internal/pkg/hash"
	"github.com/guillametlucia/relevant-document-retrieval/internal/pkg/logger"
)

// Cache stores normalized token sequences keyed by raw-text hash, so
// repeated passages and queries are normalized once per run (or once
// across runs with the redis backend).
type Cache interface {
	Get(ctx context.Context, text string) ([]string, bool)
	Set(ctx context.Context, text string, tokens []string)
}

// NewCache creates a cache from configuration: an in-process LRU by
// default, or a redis-backed cache when configured.
func NewCache(cfg config.CacheConfig, log *logger.Logger) (Cache, error) {
	switch cfg.Type {
	case "redis":
		return NewRedisCache(cfg.RedisURL, time.Duration(cfg.TTL)*time.Second, log)
	default:
		return NewMemoryCache(cfg.Size), nil
	}
}

// MemoryCache is an in-process LRU token cache.
type MemoryCache struct {
	mu      sync.RWMutex
	cache   map[string][]string
	order   []string // LRU order, oldest first
	maxSize int
}

// NewMemoryCache creates a new in-memory token cache.
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = 10000
	}

	return &MemoryCache{
		cache:   make(map[string][]string),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
	}
}

// Get retrieves a token sequence from cache.
func (c *MemoryCache) Get(_ context.Context, text string) ([]string, bool) {
	key := hash.TextKey(text)

	c.mu.RLock()
	tokens, ok := c.cache[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	c.mu.Lock()
	c.moveToEnd(key)
	c.mu.Unlock()

	// Return a copy to prevent external mutation
	out := make([]string, len(tokens))
	copy(out, tokens)
	return out, true
}

// Set stores a token sequence in cache.
func (c *MemoryCache) Set(_ context.Context, text string, tokens []string) {
	key := hash.TextKey(text)

	stored := make([]string, len(tokens))
	copy(stored, tokens)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.cache[key]; exists {
		c.cache[key] = stored
		c.moveToEnd(key)
		return
	}

	// Evict if at capacity
	for len(c.cache) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.cache, oldest)
	}

	c.cache[key] = stored
	c.order = append(c.order, key)
}

// Len returns the number of cached sequences.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// moveToEnd moves a key to the end of the LRU order (must hold lock).
func (c *MemoryCache) moveToEnd(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, key)
			return
		}
	}
}

// RedisCache persists token sequences in redis so cleaned text survives
// across evaluation runs. Cache failures are never fatal: a failed Get is
// a miss and a failed Set is logged and dropped.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	log    *logger.Logger
}

// NewRedisCache creates a redis-backed token cache.
func NewRedisCache(url string, ttl time.Duration, log *logger.Logger) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &RedisCache{
		client: client,
		prefix: "peval:tokens:",
		ttl:    ttl,
		log:    log,
	}, nil
}

// Get retrieves a token sequence from redis.
func (c *RedisCache) Get(ctx context.Context, text string) ([]string, bool) {
	key := c.prefix + hash.TextKey(text)

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil && c.log != nil {
			c.log.WithError(err).Debug("redis cache get failed", "key", key)
		}
		return nil, false
	}

	var tokens []string
	if err := json.Unmarshal(data, &tokens); err != nil {
		if c.log != nil {
			c.log.WithError(err).Warn("redis cache entry corrupt", "key", key)
		}
		return nil, false
	}
	return tokens, true
}

// Set stores a token sequence in redis.
func (c *RedisCache) Set(ctx context.Context, text string, tokens []string) {
	key := c.prefix + hash.TextKey(text)

	data, err := json.Marshal(tokens)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil && c.log != nil {
		c.log.WithError(err).Debug("redis cache set failed", "key", key)
	}
}

// Close releases the redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
