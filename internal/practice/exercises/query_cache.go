package exercises

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/coocood/freecache"

	"github.com/Motzart/exercises-app/internal/telemetry/metrics"
)

const (
	megabyte          = 1024 * 1024
	defaultCacheSize  = 16 * megabyte
	defaultExpiration = 10 * time.Minute
)

// QueryCache keeps JSON encoded exercise list results per user and list key.
// It remembers which keys a user has so all views of one exercise can be
// found again.
type QueryCache struct {
	cache      *freecache.Cache
	expireSecs int
	metrics    *metrics.Manager

	mutex sync.Mutex
	keys  map[string]map[string]struct{}
}

func NewQueryCache(sizeMB int, expiration time.Duration, metrics *metrics.Manager) *QueryCache {
	cacheSize := sizeMB * megabyte
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	if expiration <= 0 {
		expiration = defaultExpiration
	}
	return &QueryCache{
		cache:      freecache.NewCache(cacheSize),
		expireSecs: int(expiration / time.Second),
		metrics:    metrics,
		keys:       map[string]map[string]struct{}{},
	}
}

func cacheKey(userID, key string) []byte {
	return []byte(userID + "::" + key)
}

// Get returns the cached list stored under key, if any.
func (c *QueryCache) Get(userID, key string) ([]Exercise, bool) {
	raw, ok := c.raw(userID, key)
	if !ok {
		c.metrics.CounterQueryCache.WithLabelValues("miss").Inc()
		return nil, false
	}

	var list []Exercise
	if err := json.Unmarshal(raw, &list); err != nil {
		c.metrics.CounterQueryCache.WithLabelValues("corrupt").Inc()
		c.Delete(userID, key)
		return nil, false
	}
	c.metrics.CounterQueryCache.WithLabelValues("hit").Inc()
	return list, true
}

func (c *QueryCache) Set(userID, key string, list []Exercise) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("marshal exercise list: %w", err)
	}
	return c.setRaw(userID, key, raw)
}

func (c *QueryCache) Delete(userID, key string) {
	c.cache.Del(cacheKey(userID, key))

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if userKeys, ok := c.keys[userID]; ok {
		delete(userKeys, key)
	}
}

// Invalidate drops every cached list of the user.
func (c *QueryCache) Invalidate(userID string) {
	c.mutex.Lock()
	userKeys := c.keys[userID]
	delete(c.keys, userID)
	c.mutex.Unlock()

	for key := range userKeys {
		c.cache.Del(cacheKey(userID, key))
	}
}

// Keys lists the cached keys of the user that are still present, sorted.
func (c *QueryCache) Keys(userID string) []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	keys := make([]string, 0, len(c.keys[userID]))
	for key := range c.keys[userID] {
		if _, err := c.cache.TTL(cacheKey(userID, key)); err != nil {
			// evicted or expired
			delete(c.keys[userID], key)
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (c *QueryCache) raw(userID, key string) ([]byte, bool) {
	raw, err := c.cache.Get(cacheKey(userID, key))
	if err != nil {
		return nil, false
	}
	return raw, true
}

func (c *QueryCache) setRaw(userID, key string, raw []byte) error {
	if err := c.cache.Set(cacheKey(userID, key), raw, c.expireSecs); err != nil {
		if errors.Is(err, freecache.ErrLargeEntry) {
			c.Delete(userID, key)
		}
		return fmt.Errorf("cache exercise list %s: %w", key, err)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if _, ok := c.keys[userID]; !ok {
		c.keys[userID] = map[string]struct{}{}
	}
	c.keys[userID][key] = struct{}{}
	return nil
}
