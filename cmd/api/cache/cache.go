// Package cache memoizes content-source results for a bounded time and serves the last
// known value when a refresh fails.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/DavidPARK0417/draiger-sub002/internal/logger"
)

// Options are the per-call cache policy.
type Options struct {
	TTL time.Duration
	// ForceFresh bypasses the cache entirely: no read, no write, no stale fallback.
	ForceFresh bool
}

// Store is a durable second tier consulted only when a fetch fails and memory holds
// nothing for the key.
type Store interface {
	Load(ctx context.Context, key string) (data []byte, storedAt time.Time, found bool, err error)
	Save(ctx context.Context, key string, data []byte, storedAt time.Time) error
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
}

type entry struct {
	value    any
	storedAt time.Time
	ttl      time.Duration
}

func (e entry) fresh(now time.Time) bool {
	return now.Sub(e.storedAt) <= e.ttl
}

// Cache is safe for concurrent use. Writes are last-writer-wins per key.
type Cache struct {
	mu           sync.RWMutex
	entries      map[string]entry
	now          func() time.Time
	store        Store
	group        singleflight.Group
	fetchTimeout time.Duration
}

type Option func(*Cache)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithFetchTimeout bounds a shared fetch, which runs detached from the cancellation of
// the caller that started it.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Cache) { c.fetchTimeout = d }
}

// WithStore enables the durable snapshot tier.
func WithStore(s Store) Option {
	return func(c *Cache) { c.store = s }
}

func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Key joins the request dimensions that identify one cached result. The content type
// comes first so InvalidatePrefix(contentType+"|") drops everything of that type.
func Key(contentType, scope, category, query string, page, pageSize int) string {
	return strings.Join([]string{
		contentType,
		scope,
		category,
		strings.ToLower(strings.TrimSpace(query)),
		strconv.Itoa(page),
		strconv.Itoa(pageSize),
	}, "|")
}

// TypePrefix is the InvalidatePrefix argument covering one content type.
func TypePrefix(contentType string) string {
	return contentType + "|"
}

// GetOrFetch returns the cached value for key while it is fresh, otherwise calls fetch.
// When fetch fails, a stale value (memory first, then the store) is returned instead of
// the error.
func GetOrFetch[V any](ctx context.Context, c *Cache, key string, opts Options, fetch func(context.Context) (V, error)) (V, error) {
	if opts.ForceFresh || opts.TTL <= 0 {
		return safeFetch(ctx, fetch)
	}

	if v, ok := lookup[V](c, key, true); ok {
		return v, nil
	}

	// 공유 조회는 처음 호출한 요청이 끊겨도 다른 대기자를 위해 계속 진행한다.
	ch := c.group.DoChan(key, func() (any, error) {
		fctx := context.WithoutCancel(ctx)
		if c.fetchTimeout > 0 {
			var cancel context.CancelFunc
			fctx, cancel = context.WithTimeout(fctx, c.fetchTimeout)
			defer cancel()
		}
		v, err := safeFetch(fctx, fetch)
		if err != nil {
			return nil, err
		}
		c.set(key, v, opts.TTL)
		c.persist(fctx, key, v)
		return v, nil
	})

	var (
		res any
		err error
	)
	select {
	case r := <-ch:
		res, err = r.Val, r.Err
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err == nil {
		if v, ok := res.(V); ok {
			return v, nil
		}
	}

	if v, ok := lookup[V](c, key, false); ok {
		logger.WarnWithFields("serving stale cache entry", logger.Fields{"key": key, "error": errString(err)})
		return v, nil
	}
	if v, ok := loadStored[V](ctx, c, key); ok {
		logger.WarnWithFields("serving stored snapshot", logger.Fields{"key": key, "error": errString(err)})
		return v, nil
	}

	var zero V
	if err == nil {
		err = fmt.Errorf("cache: unexpected value type for key %s", key)
	}
	return zero, err
}

// safeFetch turns a panic inside fetch into an error.
func safeFetch[V any](ctx context.Context, fetch func(context.Context) (V, error)) (v V, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cache: fetch panicked: %v", r)
		}
	}()
	return fetch(ctx)
}

func lookup[V any](c *Cache, key string, freshOnly bool) (V, bool) {
	var zero V
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if freshOnly && !e.fresh(c.now()) {
		return zero, false
	}
	v, ok := e.value.(V)
	return v, ok
}

func (c *Cache) set(key string, v any, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry{value: v, storedAt: c.now(), ttl: ttl}
	c.mu.Unlock()
}

func (c *Cache) persist(ctx context.Context, key string, v any) {
	if c.store == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		logger.WarnWithFields("snapshot encode failed", logger.Fields{"key": key, "error": err.Error()})
		return
	}
	if err := c.store.Save(context.WithoutCancel(ctx), key, data, c.now()); err != nil {
		logger.WarnWithFields("snapshot save failed", logger.Fields{"key": key, "error": err.Error()})
	}
}

func loadStored[V any](ctx context.Context, c *Cache, key string) (V, bool) {
	var zero V
	if c.store == nil {
		return zero, false
	}
	data, storedAt, found, err := c.store.Load(context.WithoutCancel(ctx), key)
	if err != nil {
		logger.WarnWithFields("snapshot load failed", logger.Fields{"key": key, "error": err.Error()})
		return zero, false
	}
	if !found {
		return zero, false
	}
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		logger.WarnWithFields("snapshot decode failed", logger.Fields{"key": key, "error": err.Error()})
		return zero, false
	}
	// ttl 0: the restored entry is stale-only and never satisfies a fresh read.
	c.mu.Lock()
	if _, exists := c.entries[key]; !exists {
		c.entries[key] = entry{value: v, storedAt: storedAt}
	}
	c.mu.Unlock()
	return v, true
}

// Invalidate drops one key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidatePrefix drops every key starting with prefix and returns how many were removed.
func (c *Cache) InvalidatePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Purge drops every key starting with prefix from memory and from the store, so an
// invalidated value is not restored by a later failed fetch.
func (c *Cache) Purge(ctx context.Context, prefix string) int {
	n := c.InvalidatePrefix(prefix)
	if c.store == nil {
		return n
	}
	if _, err := c.store.DeletePrefix(context.WithoutCancel(ctx), prefix); err != nil {
		logger.WarnWithFields("snapshot purge failed", logger.Fields{"prefix": prefix, "error": err.Error()})
	}
	return n
}

// Cleanup removes entries that expired more than grace ago. Recently expired entries
// are kept so they can still be served stale.
func (c *Cache) Cleanup(grace time.Duration) int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.entries {
		if now.Sub(e.storedAt) > e.ttl+grace {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of entries, fresh or stale.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Run calls Cleanup every interval until ctx is done.
func (c *Cache) Run(ctx context.Context, interval, grace time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.Cleanup(grace); n > 0 {
				logger.DebugWithFields("cache cleanup", logger.Fields{"removed": n, "remaining": c.Len()})
			}
		}
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
