// Package cache implements the two-tier event cache: a process-local memory
// tier with a short TTL in front of a bbolt-backed persistent tier with a
// long one. Lookups fall through memory to the persistent tier and promote
// hits back into memory with a fresh timestamp.
package cache

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/drewfead/daybook/internal/planner"
)

const (
	// DefaultMemoryTTL is how long a memory entry stays valid.
	DefaultMemoryTTL = 30 * time.Minute
	// DefaultPersistTTL is how long a persistent entry stays valid.
	DefaultPersistTTL = 24 * time.Hour
)

type memoryEntry struct {
	events  []planner.CalendarEvent
	savedAt time.Time
}

// Options configures a Cache. The zero value of every field has a usable
// default; a nil Store leaves the cache memory-only.
type Options struct {
	Store      *Store
	MemoryTTL  time.Duration
	PersistTTL time.Duration
	Now        func() time.Time
}

// Cache is safe for concurrent use.
type Cache struct {
	store      *Store
	memoryTTL  time.Duration
	persistTTL time.Duration
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]memoryEntry

	persists sync.WaitGroup
}

// New creates a cache from the given options.
func New(opts Options) *Cache {
	c := &Cache{
		store:      opts.Store,
		memoryTTL:  opts.MemoryTTL,
		persistTTL: opts.PersistTTL,
		now:        opts.Now,
		entries:    make(map[string]memoryEntry),
	}
	if c.memoryTTL <= 0 {
		c.memoryTTL = DefaultMemoryTTL
	}
	if c.persistTTL <= 0 {
		c.persistTTL = DefaultPersistTTL
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Get returns the cached events for the key. The memory tier is consulted
// first; on a miss the persistent tier is read and a hit there is promoted
// back into memory with a fresh timestamp. Expired or undecodable persistent
// entries are purged and count as misses. The returned slice is the caller's
// to keep.
func (c *Cache) Get(key string) ([]planner.CalendarEvent, bool) {
	now := c.now()

	c.mu.Lock()
	if entry, ok := c.entries[key]; ok {
		if now.Sub(entry.savedAt) <= c.memoryTTL {
			events := copyEvents(entry.events)
			c.mu.Unlock()
			return events, true
		}
		delete(c.entries, key)
	}
	c.mu.Unlock()

	if c.store == nil {
		return nil, false
	}

	events, savedAt, err := c.store.Load(key)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil, false
	case err != nil:
		var decodeErr *planner.DecodeError
		if errors.As(err, &decodeErr) {
			c.purge(key, "undecodable cache entry", err)
		} else {
			slog.Warn("unable to read cache entry", "key", key, "error", err)
		}
		return nil, false
	}

	if now.Sub(savedAt) > c.persistTTL {
		c.purge(key, "expired cache entry", nil)
		return nil, false
	}

	c.mu.Lock()
	c.entries[key] = memoryEntry{events: events, savedAt: now}
	c.mu.Unlock()
	slog.Debug("promoted cache entry from persistent tier", "key", key)

	return copyEvents(events), true
}

// Put stores the events under the key in the memory tier and, for non-empty
// lists, asynchronously in the persistent tier. Persistence failures are
// logged, never surfaced.
func (c *Cache) Put(key string, events []planner.CalendarEvent) {
	now := c.now()
	stored := copyEvents(events)

	c.mu.Lock()
	c.entries[key] = memoryEntry{events: stored, savedAt: now}
	c.mu.Unlock()

	if c.store == nil || len(stored) == 0 {
		return
	}

	c.persists.Add(1)
	go func() {
		defer c.persists.Done()
		if err := c.store.Save(key, stored, now); err != nil {
			slog.Warn("unable to persist cache entry", "key", key, "error", err)
		}
	}()
}

// Fresh reports whether the key has an unexpired entry in either tier,
// without promoting or purging anything.
func (c *Cache) Fresh(key string) bool {
	now := c.now()

	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()
	if ok && now.Sub(entry.savedAt) <= c.memoryTTL {
		return true
	}

	if c.store == nil {
		return false
	}
	savedAt, err := c.store.Stamp(key)
	if err != nil {
		return false
	}
	return now.Sub(savedAt) <= c.persistTTL
}

// Invalidate removes the entry for the key from both tiers.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	if c.store == nil {
		return
	}
	if err := c.store.Delete(key); err != nil {
		slog.Warn("unable to invalidate cache entry", "key", key, "error", err)
	}
}

// Clear removes every entry from both tiers.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()

	if c.store == nil {
		return
	}
	if err := c.store.Reset(); err != nil {
		slog.Warn("unable to clear persistent cache", "error", err)
	}
}

// Flush blocks until every in-flight persistent write has finished.
func (c *Cache) Flush() {
	c.persists.Wait()
}

func (c *Cache) purge(key, reason string, err error) {
	if err != nil {
		slog.Warn("purging "+reason, "key", key, "error", err)
	} else {
		slog.Debug("purging "+reason, "key", key)
	}
	if deleteErr := c.store.Delete(key); deleteErr != nil {
		slog.Warn("unable to purge cache entry", "key", key, "error", deleteErr)
	}
}

func copyEvents(events []planner.CalendarEvent) []planner.CalendarEvent {
	if events == nil {
		return nil
	}
	out := make([]planner.CalendarEvent, len(events))
	copy(out, events)
	return out
}
