// Copyright (c) 2026 StreamAdvisor. All rights reserved.

/*
Package cache provides an in-process TTL-aware key/value store with
prefix-based invalidation.

It is the volatile accelerator in front of the record store: session lookups,
cached query results, and per-record entries all live here. The cache is
disposable by contract — losing every entry loses performance, never data,
because the record store can always rebuild it from the durable medium.

Core Responsibilities:

  - Volatility: Handles data with TTL (Time-To-Live), evicted lazily on read.
  - Isolation: Values are stored as JSON copies, so callers can never mutate
    a cached value through an alias.
  - Invalidation: A whole keyspace (e.g. every cached query for one table)
    can be dropped in a single prefix sweep.
*/
package cache

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/streamadvisor/streamadvisor/internal/platform/clock"
)

// entry is a stored value with an optional absolute expiry.
// A zero expiresAt means the entry never expires.
type entry struct {
	payload   []byte
	expiresAt time.Time
}

// Cache is a TTL-aware in-memory key/value store.
//
// # Concurrency
//
// All operations are guarded by a single mutex. The HTTP layer is genuinely
// concurrent, so every public method must hold the lock for its full
// read-check-evict cycle.
type Cache struct {
	clock clock.Clock

	mu      sync.Mutex
	entries map[string]entry
}

// New constructs an empty cache using the given time source.
func New(clk clock.Clock) *Cache {
	return &Cache{
		clock:   clk,
		entries: make(map[string]entry),
	}
}

// Set stores a JSON-serialized copy of value under key.
//
// A positive ttl makes the value unreadable after that duration from now;
// ttl <= 0 stores the value without expiry. Overwrites any previous entry
// and its expiry.
func (cache *Cache) Set(key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}

	stored := entry{payload: payload}
	if ttl > 0 {
		stored.expiresAt = cache.clock.Now().Add(ttl)
	}

	cache.mu.Lock()
	cache.entries[key] = stored
	cache.mu.Unlock()
	return nil
}

// Get loads the value stored under key into target (a pointer).
//
// It returns false if the key is absent or expired. An expired key is
// evicted as a side effect of the read — expiry is lazy, there is no
// background sweep. The boundary is strict: a value expires only once the
// clock has moved PAST its deadline, so a read at exactly the deadline
// still succeeds.
func (cache *Cache) Get(key string, target any) bool {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	stored, found := cache.entries[key]
	if !found {
		return false
	}

	// Lazy eviction on read.
	if !stored.expiresAt.IsZero() && cache.clock.Now().After(stored.expiresAt) {
		delete(cache.entries, key)
		return false
	}

	if err := json.Unmarshal(stored.payload, target); err != nil {
		// A value that no longer round-trips is as good as absent.
		delete(cache.entries, key)
		return false
	}

	return true
}

// Delete removes key and its expiry. Deleting an absent key is a no-op.
func (cache *Cache) Delete(key string) {
	cache.mu.Lock()
	delete(cache.entries, key)
	cache.mu.Unlock()
}

// InvalidatePrefix deletes every key whose name starts with prefix and
// returns the number of keys removed.
//
// # Usage
//
// The record store uses this to bust all cached query results for a table
// after a mutation ("users:" drops every cached users query in one sweep).
func (cache *Cache) InvalidatePrefix(prefix string) int {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	removed := 0
	for key := range cache.entries {
		if strings.HasPrefix(key, prefix) {
			delete(cache.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of live entries, including not-yet-evicted expired
// ones. Intended for tests and diagnostics.
func (cache *Cache) Len() int {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	return len(cache.entries)
}
