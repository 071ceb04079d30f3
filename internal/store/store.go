// Copyright (c) 2026 StreamAdvisor. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streamadvisor/streamadvisor/internal/cache"
	"github.com/streamadvisor/streamadvisor/internal/platform/apperr"
	"github.com/streamadvisor/streamadvisor/internal/platform/clock"
	"github.com/streamadvisor/streamadvisor/internal/platform/constants"
)

// Store owns the in-memory tables and mediates every read and write.
//
// # Consistency
//
// Mutations persist the whole table to the medium BEFORE the new state
// becomes visible in memory or cache. A storage failure therefore aborts the
// operation without partially applied state (the contract of [apperr.Storage]).
//
// # Caching
//
// Reads are read-through: query results are cached for
// [constants.QueryCacheTTL] under a key derived from the serialized
// predicate. Every mutation invalidates the table's whole cache keyspace —
// including after insert, so a freshly created record is immediately visible
// to repeated queries rather than hiding behind a stale cached result.
type Store struct {
	medium Medium
	cache  *cache.Cache
	clock  clock.Clock
	log    *slog.Logger

	mu     sync.RWMutex
	tables map[string][]Record
}

// New constructs a Store and loads every declared table from the medium.
//
// Operations against a table name not declared here fail fast with
// [apperr.UnknownTable].
func New(ctx context.Context, medium Medium, queryCache *cache.Cache, clk clock.Clock, logger *slog.Logger, tableNames ...string) (*Store, error) {
	store := &Store{
		medium: medium,
		cache:  queryCache,
		clock:  clk,
		log:    logger,
		tables: make(map[string][]Record, len(tableNames)),
	}

	for _, name := range tableNames {
		records, err := medium.Load(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("store: failed to load table %q: %w", name, err)
		}
		store.tables[name] = records
		logger.Debug("table_loaded",
			slog.String("table", name),
			slog.Int("records", len(records)),
		)
	}

	return store, nil
}

// # Write Path

/*
Insert appends a new record to the named table.

Description: Assigns the generated id and creation/update timestamps,
persists the full table to the durable medium, invalidates the table's
cached query results, and caches the new record under its direct key.

Parameters:
  - ctx: context.Context
  - table: Declared table name
  - fields: Caller-supplied fields (copied, never mutated)

Returns:
  - Record: The stored record including generated fields
  - error: apperr.UnknownTable or apperr.Storage
*/
func (store *Store) Insert(ctx context.Context, table string, fields Record) (Record, error) {
	if err := store.requireTable(table); err != nil {
		return nil, err
	}

	now := store.clock.Now().UTC().Format(TimestampFormat)
	record := fields.Clone()
	record["id"] = newRecordID()
	record["created_at"] = now
	record["updated_at"] = now

	store.mu.Lock()
	defer store.mu.Unlock()

	// Build the successor slice without touching the visible one, so a
	// failed save leaves no trace.
	current := store.tables[table]
	next := make([]Record, len(current), len(current)+1)
	copy(next, current)
	next = append(next, record)

	if err := store.medium.Save(ctx, table, next); err != nil {
		return nil, apperr.Storage(err)
	}

	store.tables[table] = next

	// Cached query results predate this record; drop them all, then cache
	// the new record under its direct key.
	store.cache.InvalidatePrefix(table + ":")
	_ = store.cache.Set(recordKey(table, record.ID()), record, 0)

	return record.Clone(), nil
}

/*
Update patches every record matching the predicate.

Description: Locates matches through the cache-aware read path, merges the
patch into each and refreshes updated_at, persists the full table, drops the
table's cache keyspace, and re-caches each patched record directly.

Parameters:
  - ctx: context.Context
  - table: Declared table name
  - where: Equality predicate selecting the records to patch
  - patch: Fields to merge into each match

Returns:
  - int: Number of records updated
  - error: apperr.UnknownTable or apperr.Storage
*/
func (store *Store) Update(ctx context.Context, table string, where Where, patch Record) (int, error) {
	if err := store.requireTable(table); err != nil {
		return 0, err
	}

	matched, err := store.Select(ctx, table, where)
	if err != nil {
		return 0, err
	}
	if len(matched) == 0 {
		return 0, nil
	}

	matchedIDs := make(map[string]bool, len(matched))
	for _, record := range matched {
		matchedIDs[record.ID()] = true
	}

	now := store.clock.Now().UTC().Format(TimestampFormat)

	store.mu.Lock()
	defer store.mu.Unlock()

	current := store.tables[table]
	next := make([]Record, len(current))
	updated := make([]Record, 0, len(matched))

	for i, record := range current {
		if !matchedIDs[record.ID()] {
			next[i] = record
			continue
		}

		patched := record.Clone()
		for field, value := range patch {
			patched[field] = value
		}
		patched["updated_at"] = now

		next[i] = patched
		updated = append(updated, patched)
	}

	if err := store.medium.Save(ctx, table, next); err != nil {
		return 0, apperr.Storage(err)
	}

	store.tables[table] = next

	// Invalidate first: the prefix sweep would otherwise destroy the direct
	// entries written right after it.
	store.cache.InvalidatePrefix(table + ":")
	for _, record := range updated {
		_ = store.cache.Set(recordKey(table, record.ID()), record, 0)
	}

	return len(updated), nil
}

// # Read Path

/*
Select returns every record of the table matching the equality predicate.

Description: Read-through cached — a cached result for the identical
predicate is returned as-is; otherwise a linear scan runs and its result is
cached for [constants.QueryCacheTTL].

Parameters:
  - ctx: context.Context
  - table: Declared table name
  - where: Equality predicate (nil matches all records)

Returns:
  - []Record: Matching records, in table order (cloned, safe to mutate)
  - error: apperr.UnknownTable
*/
func (store *Store) Select(ctx context.Context, table string, where Where) ([]Record, error) {
	if err := store.requireTable(table); err != nil {
		return nil, err
	}

	key := queryKey(table, where)
	var cached []Record
	if store.cache.Get(key, &cached) {
		return cached, nil
	}

	store.mu.RLock()
	results := make([]Record, 0)
	for _, record := range store.tables[table] {
		if matches(record, where) {
			results = append(results, record.Clone())
		}
	}
	store.mu.RUnlock()

	_ = store.cache.Set(key, results, constants.QueryCacheTTL)
	return results, nil
}

/*
SelectOne returns the first record matching the predicate, or nil.

Description: Layered on [Store.Select] with its own cache entry, so a
repeated point lookup skips even the filtered scan. Negative results
("no such record") are cached too.

Parameters:
  - ctx: context.Context
  - table: Declared table name
  - where: Equality predicate

Returns:
  - Record: First match, or nil when nothing matches
  - error: apperr.UnknownTable
*/
func (store *Store) SelectOne(ctx context.Context, table string, where Where) (Record, error) {
	if err := store.requireTable(table); err != nil {
		return nil, err
	}

	key := queryOneKey(table, where)
	var cached Record
	if store.cache.Get(key, &cached) {
		if len(cached) == 0 {
			return nil, nil
		}
		return cached, nil
	}

	results, err := store.Select(ctx, table, where)
	if err != nil {
		return nil, err
	}

	var result Record
	if len(results) > 0 {
		result = results[0]
	}

	_ = store.cache.Set(key, result, constants.QueryCacheTTL)
	return result, nil
}

// # Internals

// requireTable fails fast when the table was never declared.
func (store *Store) requireTable(table string) error {
	store.mu.RLock()
	_, known := store.tables[table]
	store.mu.RUnlock()

	if !known {
		return apperr.UnknownTable(table)
	}
	return nil
}

// matches reports whether a record satisfies every equality clause.
func matches(record Record, where Where) bool {
	for field, want := range where {
		if want == nil {
			continue
		}
		if !equalValue(record[field], want) {
			return false
		}
	}
	return true
}

// recordKey is the direct cache key of a single record.
func recordKey(table, id string) string {
	return table + ":" + id
}

// queryKey is the cache key of a filtered Select result.
func queryKey(table string, where Where) string {
	return table + ":" + marshalWhere(where)
}

// queryOneKey is the cache key of a SelectOne result.
func queryOneKey(table string, where Where) string {
	return table + ":one:" + marshalWhere(where)
}

// marshalWhere serializes a predicate deterministically (JSON object keys
// are emitted in sorted order, so equal predicates share a cache key).
func marshalWhere(where Where) string {
	if where == nil {
		where = Where{}
	}
	payload, err := json.Marshal(where)
	if err != nil {
		// Predicates are plain scalars; this cannot happen in practice.
		return fmt.Sprintf("%v", where)
	}
	return string(payload)
}
