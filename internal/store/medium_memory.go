// Copyright (c) 2026 StreamAdvisor. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryMedium is a purely in-memory [Medium].
//
// # Usage
//
// Tests and ephemeral deployments (EPHEMERAL_STORAGE=true). Data is lost when
// the process exits. Tables round-trip through JSON exactly like the Badger
// medium, so tests exercise the same type coercions production sees.
type MemoryMedium struct {
	mu     sync.Mutex
	tables map[string][]byte
}

// NewMemoryMedium returns an empty in-memory medium.
func NewMemoryMedium() *MemoryMedium {
	return &MemoryMedium{tables: make(map[string][]byte)}
}

// Load returns every record of the named table.
func (medium *MemoryMedium) Load(_ context.Context, table string) ([]Record, error) {
	medium.mu.Lock()
	payload, found := medium.tables[table]
	medium.mu.Unlock()

	if !found {
		return []Record{}, nil
	}

	var records []Record
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("memory medium: corrupt table %q: %w", table, err)
	}
	return records, nil
}

// Save replaces the named table's contents.
func (medium *MemoryMedium) Save(_ context.Context, table string, records []Record) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("memory medium: failed to encode table %q: %w", table, err)
	}

	medium.mu.Lock()
	medium.tables[table] = payload
	medium.mu.Unlock()
	return nil
}

// Ping always succeeds.
func (medium *MemoryMedium) Ping(context.Context) error { return nil }
