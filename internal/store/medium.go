// Copyright (c) 2026 StreamAdvisor. All rights reserved.

package store

import "context"

// Medium is the durable collaborator backing the record store.
//
// # Contract
//
// Load returns the full contents of a table (empty slice if the table has
// never been saved). Save replaces the full contents of a table atomically
// from the caller's point of view. Records must round-trip through the
// medium losslessly as JSON.
//
// The store persists whole tables — the medium never sees row-level
// operations. That keeps implementations trivial (one key per table) at the
// cost of write amplification, which is acceptable at this catalog scale.
type Medium interface {
	// Load returns every record of the named table.
	Load(ctx context.Context, table string) ([]Record, error)

	// Save replaces the named table's contents.
	Save(ctx context.Context, table string, records []Record) error

	// Ping reports whether the medium is reachable and healthy.
	Ping(ctx context.Context) error
}
