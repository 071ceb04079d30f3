// Copyright (c) 2026 StreamAdvisor. All rights reserved.

/*
Package store implements the table-oriented record store of the platform.

It offers CRUD-style operations (insert, select, selectOne, update) over named
tables of schemaless records, persisted wholesale to a durable [Medium] and
accelerated by a read-through [cache.Cache].

# Architecture

  - Record: a JSON-shaped row (map) with generated id and timestamps.
  - Store: owns the in-memory tables; every mutation persists the full table
    to the medium before becoming visible.
  - Medium: the durable collaborator (embedded Badger database in production,
    plain memory in tests).

The cache is strictly disposable: dropping it can never lose records, only
the speed of repeated queries.
*/
package store

import (
	"time"

	"github.com/google/uuid"
)

// TimestampFormat is the wire format for record timestamps.
const TimestampFormat = time.RFC3339Nano

// Record is a single schemaless table row.
//
// Every stored record carries the generated "id", "created_at", and
// "updated_at" fields. Values must survive a JSON round-trip losslessly,
// which means numbers read back from the medium are float64.
type Record map[string]any

// Where is an equality-only predicate: every listed field must equal the
// given value for a record to match. A nil or empty Where matches all rows.
type Where map[string]any

// ID returns the record's generated identifier, or "" if unset.
func (r Record) ID() string {
	return r.String("id")
}

// String returns the named field as a string, or "" if absent or not a string.
func (r Record) String(field string) string {
	value, _ := r[field].(string)
	return value
}

// Bool returns the named field as a bool, or false if absent or not a bool.
func (r Record) Bool(field string) bool {
	value, _ := r[field].(bool)
	return value
}

// Strings returns the named field as a string slice.
//
// Values loaded from the medium arrive as []any of strings (the JSON shape),
// while freshly inserted values may still be []string; both are handled.
func (r Record) Strings(field string) []string {
	switch value := r[field].(type) {
	case []string:
		out := make([]string, len(value))
		copy(out, value)
		return out
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Clone returns a shallow copy of the record. Field values are shared, but
// the map itself is independent, which is enough for patch-merge semantics.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for key, value := range r {
		out[key] = value
	}
	return out
}

// newRecordID generates a record identifier.
//
// # Uniqueness
//
// UUIDv7 combines a millisecond-resolution time prefix with random bits:
// identifiers are time-ordered and probabilistically unique. There is no
// central authority handing out IDs — at this system's scale the collision
// risk is negligible, and the property is pinned by tests rather than
// enforced at insert time.
func newRecordID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Entropy failure is an unrecoverable system-level error.
		panic("store: failed to generate record id: " + err.Error())
	}
	return id.String()
}

// equalValue compares a stored field value with a predicate value.
//
// Records that traveled through the medium carry JSON types (float64 for all
// numbers), while predicates are written with native Go literals, so numeric
// comparisons normalize both sides first.
func equalValue(have, want any) bool {
	if have == nil || want == nil {
		return have == want
	}

	if haveNum, ok := toFloat(have); ok {
		wantNum, ok := toFloat(want)
		return ok && haveNum == wantNum
	}

	return have == want
}

func toFloat(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
