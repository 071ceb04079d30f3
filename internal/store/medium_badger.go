// Copyright (c) 2026 StreamAdvisor. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	badger "github.com/dgraph-io/badger/v4"
)

// badgerKeyPrefix namespaces table payloads inside the Badger keyspace.
const badgerKeyPrefix = "db:"

// BadgerMedium is the production [Medium]: an embedded Badger key-value
// database holding one JSON-encoded payload per table under "db:<table>".
//
// # Why an embedded store?
//
// The platform deliberately has no external database. Badger gives the
// record store a crash-safe local medium with the same load/save-whole-table
// contract the rest of the system is built around.
type BadgerMedium struct {
	db *badger.DB
}

// OpenBadgerMedium opens (or creates) a Badger database rooted at dir.
//
// Badger's own chatty logger is disabled; lifecycle events worth surfacing
// are logged through the injected slog logger instead.
func OpenBadgerMedium(dir string, logger *slog.Logger) (*BadgerMedium, error) {
	options := badger.DefaultOptions(dir).WithLogger(nil)

	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("badger medium: failed to open %s: %w", dir, err)
	}

	logger.Info("badger medium opened", slog.String("dir", dir))
	return &BadgerMedium{db: db}, nil
}

// NewBadgerMedium wraps an already-open Badger database.
func NewBadgerMedium(db *badger.DB) *BadgerMedium {
	return &BadgerMedium{db: db}
}

// Load returns every record of the named table. A table that was never
// saved yields an empty slice, not an error.
func (medium *BadgerMedium) Load(_ context.Context, table string) ([]Record, error) {
	var payload []byte

	err := medium.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + table))
		if err != nil {
			return err
		}
		payload, err = item.ValueCopy(nil)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("badger medium: failed to load table %q: %w", table, err)
	}

	var records []Record
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("badger medium: corrupt table %q: %w", table, err)
	}
	return records, nil
}

// Save replaces the named table's contents in a single write transaction.
func (medium *BadgerMedium) Save(_ context.Context, table string, records []Record) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("badger medium: failed to encode table %q: %w", table, err)
	}

	err = medium.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerKeyPrefix+table), payload)
	})
	if err != nil {
		return fmt.Errorf("badger medium: failed to save table %q: %w", table, err)
	}
	return nil
}

// Ping verifies the database is open by running an empty read transaction.
func (medium *BadgerMedium) Ping(context.Context) error {
	if medium.db.IsClosed() {
		return errors.New("badger medium: database is closed")
	}
	return medium.db.View(func(*badger.Txn) error { return nil })
}

// Close releases the underlying Badger database.
func (medium *BadgerMedium) Close() error {
	return medium.db.Close()
}
