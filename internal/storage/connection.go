package storage

import (
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/phuslu/log"
	"github.com/timshannon/badgerhold/v4"
)

// DB manages the Badger database connection shared by the cache and
// session namespaces.
type DB struct {
	store *badgerhold.Store
}

// Open opens (or creates) the key-value database at path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Options = badger.DefaultOptions(path).WithLogger(nil)

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	log.Debug().Str("path", path).Msg("key-value database opened")

	return &DB{store: store}, nil
}

// Store returns the underlying badgerhold store.
func (d *DB) Store() *badgerhold.Store {
	return d.store
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}
