package store

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("store: not found")

// DB is a small wrapper around a Pebble instance shared by the run history stores.
// Records are namespaced by key prefix.
type DB struct {
	db  *pebble.DB
	Dir string
}

// Open opens (or creates) a pebble DB in dir.
func Open(dir string) (*DB, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", dir, err)
	}
	return &DB{db: db, Dir: dir}, nil
}

// Put stores value under key, durably.
func (d *DB) Put(key, value []byte) error {
	return d.db.Set(key, value, pebble.Sync)
}

// Get returns a copy of the value stored under key.
func (d *DB) Get(key []byte) ([]byte, error) {
	value, closer, err := d.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer closer.Close()
	return bytes.Clone(value), nil
}

// Delete removes key.
func (d *DB) Delete(key []byte) error {
	return d.db.Delete(key, pebble.Sync)
}

// Scan calls fn for every key starting with prefix, in key order. Key and value are
// only valid during the call. Returning an error from fn stops the scan.
func (d *DB) Scan(prefix []byte, fn func(key, value []byte) error) error {
	iter, err := d.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		if err := fn(iter.Key(), iter.Value()); err != nil {
			return err
		}
	}
	return iter.Error()
}

// DeletePrefix removes every key starting with prefix in a single batch.
func (d *DB) DeletePrefix(prefix []byte) error {
	end := prefixUpperBound(prefix)
	if end == nil {
		return errors.New("refusing to delete an unbounded prefix")
	}
	return d.db.DeleteRange(prefix, end, pebble.Sync)
}

// Close closes the underlying DB.
func (d *DB) Close() error {
	return d.db.Close()
}

// prefixUpperBound returns the smallest key greater than every key with prefix,
// or nil when no such key exists (empty or all-0xff prefix).
func prefixUpperBound(prefix []byte) []byte {
	end := bytes.Clone(prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
