// Package db defines the storage interface shared by the message-store
// backends. It mirrors a small transactional key-value contract so that
// different engines (in-memory, pebble) can be swapped without touching the
// code that builds on top of it.
package db

import "errors"

// ErrKeyNotFound is returned by Get when the requested key does not exist.
var ErrKeyNotFound = errors.New("db: key not found")

// ErrConflict is returned by WriteTx.Commit when a read performed during the
// transaction has been invalidated by a concurrent write.
var ErrConflict = errors.New("db: commit conflict")

// Options configures the construction of a Database backend.
type Options struct {
	// Path is the on-disk location for backends that persist data. Ignored
	// by purely in-memory backends.
	Path string
}

// Database is a minimal transactional key-value store. Implementations must
// be safe for concurrent use.
type Database interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(key []byte) ([]byte, error)
	// Iterate calls callback for every key with the given prefix, with the
	// prefix stripped from the key passed to callback. Iteration stops early
	// if callback returns false.
	Iterate(prefix []byte, callback func(key, value []byte) bool) error
	// WriteTx starts a new read/write transaction.
	WriteTx() WriteTx
	// Compact triggers backend-specific compaction. A no-op for backends
	// that don't need it.
	Compact() error
	// Close releases any resources held by the database.
	Close() error
}

// WriteTx is a read/write transaction over a Database. The inmemory backend
// tracks reads observed during the transaction and fails Commit with
// ErrConflict if any of them were modified by another transaction in the
// meantime; the pebbledb backend commits its batch without conflict
// detection and never returns ErrConflict.
type WriteTx interface {
	Get(key []byte) ([]byte, error)
	Iterate(prefix []byte, callback func(key, value []byte) bool) error
	Set(key, value []byte) error
	Delete(key []byte) error
	// Apply merges the writes recorded by other into this transaction.
	Apply(other WriteTx) error
	// Commit writes the transaction; backends that track reads fail with
	// ErrConflict on a conflicting concurrent write.
	Commit() error
	// Discard abandons the transaction. Safe to call after Commit.
	Discard()
}

// UnwrapWriteTx returns tx itself; it exists as an indirection point for
// backends that need to recover their concrete type from a db.WriteTx (see
// pebbledb.WriteTx.Apply).
func UnwrapWriteTx(tx WriteTx) WriteTx {
	return tx
}
