// Package kv defines the flat string-keyed storage primitive the party store
// persists into.
package kv

import "context"

// Store is a string-keyed, string-valued storage facility. It is the only
// dependency of the party store, which keeps the whole party collection as a
// single serialized value under one key.
// This abstraction allows swapping storage backends (SQLite, bolt, etc.)
// without changing the store layer.
type Store interface {
	// Get returns the value stored under key.
	// ok is false when the key is absent; absence is not an error.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set overwrites the value stored under key, creating it if needed.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}
