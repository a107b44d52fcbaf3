// Package repository declares the storage interfaces the application depends on.
// Implementations live in sub-packages (sqlite, redis).
package repository

import "context"

// KVStore is a string-keyed, string-valued store. Entries never expire:
// once a key is written it stays until overwritten.
type KVStore interface {
	// Get returns the value for key. found is false when the key was never written.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Ping checks that the backing store is reachable.
	Ping(ctx context.Context) error
	Close() error
}
