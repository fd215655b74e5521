// Package kvstore is the durable key/value store of the client. It plays
// the role of browser local storage: string keys, opaque values, and
// survival across restarts.
package kvstore

import "context"

type Repository interface {
	// Get returns (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete is a no-op for absent keys.
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
	// Batch runs fn against a transactional view of the store; all writes
	// made through that view are committed together or not at all.
	Batch(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}
