// Package store defines the keyed storage primitive the finbook engine is
// built on: per-key reads and read-modify-write mutations with no multi-key
// atomicity. Backends live in subpackages.
package store

import (
	"context"
	"errors"
)

// ErrNotFound indicates a requested key is missing.
var ErrNotFound = errors.New("key not found")

// KV is a per-key read/mutate/delete store. Implementations must make each
// individual call atomic with respect to other calls on the same key, and
// must not provide (or rely on) any cross-key transaction: callers issue one
// call per key and accept that sibling calls can fail independently.
//
// Values are JSON documents. Get unmarshals the stored document into v;
// Put marshals v and overwrites the key.
type KV interface {
	Get(ctx context.Context, key string, v any) error
	Put(ctx context.Context, key string, v any) error
	// Mutate applies fn to the raw stored document under a per-key write
	// lock. fn receives nil when the key is absent; returning nil raw
	// deletes the key.
	Mutate(ctx context.Context, key string, fn func(raw []byte) ([]byte, error)) error
	Delete(ctx context.Context, key string) error
	// Keys lists all keys with the given prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
