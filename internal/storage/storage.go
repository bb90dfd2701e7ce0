package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("key not found")
	ErrVersionMismatch = errors.New("version mismatch")
)

// Object is a stored value together with the opaque version it was read at.
type Object struct {
	Value   []byte
	Version string
}

// Store is a key-value store with optimistic concurrency.
//
// CompareAndSwap writes value only when the key is currently at version; an
// empty version means the key must not exist yet. Versions are opaque strings
// owned by the backend.
type Store interface {
	Get(ctx context.Context, key string) (*Object, error)
	Put(ctx context.Context, key string, value []byte) (string, error)
	CompareAndSwap(ctx context.Context, key string, value []byte, version string) (string, error)
	Ping(ctx context.Context) error
}
