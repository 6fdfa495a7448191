// Package storage persists saved items and user settings.
//
// Persistence is layered: a Blobs implementation stores opaque JSON
// documents under slash-separated keys, and Store builds the per-user
// item log and settings record on top of it.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Blobs.Get when no document exists for a key.
var ErrNotFound = errors.New("not found")

// Key prefixes of the persisted layout.
const (
	ItemsPrefix = "items/"
	UsersPrefix = "users/"
)

// Blobs is a durable key-value byte store. Put must replace the whole value
// atomically: readers observe either the old or the new document.
type Blobs interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	// List returns the keys directly under prefix, sorted. Prefix must end with "/".
	List(ctx context.Context, prefix string) ([]string, error)
	Close() error
}
