// Package metadata is the client's durable key/value store.
package metadata

import (
	"context"
)

// Repository stores opaque values under string keys. Get returns (nil, nil)
// for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// DeleteIfEqual removes key only while it still holds value and reports
	// whether a row was removed.
	DeleteIfEqual(ctx context.Context, key string, value []byte) (bool, error)
}
