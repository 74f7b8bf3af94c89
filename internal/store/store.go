package store

import (
	"context"
	"errors"
)

// Store defines the interface for keyed record storage
// Consumers define this interface, not the backend implementations
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

var ErrNotFound = errors.New("record not found")
