package store

import (
	"context"
	"errors"
	"log"
)

// BestEffort wraps a Store so that every backend failure degrades to a
// no-op instead of propagating. The cart treats persistence as a cache,
// never as a correctness requirement, so a full or unreachable backend
// must not break the session.
type BestEffort struct {
	backend Store
}

func NewBestEffort(backend Store) *BestEffort {
	return &BestEffort{backend: backend}
}

// Get returns nil both for a missing record and for a failing backend.
func (b *BestEffort) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := b.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("store get error: %v", err)
		}
		return nil, nil
	}
	return data, nil
}

func (b *BestEffort) Set(ctx context.Context, key string, value []byte) error {
	if err := b.backend.Set(ctx, key, value); err != nil {
		log.Printf("store set error: %v", err)
	}
	return nil
}

func (b *BestEffort) Remove(ctx context.Context, key string) error {
	if err := b.backend.Remove(ctx, key); err != nil {
		log.Printf("store remove error: %v", err)
	}
	return nil
}
