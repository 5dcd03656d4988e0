package mocks

import (
	"context"
	"sync"

	"github.com/mcoot/truthlie/internal/storage"
)

// FailingBackend wraps a backend and fails writes to chosen keys
type FailingBackend struct {
	storage.Backend

	mu       sync.Mutex
	failSets map[string]error
}

var _ storage.Backend = (*FailingBackend)(nil)

// NewFailingBackend wraps inner; nothing fails until FailSet is called
func NewFailingBackend(inner storage.Backend) *FailingBackend {
	return &FailingBackend{Backend: inner, failSets: map[string]error{}}
}

// FailSet makes every Set on key return err
func (b *FailingBackend) FailSet(key string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failSets[key] = err
}

// Heal clears all injected failures
func (b *FailingBackend) Heal() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.failSets)
}

func (b *FailingBackend) Set(ctx context.Context, key string, value []byte) error {
	b.mu.Lock()
	err := b.failSets[key]
	b.mu.Unlock()
	if err != nil {
		return err
	}
	return b.Backend.Set(ctx, key, value)
}
