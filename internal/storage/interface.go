package storage

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by a Backend when nothing is stored under a key
var ErrKeyNotFound = errors.New("key not found")

// Backend is a raw key-value store holding one serialized blob per key
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
