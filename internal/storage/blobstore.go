package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound     = errors.New("storage: blob not found")
	ErrInvalidAlias = errors.New("storage: invalid alias")
)

// BlobStore is the secure storage contract the seed vault consumes: an
// opaque blob per alias. Put replaces the whole blob; readers never observe
// a partially written value.
type BlobStore interface {
	Put(ctx context.Context, alias string, data []byte) error
	Get(ctx context.Context, alias string) ([]byte, error)
	Delete(ctx context.Context, alias string) error
}

// Closer is implemented by stores that hold a file or network handle.
type Closer interface {
	Close(ctx context.Context) error
}

// Locator is implemented by stores whose data lives at a local path. Two
// stores reporting the same Location see the same blobs.
type Locator interface {
	Location() string
}

// Close releases s if it holds resources.
func Close(ctx context.Context, s BlobStore) error {
	if c, ok := s.(Closer); ok {
		return c.Close(ctx)
	}
	return nil
}

func validateAlias(alias string) error {
	if alias == "" || strings.ContainsAny(alias, `/\`) || alias == "." || alias == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidAlias, alias)
	}
	return nil
}
