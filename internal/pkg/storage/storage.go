package storage

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned by Get when no blob is stored under the key.
	ErrNotFound = errors.New("blob not found")
	// ErrInvalidKey is returned for empty keys or keys containing path elements.
	ErrInvalidKey = errors.New("invalid blob key")
)

// Storage is a named-blob store. Values are opaque byte slices, usually JSON.
type Storage interface {
	// Get returns the blob stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores data under key, replacing any previous value.
	Put(ctx context.Context, key string, data []byte) error

	// Delete removes the blob under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// ValidateKey rejects keys that could escape a directory or a table namespace.
func ValidateKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
