package kvstore

import "context"

// Error constants for the storage layer
var (
	ErrKeyNotFound = StoreError("key not found")
)

// StoreError helps distinguish storage errors
type StoreError string

func (e StoreError) Error() string {
	return string(e)
}

// Store is the key-value persistence boundary the rest of the app builds on:
// small string keys, opaque byte values, whole-value overwrites.
type Store interface {
	// Get returns the bytes stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set persists value under key, fully overwriting any prior bytes.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend connection.
	Close(ctx context.Context) error
}
