package repository

import "context"

// BlobStore is the key-value persistence surface behind the record store.
//
// Get returns ErrNotFound when nothing was stored under key. Set replaces the
// whole value for key; readers observe either the previous or the new value,
// never a partial write.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
