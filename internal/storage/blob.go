package storage

import (
	"context"
	"io"
)

// BlobStore keeps uploaded files such as the exam PDF.
type BlobStore interface {
	// Put stores r under key and returns the public URL of the blob.
	Put(ctx context.Context, key string, r io.Reader) (string, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// URL returns the public URL for key without touching the store.
	URL(key string) string
}
