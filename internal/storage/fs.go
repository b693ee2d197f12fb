package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var ErrInvalidKey = errors.New("invalid blob key")

// FSBlobStore stores blobs below a local directory that the HTTP server exposes
// read-only under publicPrefix.
type FSBlobStore struct {
	base         string
	publicPrefix string
}

func NewFSBlobStore(base, publicPrefix string) (*FSBlobStore, error) {
	if base == "" {
		base = "./data/files"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("could not create blob directory %s: %w", base, err)
	}
	return &FSBlobStore{base: base, publicPrefix: strings.TrimSuffix(publicPrefix, "/")}, nil
}

// Base is the directory the blobs live in.
func (s *FSBlobStore) Base() string {
	return s.base
}

func (s *FSBlobStore) Put(ctx context.Context, key string, r io.Reader) (string, error) {
	dst, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("could not create blob directory: %w", err)
	}

	// write to a temp file first so readers never see a partial upload
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("could not create blob: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, readerWithContext(ctx, r)); err != nil {
		tmp.Close()
		return "", fmt.Errorf("could not write blob %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("could not write blob %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("could not store blob %s: %w", key, err)
	}
	return s.URL(key), nil
}

func (s *FSBlobStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	p, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

func (s *FSBlobStore) URL(key string) string {
	return s.publicPrefix + "/" + path.Clean(strings.TrimPrefix(key, "/"))
}

func (s *FSBlobStore) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)
	if key == "" || clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.base, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
