package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// FSStore keeps objects on the local filesystem under root/<bucket>/<key>.
// It backs local development and tests; production deployments use S3Store.
type FSStore struct {
	root    string
	baseURL string
}

// NewFSStore creates the root directory if needed and returns a store whose
// public URLs are rooted at baseURL.
func NewFSStore(root, baseURL string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage root: %w", err)
	}
	return &FSStore{root: root, baseURL: baseURL}, nil
}

// Put writes the object atomically, replacing any existing object at the key.
func (s *FSStore) Put(ctx context.Context, bucket, key string, f File) (string, error) {
	if !validKey(bucket) || !validKey(key) {
		return "", ErrInvalidKey
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dst := filepath.Join(s.root, bucket, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("creating object directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("creating temp object: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, f.Body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing object: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("publishing object: %w", err)
	}

	return publicURL(s.baseURL, bucket, key), nil
}

// Delete removes the object. Missing objects are not an error.
func (s *FSStore) Delete(_ context.Context, bucket, key string) error {
	if !validKey(bucket) || !validKey(key) {
		return ErrInvalidKey
	}
	err := os.Remove(filepath.Join(s.root, bucket, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting object: %w", err)
	}
	return nil
}

// Handler serves stored objects read-only.
func (s *FSStore) Handler() http.Handler {
	return http.FileServer(http.Dir(s.root))
}
