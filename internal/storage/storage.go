// Package storage uploads user files (avatars, product images) to an object
// store and returns their public URLs. Writes to an existing key replace the
// previous object; no history is kept.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

const (
	AvatarBucket       = "avatars"
	ProductImageBucket = "product-images"
)

// ErrInvalidKey is returned for object keys that are empty or escape their bucket.
var ErrInvalidKey = errors.New("invalid object key")

// File is an uploaded file as received from a client.
type File struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Empty reports whether no file content was provided.
func (f *File) Empty() bool {
	return f == nil || f.Body == nil || f.Size <= 0
}

// Store is an object store addressed by bucket and key.
type Store interface {
	Put(ctx context.Context, bucket, key string, f File) (string, error)
	Delete(ctx context.Context, bucket, key string) error
}

// Ext returns the lower-cased extension of filename without the dot, or
// fallback when there is none.
func Ext(filename, fallback string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return fallback
		}
	}
	if ext == "" {
		return fallback
	}
	return ext
}

func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") {
		return false
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
	}
	return true
}

func publicURL(base, bucket, key string) string {
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + key
}
