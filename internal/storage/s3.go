package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Store keeps objects in an S3-compatible object store.
type S3Store struct {
	client  *minio.Client
	baseURL string
}

// S3Options configures an S3Store.
type S3Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PublicURL string
}

// NewS3Store creates a client for the endpoint. When PublicURL is empty,
// object URLs are built from the endpoint.
func NewS3Store(opts S3Options) (*S3Store, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating s3 client: %w", err)
	}

	baseURL := opts.PublicURL
	if baseURL == "" {
		scheme := "http"
		if opts.UseSSL {
			scheme = "https"
		}
		baseURL = scheme + "://" + opts.Endpoint
	}

	return &S3Store{client: client, baseURL: baseURL}, nil
}

// EnsureBuckets creates any missing buckets.
func (s *S3Store) EnsureBuckets(ctx context.Context, buckets ...string) error {
	for _, b := range buckets {
		exists, err := s.client.BucketExists(ctx, b)
		if err != nil {
			return fmt.Errorf("checking bucket %s: %w", b, err)
		}
		if exists {
			continue
		}
		if err := s.client.MakeBucket(ctx, b, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("creating bucket %s: %w", b, err)
		}
		slog.Info("created storage bucket", "bucket", b)
	}
	return nil
}

// Put uploads the object, overwriting any existing object at the key.
func (s *S3Store) Put(ctx context.Context, bucket, key string, f File) (string, error) {
	if !validKey(bucket) || !validKey(key) {
		return "", ErrInvalidKey
	}

	_, err := s.client.PutObject(ctx, bucket, key, f.Body, f.Size, minio.PutObjectOptions{
		ContentType:  f.ContentType,
		CacheControl: "max-age=3600",
	})
	if err != nil {
		return "", fmt.Errorf("uploading object: %w", err)
	}

	return publicURL(s.baseURL, bucket, key), nil
}

// Delete removes the object.
func (s *S3Store) Delete(ctx context.Context, bucket, key string) error {
	if !validKey(bucket) || !validKey(key) {
		return ErrInvalidKey
	}
	if err := s.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("deleting object: %w", err)
	}
	return nil
}
