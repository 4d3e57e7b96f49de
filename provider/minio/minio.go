// Package minio stores coverage blobs in an S3-compatible bucket via minio-go.
// Expiry belongs to bucket lifecycle rules, so the ttl argument is ignored.
package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	pr "github.com/harm-matthias-harms/coverband/provider"
)

// Config holds the configuration for MinIO client initialization.
type Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Bucket          string
	Prefix          string
}

// Validate checks the config for required fields.
func (c Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("endpoint is required")
	}
	if c.AccessKeyID == "" {
		return errors.New("access key ID is required")
	}
	if c.SecretAccessKey == "" {
		return errors.New("secret access key is required")
	}
	if c.Bucket == "" {
		return errors.New("bucket name is required")
	}
	return nil
}

// MinIO implements provider.Provider on a single bucket.
type MinIO struct {
	client *minio.Client
	bucket string
	prefix string
}

var _ pr.Provider = (*MinIO)(nil)

// New connects and creates the bucket if it does not exist.
func New(ctx context.Context, cfg Config) (*MinIO, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &MinIO{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (m *MinIO) objectName(key string) string {
	if m.prefix == "" {
		return key
	}
	return path.Join(m.prefix, key)
}

func isNoSuchKey(err error) bool {
	var resp minio.ErrorResponse
	return errors.As(err, &resp) && resp.Code == "NoSuchKey"
}

func (m *MinIO) Get(ctx context.Context, key string) ([]byte, bool, error) {
	name := m.objectName(key)
	obj, err := m.client.GetObject(ctx, m.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get MinIO object %s: %w", name, err)
	}
	defer obj.Close()

	// GetObject is lazy; a missing object surfaces on first read
	data, err := io.ReadAll(obj)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read MinIO object %s: %w", name, err)
	}
	return data, true, nil
}

func (m *MinIO) Set(ctx context.Context, key string, value []byte, _ time.Duration) (bool, error) {
	name := m.objectName(key)
	_, err := m.client.PutObject(ctx, m.bucket, name, bytes.NewReader(value), int64(len(value)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return false, fmt.Errorf("failed to upload to MinIO object %s: %w", name, err)
	}
	return true, nil
}

// Del succeeds for missing objects; S3 deletes are idempotent.
func (m *MinIO) Del(ctx context.Context, key string) error {
	name := m.objectName(key)
	if err := m.client.RemoveObject(ctx, m.bucket, name, minio.RemoveObjectOptions{}); err != nil && !isNoSuchKey(err) {
		return fmt.Errorf("failed to delete MinIO object %s: %w", name, err)
	}
	return nil
}

// Close is a no-op; the MinIO client holds no resources that need release.
func (m *MinIO) Close(context.Context) error { return nil }
