// Package gcs stores coverage blobs as Google Cloud Storage objects.
// Object TTLs are bucket lifecycle policy, so the ttl argument is ignored.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	pr "github.com/harm-matthias-harms/coverband/provider"
)

// Config holds GCS client settings.
type Config struct {
	Bucket string
	// Prefix is prepended to every object name, e.g. "coverband/".
	Prefix string
	// Endpoint overrides the API endpoint; set for emulators such as fake-gcs-server.
	// Requests to a custom endpoint are sent without authentication.
	Endpoint string
}

// Validate checks the config for required fields.
func (c Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("bucket name is required")
	}
	return nil
}

// GCS implements provider.Provider on a single bucket.
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ pr.Provider = (*GCS)(nil)

// New creates a GCS client. Without an Endpoint it uses Application Default Credentials.
func New(ctx context.Context, cfg Config) (*GCS, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &GCS{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (g *GCS) objectName(key string) string {
	return objectName(g.prefix, key)
}

func objectName(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return path.Join(prefix, key)
}

// Get returns (nil, false, nil) when the object does not exist.
func (g *GCS) Get(ctx context.Context, key string) ([]byte, bool, error) {
	name := g.objectName(key)
	r, err := g.client.Bucket(g.bucket).Object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to open GCS object %s: %w", name, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read GCS object %s: %w", name, err)
	}
	return data, true, nil
}

func (g *GCS) Set(ctx context.Context, key string, value []byte, _ time.Duration) (bool, error) {
	name := g.objectName(key)
	w := g.client.Bucket(g.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "application/octet-stream"
	w.Size = int64(len(value))
	if _, err := w.Write(value); err != nil {
		w.Close()
		return false, fmt.Errorf("failed to write to GCS object %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return false, fmt.Errorf("failed to close GCS writer for %s: %w", name, err)
	}
	return true, nil
}

func (g *GCS) Del(ctx context.Context, key string) error {
	name := g.objectName(key)
	err := g.client.Bucket(g.bucket).Object(name).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete GCS object %s: %w", name, err)
	}
	return nil
}

// Close releases resources held by the storage client.
func (g *GCS) Close(context.Context) error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
