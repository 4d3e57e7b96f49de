// Package file is a Provider that keeps one file per key under a directory.
// Several processes on one host may share the directory. Writes go to a temp
// file and are renamed into place, so a reader never sees a partial blob.
// TTLs are not supported and are ignored.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	pr "github.com/harm-matthias-harms/coverband/provider"
)

type File struct {
	dir string
}

var _ pr.Provider = (*File)(nil)

// New creates dir if needed.
func New(dir string) (*File, error) {
	if dir == "" {
		return nil, errors.New("file provider: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file provider: create %s: %w", dir, err)
	}
	return &File{dir: dir}, nil
}

// Dir returns the storage directory.
func (p *File) Dir() string { return p.dir }

func (p *File) path(key string) string {
	// keys may carry namespace characters like ':' or '/'
	return filepath.Join(p.dir, url.PathEscape(key))
}

func (p *File) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(p.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (p *File) Set(ctx context.Context, key string, value []byte, _ time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	tmp, err := os.CreateTemp(p.dir, ".tmp-*")
	if err != nil {
		return false, err
	}
	name := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(name)
		return false, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return false, err
	}
	if err := os.Rename(name, p.path(key)); err != nil {
		os.Remove(name)
		return false, err
	}
	return true, nil
}

func (p *File) Del(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(p.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (p *File) Close(context.Context) error { return nil }
