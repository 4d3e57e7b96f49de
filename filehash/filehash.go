// Package filehash computes the content hash coverband stores next to each
// file's counts: hex MD5 of the file bytes. Results are memoized per path and
// revalidated against the file's size and mtime, so a hot read path does not
// rehash unchanged sources.
package filehash

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/harm-matthias-harms/coverband"
)

type entry struct {
	hash    string
	size    int64
	modTime time.Time
	usedAt  time.Time
}

// MD5 hashes files under Root. Relative paths are resolved against Root;
// absolute paths are used as given.
// Optional cleanup loop prunes memo entries not used within retention.
type MD5 struct {
	root string

	mu     sync.RWMutex
	memo   map[string]entry
	ticker *time.Ticker
	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once

	retention time.Duration
}

var _ coverband.Hasher = (*MD5)(nil)

func New(root string, cleanupInterval, retention time.Duration) *MD5 {
	h := &MD5{
		root:      root,
		memo:      make(map[string]entry),
		retention: retention,
	}
	if cleanupInterval > 0 && retention > 0 {
		h.ticker = time.NewTicker(cleanupInterval)
		h.stopCh = make(chan struct{})
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			for {
				select {
				case <-h.ticker.C:
					h.Cleanup(retention)
				case <-h.stopCh:
					return
				}
			}
		}()
	}
	return h
}

func (h *MD5) resolve(path string) string {
	if filepath.IsAbs(path) || h.root == "" {
		return path
	}
	return filepath.Join(h.root, path)
}

// HashOf returns ok=false when the file cannot be read.
func (h *MD5) HashOf(path string) (string, bool) {
	full := h.resolve(path)
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		h.forget(full)
		return "", false
	}

	now := time.Now()
	h.mu.RLock()
	e, ok := h.memo[full]
	h.mu.RUnlock()
	if ok && e.size == info.Size() && e.modTime.Equal(info.ModTime()) {
		h.mu.Lock()
		e.usedAt = now
		h.memo[full] = e
		h.mu.Unlock()
		return e.hash, true
	}

	sum, err := Sum(full)
	if err != nil {
		h.forget(full)
		return "", false
	}
	h.mu.Lock()
	h.memo[full] = entry{hash: sum, size: info.Size(), modTime: info.ModTime(), usedAt: now}
	h.mu.Unlock()
	return sum, true
}

// Sum returns the hex MD5 of the file at path.
func Sum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	d := md5.New()
	if _, err := io.Copy(d, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(d.Sum(nil)), nil
}

func (h *MD5) forget(full string) {
	h.mu.Lock()
	delete(h.memo, full)
	h.mu.Unlock()
}

// Len returns the number of memoized paths.
func (h *MD5) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.memo)
}

func (h *MD5) Cleanup(retention time.Duration) {
	if retention <= 0 {
		return
	}
	cutoff := time.Now().Add(-retention)

	h.mu.Lock()
	for k, e := range h.memo {
		if e.usedAt.Before(cutoff) {
			delete(h.memo, k)
		}
	}
	h.mu.Unlock()
}

func (h *MD5) Close(_ context.Context) error {
	h.once.Do(func() {
		if h.stopCh != nil {
			close(h.stopCh)
			h.ticker.Stop() // stop ticker before waiting
			h.wg.Wait()
		}
	})
	return nil
}
