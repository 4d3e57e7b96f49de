// Package asynchook moves hook delivery off the store's call path.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    StaleDroppedEvery: 100, // stale drops can be noisy after a deploy
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	store, _ := coverband.New(coverband.Options{
//	    Provider:  provider,
//	    Hasher:    hasher,
//	    Namespace: "app:prod",
//	    Hooks:     hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/harm-matthias-harms/coverband"
)

type Hooks struct {
	inner   coverband.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	closed  atomic.Bool
	dropped atomic.Uint64
}

var _ coverband.Hooks = (*Hooks)(nil)

func New(inner coverband.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events fired after
// Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.closed.Store(true)
		close(h.q)
		h.wg.Wait()
	})
}

// Dropped counts events discarded because the queue was full or closed.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	if h.closed.Load() {
		h.dropped.Add(1)
		return
	}
	defer func() {
		// lost a race with Close
		if recover() != nil {
			h.dropped.Add(1)
		}
	}()
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) DecodeFailed(k string, err error) { h.try(func() { h.inner.DecodeFailed(k, err) }) }
func (h *Hooks) ReadFailed(k string, err error)   { h.try(func() { h.inner.ReadFailed(k, err) }) }
func (h *Hooks) WriteRejected(k string)           { h.try(func() { h.inner.WriteRejected(k) }) }
func (h *Hooks) StaleDropped(p coverband.Partition, path string) {
	h.try(func() { h.inner.StaleDropped(p, path) })
}
func (h *Hooks) RecordReset(p coverband.Partition, path, reason string) {
	h.try(func() { h.inner.RecordReset(p, path, reason) })
}
