package asynchook

import (
	"errors"
	"sync"
	"testing"

	"github.com/harm-matthias-harms/coverband"
)

type recorder struct {
	coverband.NopHooks
	mu     sync.Mutex
	events []string
	block  chan struct{}
}

func (r *recorder) add(e string) {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) DecodeFailed(k string, _ error)                 { r.add("decode:" + k) }
func (r *recorder) ReadFailed(k string, _ error)                   { r.add("read:" + k) }
func (r *recorder) WriteRejected(k string)                         { r.add("rejected:" + k) }
func (r *recorder) StaleDropped(p coverband.Partition, f string)   { r.add("stale:" + string(p) + ":" + f) }
func (r *recorder) RecordReset(p coverband.Partition, f, w string) { r.add("reset:" + f + ":" + w) }

func TestDeliversAllEventsBeforeClose(t *testing.T) {
	rec := &recorder{}
	h := New(rec, 1, 16)

	h.DecodeFailed("k1", errors.New("x"))
	h.ReadFailed("k2", errors.New("y"))
	h.WriteRejected("k3")
	h.StaleDropped(coverband.Runtime, "a.rb")
	h.RecordReset(coverband.EagerLoading, "b.rb", "hash_changed")
	h.Close()

	want := []string{"decode:k1", "read:k2", "rejected:k3", "stale:runtime:a.rb", "reset:b.rb:hash_changed"}
	if len(rec.events) != len(want) {
		t.Fatalf("events=%v want %v", rec.events, want)
	}
	for i := range want {
		if rec.events[i] != want[i] {
			t.Fatalf("events[%d]=%q want %q", i, rec.events[i], want[i])
		}
	}
	if h.Dropped() != 0 {
		t.Fatalf("dropped=%d", h.Dropped())
	}
}

func TestDropsWhenQueueFull(t *testing.T) {
	rec := &recorder{block: make(chan struct{})}
	h := New(rec, 1, 1)

	// the worker may hold one event while blocked and the queue holds one more
	for i := 0; i < 10; i++ {
		h.WriteRejected("k")
	}
	if h.Dropped() < 8 {
		t.Fatalf("dropped=%d want >= 8", h.Dropped())
	}
	close(rec.block)
	h.Close()
}

func TestFireAfterCloseIsDropped(t *testing.T) {
	h := New(&recorder{}, 2, 4)
	h.Close()
	h.Close()

	h.WriteRejected("k")
	if h.Dropped() != 1 {
		t.Fatalf("dropped=%d want 1", h.Dropped())
	}
}
