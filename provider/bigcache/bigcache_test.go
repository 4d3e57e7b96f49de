package bigcache

import (
	"context"
	"testing"
	"time"
)

func TestRoundTripAndDelete(t *testing.T) {
	ctx := context.Background()
	p, err := New(ctx, Config{LifeWindow: time.Hour, MaxEntriesInWindow: 1024, MaxEntrySize: 1024})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = p.Close(ctx) })

	if _, ok, err := p.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("miss expected, ok=%v err=%v", ok, err)
	}
	if ok, err := p.Set(ctx, "k", []byte(`{"a.rb":{}}`), time.Minute); !ok || err != nil {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	got, ok, err := p.Get(ctx, "k")
	if err != nil || !ok || string(got) != `{"a.rb":{}}` {
		t.Fatalf("Get = %q ok=%v err=%v", got, ok, err)
	}
	if err := p.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if err := p.Del(ctx, "k"); err != nil {
		t.Fatalf("Del of missing key must be a no-op: %v", err)
	}
}

func TestZeroLifeWindowKeepsEntries(t *testing.T) {
	ctx := context.Background()
	p, err := New(ctx, Config{MaxEntriesInWindow: 1024, MaxEntrySize: 1024})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = p.Close(ctx) })

	for _, k := range []string{"a", "b", "c"} {
		if _, err := p.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("Set %s: %v", k, err)
		}
	}
	for _, k := range []string{"a", "b", "c"} {
		if _, ok, _ := p.Get(ctx, k); !ok {
			t.Fatalf("%s evicted", k)
		}
	}
}
