// Package sloghooks reports store events through log/slog.
package sloghooks

import (
	"log/slog"
	"sync/atomic"

	"github.com/harm-matthias-harms/coverband"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	StaleDroppedEvery uint64
	RecordResetEvery  uint64
	// Optional key redactor, e.g. when namespaces carry tenant names.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	staleCtr atomic.Uint64
	resetCtr atomic.Uint64
}

var _ coverband.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	return k
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) DecodeFailed(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("coverband.decode_failed",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) ReadFailed(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("coverband.read_failed",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) StaleDropped(p coverband.Partition, path string) {
	if h.l == nil || !sample(h.opts.StaleDroppedEvery, &h.staleCtr) {
		return
	}
	h.l.Debug("coverband.stale_dropped",
		"partition", string(p),
		"file", path)
}

func (h *Hooks) RecordReset(p coverband.Partition, path, reason string) {
	if h.l == nil || !sample(h.opts.RecordResetEvery, &h.resetCtr) {
		return
	}
	h.l.Info("coverband.record_reset",
		"partition", string(p),
		"file", path,
		"reason", reason)
}

func (h *Hooks) WriteRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("coverband.write_rejected",
		"key", h.redact(storageKey))
}
