// Package slog adapts a *slog.Logger to coverband.Logger.
package slog

import (
	"context"
	stdslog "log/slog"
	"sort"

	"github.com/harm-matthias-harms/coverband"
)

var _ coverband.Logger = Logger{}

type Logger struct{ L *stdslog.Logger }

// New wraps l and tags every entry with component=coverband.
func New(l *stdslog.Logger) Logger {
	return Logger{L: l.With("component", "coverband")}
}

func (s Logger) Debug(msg string, f coverband.Fields) { s.log(stdslog.LevelDebug, msg, f) }
func (s Logger) Info(msg string, f coverband.Fields)  { s.log(stdslog.LevelInfo, msg, f) }
func (s Logger) Warn(msg string, f coverband.Fields)  { s.log(stdslog.LevelWarn, msg, f) }
func (s Logger) Error(msg string, f coverband.Fields) { s.log(stdslog.LevelError, msg, f) }

func (s Logger) log(level stdslog.Level, msg string, f coverband.Fields) {
	s.L.LogAttrs(context.Background(), level, msg, attrs(f)...)
}

func attrs(f coverband.Fields) []stdslog.Attr {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]stdslog.Attr, 0, len(f))
	for _, k := range keys {
		out = append(out, stdslog.Any(k, f[k]))
	}
	return out
}
