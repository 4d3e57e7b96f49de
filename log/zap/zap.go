// Package zap adapts a *zap.Logger to coverband.Logger.
package zap

import (
	"sort"

	"go.uber.org/zap"

	"github.com/harm-matthias-harms/coverband"
)

var _ coverband.Logger = Logger{}

type Logger struct{ L *zap.Logger }

// New wraps l and tags every entry with component=coverband.
func New(l *zap.Logger) Logger {
	return Logger{L: l.With(zap.String("component", "coverband"))}
}

func (z Logger) Debug(msg string, f coverband.Fields) { z.L.Debug(msg, fields(f)...) }
func (z Logger) Info(msg string, f coverband.Fields)  { z.L.Info(msg, fields(f)...) }
func (z Logger) Warn(msg string, f coverband.Fields)  { z.L.Warn(msg, fields(f)...) }
func (z Logger) Error(msg string, f coverband.Fields) { z.L.Error(msg, fields(f)...) }

func fields(f coverband.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]zap.Field, 0, len(f))
	for _, k := range keys {
		if err, ok := f[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}
