// Package logrus adapts a *logrus.Entry to coverband.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/harm-matthias-harms/coverband"
)

var _ coverband.Logger = Logger{}

type Logger struct{ E *logrus.Entry }

// New wraps l and tags every entry with component=coverband.
func New(l *logrus.Logger) Logger {
	return Logger{E: l.WithField("component", "coverband")}
}

func (l Logger) Debug(msg string, f coverband.Fields) { l.with(f).Debug(msg) }
func (l Logger) Info(msg string, f coverband.Fields)  { l.with(f).Info(msg) }
func (l Logger) Warn(msg string, f coverband.Fields)  { l.with(f).Warn(msg) }
func (l Logger) Error(msg string, f coverband.Fields) { l.with(f).Error(msg) }

func (l Logger) with(f coverband.Fields) *logrus.Entry {
	if len(f) == 0 {
		return l.E
	}
	out := make(logrus.Fields, len(f))
	for k, v := range f {
		// logrus renders the error under its own key
		if err, ok := v.(error); ok && k == "err" {
			out[logrus.ErrorKey] = err
			continue
		}
		out[k] = v
	}
	return l.E.WithFields(out)
}
