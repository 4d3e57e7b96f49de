package coverband

import (
	"errors"
	"fmt"
)

var (
	ErrNilProvider       = errors.New("coverband: provider is required")
	ErrNilHasher         = errors.New("coverband: hasher is required")
	ErrUnknownPartition  = errors.New("coverband: unknown partition")
	ErrMergedNotStorable = errors.New("coverband: merged partition is computed, not stored")
)

// DecodeError reports a stored blob that could not be decoded (corrupt or
// written by an incompatible encoding). Readers treat it as an empty report.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("coverband: decode %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// BackendError reports a failed provider call. ClearAll may carry one cause
// per partition key.
type BackendError struct {
	Op   string // "get", "set", "del"
	Key  string
	Errs []error
}

func (e *BackendError) Error() string {
	switch len(e.Errs) {
	case 0:
		return fmt.Sprintf("coverband: backend %s %q: unknown error", e.Op, e.Key)
	case 1:
		return fmt.Sprintf("coverband: backend %s %q: %v", e.Op, e.Key, e.Errs[0])
	default:
		return fmt.Sprintf("coverband: backend %s %q: %v", e.Op, e.Key, errors.Join(e.Errs...))
	}
}

func (e *BackendError) Unwrap() []error { return e.Errs }

func backendErr(op, key string, err error) error {
	return &BackendError{Op: op, Key: key, Errs: []error{err}}
}
