package coverband

import (
	"context"
	"fmt"
	"sync"
	"time"

	c "github.com/harm-matthias-harms/coverband/codec"
	"github.com/harm-matthias-harms/coverband/internal/keys"
	pr "github.com/harm-matthias-harms/coverband/provider"
)

type store struct {
	ns       string
	provider pr.Provider
	codec    c.Codec[Report]
	hasher   Hasher
	log      Logger
	hooks    Hooks
	now      func() time.Time
	ttl      time.Duration
	enabled  bool
	keys     keys.Set

	// selected partition and the memoized runtime file count; reset together
	mu          sync.Mutex
	partition   Partition
	fileCount   int
	fileCounted bool
}

func newStore(opts Options) (*store, error) {
	if opts.Provider == nil {
		return nil, ErrNilProvider
	}
	if opts.Hasher == nil {
		return nil, ErrNilHasher
	}

	s := &store{
		ns:       opts.Namespace,
		provider: opts.Provider,
		hasher:   opts.Hasher,
		ttl:      opts.TTL,
		enabled:  !opts.Disabled,
	}

	// defaults
	s.codec = coalesce[c.Codec[Report]](opts.Codec, c.JSON[Report]{})
	s.log = coalesce[Logger](opts.Logger, NopLogger{})
	s.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	s.partition = coalesce(opts.Partition, Runtime)
	if !s.partition.Storable() {
		return nil, fmt.Errorf("%w: initial partition %q is not storable", ErrUnknownPartition, s.partition)
	}
	s.now = time.Now
	if opts.Now != nil {
		s.now = opts.Now
	}

	tags := make([]string, 0, len(storable))
	for _, p := range storable {
		tags = append(tags, string(p))
	}
	s.keys = keys.NewSet(keys.Version(s.codec.Format()), s.ns, tags)
	return s, nil
}

func (s *store) Enabled() bool     { return s.enabled }
func (s *store) Namespace() string { return s.ns }

func (s *store) Close(ctx context.Context) error {
	if s.provider != nil {
		return s.provider.Close(ctx)
	}
	return nil
}

func (s *store) Partition() Partition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.partition
}

// SetPartition changes the selected partition and drops the memoized file count.
func (s *store) SetPartition(p Partition) error {
	if !p.Storable() {
		return ErrUnknownPartition
	}
	s.mu.Lock()
	s.partition = p
	s.fileCounted = false
	s.fileCount = 0
	s.mu.Unlock()
	return nil
}

func (s *store) Coverage(ctx context.Context, p Partition) (Report, error) {
	p = s.resolve(p)
	if p == Merged {
		return s.MergedCoverage(ctx)
	}
	k, ok := s.keys.Key(string(p))
	if !ok {
		return nil, ErrUnknownPartition
	}
	if !s.enabled {
		return Report{}, nil
	}
	rep, err := s.load(ctx, k)
	if err != nil {
		// reads never fail the caller on backend trouble
		s.log.Warn("coverage read failed; returning empty report", Fields{"key": k, "err": err})
		s.hooks.ReadFailed(k, err)
		return Report{}, nil
	}
	return s.filter(p, rep), nil
}

func (s *store) MergedCoverage(ctx context.Context) (Report, error) {
	out := Report{}
	for _, p := range storable {
		rep, err := s.Coverage(ctx, p)
		if err != nil {
			return nil, err
		}
		out = MergeReports(out, rep)
	}
	return out, nil
}

// SaveReport reads the stored report without the staleness filter, merges raw
// into it file by file and writes it back. Nothing guards the window between
// read and write: a concurrent writer to the same partition can overwrite
// these counts, or have its own overwritten.
func (s *store) SaveReport(ctx context.Context, raw RawReport, p Partition) error {
	if !s.enabled {
		return nil
	}
	p = s.resolve(p)
	if p == Merged {
		return ErrMergedNotStorable
	}
	k, ok := s.keys.Key(string(p))
	if !ok {
		return ErrUnknownPartition
	}

	existing, err := s.load(ctx, k)
	if err != nil {
		return err
	}

	now := s.now()
	for path, hits := range raw {
		hash, _ := s.hasher.HashOf(path)
		var prev *FileCoverage
		if fc, ok := existing[path]; ok {
			prev = &fc
		}
		merged, reset := mergeFile(prev, hits, hash, now, p)
		if reset != "" {
			s.log.Debug("stored record reset", Fields{"partition": p, "file": path, "reason": reset})
			s.hooks.RecordReset(p, path, reset)
		}
		existing[path] = merged
	}
	return s.write(ctx, k, existing)
}

func (s *store) ClearAll(ctx context.Context) error {
	if !s.enabled {
		return nil
	}
	var errs []error
	for _, p := range storable {
		k, _ := s.keys.Key(string(p))
		if err := s.provider.Del(ctx, k); err != nil {
			errs = append(errs, err)
		}
	}
	s.resetFileCount()
	if len(errs) > 0 {
		return &BackendError{Op: "del", Key: s.keys.Prefix(), Errs: errs}
	}
	return nil
}

// ClearFile physically removes path from every partition. Stale entries of
// other files are dropped on the way since each partition is read filtered.
func (s *store) ClearFile(ctx context.Context, path string) error {
	if !s.enabled {
		return nil
	}
	for _, p := range storable {
		k, _ := s.keys.Key(string(p))
		rep, err := s.load(ctx, k)
		if err != nil {
			return err
		}
		rep = s.filter(p, rep)
		delete(rep, path)
		if err := s.write(ctx, k, rep); err != nil {
			return err
		}
	}
	s.resetFileCount()
	return nil
}

// Size returns the byte length of the partition's stored blob. ok is false
// when the blob is missing or cannot be read.
func (s *store) Size(ctx context.Context, p Partition) (int, bool) {
	if !s.enabled {
		return 0, false
	}
	k, ok := s.keys.Key(string(s.resolve(p)))
	if !ok {
		return 0, false
	}
	raw, found, err := s.provider.Get(ctx, k)
	if err != nil || !found {
		return 0, false
	}
	return len(raw), true
}

// FileCount is the number of files stored for p, stale ones included.
// The empty partition means Runtime here, not the selected partition.
func (s *store) FileCount(ctx context.Context, p Partition) (int, error) {
	if p == "" {
		p = Runtime
	}
	k, ok := s.keys.Key(string(p))
	if !ok {
		return 0, ErrUnknownPartition
	}
	if !s.enabled {
		return 0, nil
	}
	rep, err := s.load(ctx, k)
	if err != nil {
		return 0, err
	}
	return len(rep), nil
}

func (s *store) CachedFileCount(ctx context.Context) (int, error) {
	s.mu.Lock()
	if s.fileCounted {
		n := s.fileCount
		s.mu.Unlock()
		return n, nil
	}
	s.mu.Unlock()

	n, err := s.FileCount(ctx, Runtime)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.fileCount, s.fileCounted = n, true
	s.mu.Unlock()
	return n, nil
}

func (s *store) resolve(p Partition) Partition {
	if p == "" {
		return s.Partition()
	}
	return p
}

func (s *store) resetFileCount() {
	s.mu.Lock()
	s.fileCounted = false
	s.mu.Unlock()
}

// load reads and decodes a partition blob. A miss or an undecodable blob
// yields an empty report; only provider failures are returned.
func (s *store) load(ctx context.Context, key string) (Report, error) {
	raw, ok, err := s.provider.Get(ctx, key)
	if err != nil {
		return nil, backendErr("get", key, err)
	}
	if !ok {
		return Report{}, nil
	}
	rep, err := s.codec.Decode(raw)
	if err != nil {
		derr := &DecodeError{Key: key, Err: err}
		s.log.Warn("stored coverage undecodable; treating as empty", Fields{"key": key, "err": derr})
		s.hooks.DecodeFailed(key, derr)
		return Report{}, nil
	}
	if rep == nil {
		rep = Report{}
	}
	return rep, nil
}

func (s *store) filter(p Partition, rep Report) Report {
	kept, dropped := FilterStale(rep, s.hasher)
	for _, path := range dropped {
		s.hooks.StaleDropped(p, path)
	}
	if len(dropped) > 0 {
		s.log.Debug("dropped stale coverage", Fields{"partition": p, "files": len(dropped)})
	}
	return kept
}

func (s *store) write(ctx context.Context, key string, rep Report) error {
	b, err := s.codec.Encode(rep)
	if err != nil {
		return err
	}
	ok, err := s.provider.Set(ctx, key, b, s.ttl)
	if err != nil {
		return backendErr("set", key, err)
	}
	if !ok {
		s.log.Debug("write rejected by provider (pressure)", Fields{"key": key})
		s.hooks.WriteRejected(key)
	}
	return nil
}
