package coverband

import (
	"context"
	"time"

	c "github.com/harm-matthias-harms/coverband/codec"
	pr "github.com/harm-matthias-harms/coverband/provider"
)

// Store is the provider-agnostic coverage API. One Store serves every
// partition; the empty Partition argument means the selected partition.
type Store interface {
	Enabled() bool
	Close(context.Context) error

	// Selection
	Partition() Partition
	SetPartition(p Partition) error
	Namespace() string

	// Reads degrade to an empty Report on missing, corrupt or unreadable blobs.
	Coverage(ctx context.Context, p Partition) (Report, error)
	MergedCoverage(ctx context.Context) (Report, error)

	// SaveReport merges raw hits into the stored report (read-modify-write, no lock).
	SaveReport(ctx context.Context, raw RawReport, p Partition) error

	ClearAll(ctx context.Context) error
	ClearFile(ctx context.Context, path string) error

	// Diagnostics
	Size(ctx context.Context, p Partition) (n int, ok bool)
	FileCount(ctx context.Context, p Partition) (int, error)
	CachedFileCount(ctx context.Context) (int, error)
}

// Options configure a Store. Only Provider and Hasher are required.
type Options struct {
	// Required
	Provider pr.Provider
	Hasher   Hasher

	Namespace string           // optional key segment, e.g. "myapp:prod"
	Codec     c.Codec[Report]  // nil => JSON (portable format)
	Partition Partition        // initially selected; "" => Runtime
	TTL       time.Duration    // per write; 0 => no expiry
	Logger    Logger           // nil => NopLogger
	Hooks     Hooks            // nil => NopHooks
	Now       func() time.Time // nil => time.Now
	Disabled  bool             // default false (enabled)
}

func New(opts Options) (Store, error) {
	return newStore(opts)
}
