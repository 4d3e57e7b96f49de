package coverband

// Hooks are lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking; the store calls them inline.
type Hooks interface {
	// A stored blob failed to decode and was read as empty.
	DecodeFailed(storageKey string, err error)

	// A provider Get failed on a read path that degrades to empty.
	ReadFailed(storageKey string, err error)

	// A file was filtered out on read because its hash no longer matches.
	StaleDropped(p Partition, path string)

	// SaveReport discarded a stored record instead of merging into it.
	// reason ∈ {"hash_changed", "length_mismatch"}
	RecordReset(p Partition, path, reason string)

	// Provider returned ok=false on Set (backpressure/eviction).
	WriteRejected(storageKey string)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) DecodeFailed(string, error)            {}
func (NopHooks) ReadFailed(string, error)              {}
func (NopHooks) StaleDropped(Partition, string)        {}
func (NopHooks) RecordReset(Partition, string, string) {}
func (NopHooks) WriteRejected(string)                  {}
