package coverband

import "fmt"

// Partition names a bucket of coverage collected under different circumstances.
// The empty Partition selects the store's current partition.
type Partition string

const (
	Runtime      Partition = "runtime"
	EagerLoading Partition = "eager_loading"
	// Merged is computed on read from every storable partition and never stored.
	Merged Partition = "merged"
)

var storable = [...]Partition{Runtime, EagerLoading}

// Partitions returns the partitions that have a backend slot.
func Partitions() []Partition {
	out := make([]Partition, len(storable))
	copy(out, storable[:])
	return out
}

func (p Partition) String() string { return string(p) }

// Storable reports whether p has its own backend key.
func (p Partition) Storable() bool {
	for _, s := range storable {
		if p == s {
			return true
		}
	}
	return false
}

// ParsePartition converts a tag such as "runtime" into a Partition.
func ParsePartition(s string) (Partition, error) {
	switch p := Partition(s); p {
	case Runtime, EagerLoading, Merged:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPartition, s)
}

// Absent marks a non-executable line in NewLines.
const Absent int64 = -1

// Lines holds hit counts indexed by line number - 1. A nil element is a line
// that is not executable (blank, comment); 0 is executable but never hit.
type Lines []*int64

// NewLines builds Lines from plain counts, mapping Absent to nil.
func NewLines(counts ...int64) Lines {
	out := make(Lines, len(counts))
	for i, c := range counts {
		if c == Absent {
			continue
		}
		v := c
		out[i] = &v
	}
	return out
}

// Counts is the inverse of NewLines.
func (l Lines) Counts() []int64 {
	out := make([]int64, len(l))
	for i, v := range l {
		if v == nil {
			out[i] = Absent
			continue
		}
		out[i] = *v
	}
	return out
}

func (l Lines) clone() Lines {
	if l == nil {
		return nil
	}
	out := make(Lines, len(l))
	for i, v := range l {
		if v != nil {
			c := *v
			out[i] = &c
		}
	}
	return out
}

// FileCoverage is the stored record for one file.
type FileCoverage struct {
	Data     Lines  `json:"data" cbor:"data" msgpack:"data"`
	FileHash string `json:"file_hash" cbor:"file_hash" msgpack:"file_hash"`
	// LastUpdatedAt is epoch seconds of the last runtime merge; nil elsewhere.
	LastUpdatedAt *int64 `json:"last_updated_at,omitempty" cbor:"last_updated_at,omitempty" msgpack:"last_updated_at,omitempty"`
}

// Report maps file paths to their stored coverage.
type Report map[string]FileCoverage

// RawReport is what instrumentation hands to SaveReport: file path -> hits.
type RawReport map[string]Lines
