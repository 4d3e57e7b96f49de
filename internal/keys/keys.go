// Package keys derives backend keys for coverage partitions.
package keys

import (
	"strings"
)

// FormatVersion tags every key. Bump it on any incompatible change to the
// stored encoding or to the meaning of a stored record.
const FormatVersion = "coverband_blob_store_0_1"

// Version returns the format version for a codec format. The portable JSON
// encoding keeps the bare FormatVersion; other encodings get a suffix so their
// blobs live under different keys.
func Version(codecFormat string) string {
	if codecFormat == "" || codecFormat == "json" {
		return FormatVersion
	}
	return FormatVersion + "_" + codecFormat
}

// Build joins the non-empty parts with ".":
//
//	<version>[.<namespace>].<partition>
func Build(version, namespace, partition string) string {
	parts := make([]string, 0, 3)
	for _, p := range [...]string{version, namespace, partition} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

// Set is a precomputed key per partition for one version and namespace.
type Set struct {
	prefix      string
	byPartition map[string]string
}

// NewSet builds the key for every partition up front.
func NewSet(version, namespace string, partitions []string) Set {
	m := make(map[string]string, len(partitions))
	for _, p := range partitions {
		m[p] = Build(version, namespace, p)
	}
	return Set{prefix: Build(version, namespace, ""), byPartition: m}
}

// Prefix is the shared "<version>[.<namespace>]" part of every key in the set.
func (s Set) Prefix() string { return s.prefix }

// Key returns the key for partition and whether the partition is known.
func (s Set) Key(partition string) (string, bool) {
	k, ok := s.byPartition[partition]
	return k, ok
}
