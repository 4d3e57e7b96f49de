// Package coverband implements a versioned, provider-agnostic store for per-file
// line coverage. Reports are merged into the backend without locks and entries are
// invalidated when the covered file's content hash changes.
//
// Components:
//   - Provider: byte store with TTL (e.g. Redis, BigCache, Ristretto, files, GCS, MinIO).
//   - Codec[Report]: (de)serializes a Report <-> []byte. JSON by default.
//   - Hasher: returns the current content hash of a file path.
//
// Keys:
//
//	<format_version>[.<namespace>].<partition>
//
// e.g. "coverband_blob_store_0_1.myapp.runtime". The format version changes with
// every incompatible encoding, so old blobs are never misread.
//
// Merge pattern:
//
//	store.SaveReport(ctx, raw, coverband.Runtime) // read, merge, write back
//	rep, _ := store.Coverage(ctx, coverband.Runtime) // read, drop stale files
//
// SaveReport is a plain read-modify-write. Two processes saving to the same
// partition at the same time can lose the counts of one of them; coverage is
// best-effort and the store never coordinates writers.
package coverband
