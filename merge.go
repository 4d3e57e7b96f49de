package coverband

import "time"

const (
	resetHashChanged    = "hash_changed"
	resetLengthMismatch = "length_mismatch"
)

// AddLines joins two hit sequences of equal length elementwise:
// nil+nil = nil, nil+n = n, n+m = n+m. The result is a fresh slice.
func AddLines(a, b Lines) Lines {
	out := make(Lines, len(a))
	for i := range a {
		var x, y *int64
		x = a[i]
		if i < len(b) {
			y = b[i]
		}
		switch {
		case x == nil && y == nil:
		case x == nil:
			v := *y
			out[i] = &v
		case y == nil:
			v := *x
			out[i] = &v
		default:
			v := *x + *y
			out[i] = &v
		}
	}
	return out
}

// mergeFile folds incoming hits into an existing record. A missing record, a
// stored hash that differs from currentHash, or a length mismatch all start a
// fresh record from incoming; reset names the cause ("" when merged in place).
// LastUpdatedAt is stamped only for the runtime partition.
func mergeFile(existing *FileCoverage, incoming Lines, currentHash string, now time.Time, p Partition) (out FileCoverage, reset string) {
	switch {
	case existing == nil:
		out.Data = incoming.clone()
	case existing.FileHash != currentHash:
		out.Data = incoming.clone()
		reset = resetHashChanged
	case len(existing.Data) != len(incoming):
		out.Data = incoming.clone()
		reset = resetLengthMismatch
	default:
		out.Data = AddLines(existing.Data, incoming)
	}
	out.FileHash = currentHash
	if p == Runtime {
		ts := now.Unix()
		out.LastUpdatedAt = &ts
	}
	return out, reset
}

// MergeReports unions two reports with the AddLines rule. For files present in
// both, FileHash comes from b and LastUpdatedAt is the later of the two. If the
// line counts disagree b wins. Neither input is modified.
func MergeReports(a, b Report) Report {
	out := make(Report, len(a)+len(b))
	for path, fc := range a {
		out[path] = copyFile(fc)
	}
	for path, fc := range b {
		prev, ok := out[path]
		if !ok || len(prev.Data) != len(fc.Data) {
			out[path] = copyFile(fc)
			continue
		}
		out[path] = FileCoverage{
			Data:          AddLines(prev.Data, fc.Data),
			FileHash:      fc.FileHash,
			LastUpdatedAt: latest(prev.LastUpdatedAt, fc.LastUpdatedAt),
		}
	}
	return out
}

func copyFile(fc FileCoverage) FileCoverage {
	out := FileCoverage{Data: fc.Data.clone(), FileHash: fc.FileHash}
	if fc.LastUpdatedAt != nil {
		ts := *fc.LastUpdatedAt
		out.LastUpdatedAt = &ts
	}
	return out
}

func latest(a, b *int64) *int64 {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		v := *b
		return &v
	case b == nil || *a > *b:
		v := *a
		return &v
	default:
		v := *b
		return &v
	}
}
