package coverband

import "sort"

// Hasher returns the current content hash of a source file.
// ok=false means the file is gone or unreadable; such entries count as stale.
type Hasher interface {
	HashOf(path string) (hash string, ok bool)
}

// HasherFunc adapts a plain function to Hasher.
type HasherFunc func(path string) (string, bool)

func (f HasherFunc) HashOf(path string) (string, bool) { return f(path) }

// FilterStale returns the entries of r whose stored hash still matches the
// file on disk, plus the sorted paths that were dropped. r is not modified.
func FilterStale(r Report, h Hasher) (Report, []string) {
	kept := make(Report, len(r))
	var dropped []string
	for path, fc := range r {
		if cur, ok := h.HashOf(path); ok && cur == fc.FileHash {
			kept[path] = fc
			continue
		}
		dropped = append(dropped, path)
	}
	sort.Strings(dropped)
	return kept, dropped
}
