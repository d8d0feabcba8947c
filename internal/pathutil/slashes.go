package pathutil

import "strings"

// Separator is the canonical directory separator.
const Separator = '/'

// NormalizeSlashes converts every backslash in path to a forward slash.
// The input is returned as-is when it contains none.
func NormalizeSlashes(path string) string {
	if strings.IndexByte(path, '\\') < 0 {
		return path
	}
	return strings.ReplaceAll(path, "\\", "/")
}

// Combine joins paths onto base with exactly one separator at each junction.
// A rooted element replaces everything accumulated before it; empty
// elements are ignored.
func Combine(base string, paths ...string) string {
	if base != "" {
		base = NormalizeSlashes(base)
	}
	for _, rel := range paths {
		if rel == "" {
			continue
		}
		rel = NormalizeSlashes(rel)
		if base == "" || RootLength(rel) != 0 {
			base = rel
			continue
		}
		base = EnsureTrailingSeparator(base) + rel
	}
	return base
}

// HasTrailingSeparator reports whether path ends in '/' or '\'.
func HasTrailingSeparator(path string) bool {
	return len(path) > 0 && isSeparator(path[len(path)-1])
}

// EnsureTrailingSeparator appends '/' to path unless it already ends in a
// separator.
func EnsureTrailingSeparator(path string) string {
	if HasTrailingSeparator(path) {
		return path
	}
	return path + string(Separator)
}

// RemoveTrailingSeparator drops a single trailing separator from path.
func RemoveTrailingSeparator(path string) string {
	if HasTrailingSeparator(path) {
		return path[:len(path)-1]
	}
	return path
}
