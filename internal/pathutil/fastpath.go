package pathutil

import "strings"

// hasRelativeSegment reports whether path[root:] contains an empty, "." or
// ".." segment. It never allocates.
func hasRelativeSegment(path string, root int) bool {
	n := len(path)
	for i := root; i < n; {
		switch path[i] {
		case '/':
			return true
		case '.':
			j := i + 1
			if j < n && path[j] == '.' {
				j++
			}
			if j == n || path[j] == '/' {
				return true
			}
		}
		next := strings.IndexByte(path[i:], '/')
		if next < 0 {
			return false
		}
		i += next + 1
	}
	return false
}

// simpleNormalize handles paths that are already normalized, or that only
// need "/./" collapsed or a leading "./" dropped. The second result is false
// when the full scan is required.
func simpleNormalize(path string, root int) (string, bool) {
	if !hasRelativeSegment(path, root) {
		return path, true
	}
	rest := strings.ReplaceAll(path[root:], "/./", "/")
	rest = strings.TrimPrefix(rest, "./")
	if len(rest) == len(path)-root {
		return "", false
	}
	simplified := path[:root] + rest
	if hasRelativeSegment(simplified, root) {
		return "", false
	}
	return simplified, true
}

// IsNormalized reports whether Normalize would return path unchanged.
func IsNormalized(path string) bool {
	if strings.IndexByte(path, '\\') >= 0 {
		return false
	}
	return !hasRelativeSegment(path, RootLength(path))
}
