// Package pathutil normalizes filesystem-style paths lexically.
//
// Normalization resolves "." and ".." segments, collapses repeated
// separators and keeps the root prefix (POSIX "/", DOS drive, UNC share or
// URL authority) intact. No filesystem access is performed. Paths that are
// already normalized are returned without allocating.
package pathutil

import (
	"bytes"
	"strings"
)

// Normalize returns the canonical form of path. Backslashes become forward
// slashes, and a trailing separator on the input is kept on a non-empty
// result.
func Normalize(path string) string {
	path = NormalizeSlashes(path)
	root := RootLength(path)
	if simple, ok := simpleNormalize(path, root); ok {
		return simple
	}
	normalized := scan(path, root)
	if normalized != "" && HasTrailingSeparator(path) {
		return EnsureTrailingSeparator(normalized)
	}
	return normalized
}

// NormalizeAbsolute normalizes path, first combining it with
// currentDirectory when path is relative and currentDirectory is not empty.
// The result never carries a trailing separator beyond its root.
func NormalizeAbsolute(path, currentDirectory string) string {
	if currentDirectory != "" && RootLength(path) == 0 {
		path = Combine(currentDirectory, path)
	} else {
		path = NormalizeSlashes(path)
	}
	root := RootLength(path)

	if simple, ok := simpleNormalize(path, root); ok {
		if len(simple) > root {
			return RemoveTrailingSeparator(simple)
		}
		return simple
	}
	return scan(path, root)
}

// scanner holds the state of a single left-to-right pass over a path.
//
// While buf is nil the output so far is exactly path[:upTo]. The first
// deviation copies that prefix into buf and all later output is appended.
type scanner struct {
	path string
	root int
	upTo int
	buf  []byte

	// floor is the output length that ".." never truncates below: the root
	// plus any leading run of unresolvable ".." segments.
	floor int
	// seen is true while the output ends in a segment that ".." may cancel.
	seen bool
}

func scan(path string, root int) string {
	s := scanner{
		path:  path,
		root:  root,
		upTo:  root,
		floor: root,
		seen:  root != 0,
	}
	return s.run()
}

func (s *scanner) run() string {
	path := s.path
	n := len(path)
	i := s.root
	for i < n {
		start := i
		for i < n && path[i] == '/' {
			i++
		}
		if i > start {
			s.deviate()
		}
		if i == n {
			break
		}

		end := n
		if next := strings.IndexByte(path[i:], '/'); next >= 0 {
			end = i + next
		}

		switch {
		case end-i == 1 && path[i] == '.':
			s.deviate()
		case end-i == 2 && path[i] == '.' && path[i+1] == '.':
			s.parent(end)
		default:
			s.segment(i, end)
		}
		i = end + 1
	}

	if s.buf != nil {
		return string(s.buf)
	}
	return path[:s.upTo]
}

// deviate allocates the output buffer from the untouched prefix.
func (s *scanner) deviate() {
	if s.buf == nil {
		s.alloc(s.upTo)
	}
}

func (s *scanner) alloc(n int) {
	s.buf = make([]byte, n, len(s.path))
	copy(s.buf, s.path[:n])
}

func (s *scanner) length() int {
	if s.buf != nil {
		return len(s.buf)
	}
	return s.upTo
}

func (s *scanner) appendSeparator() {
	if len(s.buf) != s.root {
		s.buf = append(s.buf, Separator)
	}
}

func (s *scanner) segment(start, end int) {
	s.seen = true
	if s.buf == nil {
		s.upTo = end
		return
	}
	s.appendSeparator()
	s.buf = append(s.buf, s.path[start:end]...)
}

// parent handles a ".." segment ending at end.
func (s *scanner) parent(end int) {
	if !s.seen {
		if s.buf == nil {
			s.upTo = end
		} else {
			s.appendSeparator()
			s.buf = append(s.buf, ".."...)
		}
		s.floor = s.length()
		return
	}

	var cut int
	if s.buf == nil {
		cut = strings.LastIndexByte(s.path[:s.upTo], '/')
	} else {
		cut = bytes.LastIndexByte(s.buf, '/')
	}
	cut = max(cut, s.floor)

	if s.buf == nil {
		s.alloc(cut)
	} else {
		s.buf = s.buf[:cut]
	}
	if cut == s.floor {
		s.seen = s.root != 0
	}
}
