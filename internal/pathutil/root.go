package pathutil

import "strings"

// RootKind identifies the form of a path's root prefix.
type RootKind uint8

const (
	RootNone  RootKind = 0 // relative path
	RootPosix RootKind = 1 // "/"
	RootDrive RootKind = 2 // "c:/" or "c:"
	RootUNC   RootKind = 3 // "//server/" or "//server"
	RootURL   RootKind = 4 // "scheme://authority/"
)

func (k RootKind) String() string {
	switch k {
	case RootPosix:
		return "posix"
	case RootDrive:
		return "drive"
	case RootUNC:
		return "unc"
	case RootURL:
		return "url"
	default:
		return "none"
	}
}

// Root is the classified root prefix of a path: path[:Len].
type Root struct {
	Kind RootKind
	Len  int
}

const urlSchemeSeparator = "://"

// ClassifyRoot reports the kind and length of the root prefix of path.
// Both '/' and '\' are accepted as separators.
func ClassifyRoot(path string) Root {
	if path == "" {
		return Root{}
	}
	ch0 := path[0]

	if isSeparator(ch0) {
		if len(path) < 2 || path[1] != ch0 {
			return Root{Kind: RootPosix, Len: 1}
		}
		p := strings.IndexByte(path[2:], ch0)
		if p < 0 {
			return Root{Kind: RootUNC, Len: len(path)}
		}
		return Root{Kind: RootUNC, Len: p + 2 + 1}
	}

	if isVolumeChar(ch0) && len(path) >= 2 && path[1] == ':' {
		if len(path) == 2 {
			return Root{Kind: RootDrive, Len: 2}
		}
		if isSeparator(path[2]) {
			return Root{Kind: RootDrive, Len: 3}
		}
	}

	schemeEnd := strings.Index(path, urlSchemeSeparator)
	if schemeEnd < 0 {
		return Root{}
	}
	authorityStart := schemeEnd + len(urlSchemeSeparator)
	slash := strings.IndexByte(path[authorityStart:], '/')
	if slash < 0 {
		return Root{Kind: RootURL, Len: len(path)}
	}
	authorityEnd := authorityStart + slash

	// Local file URLs keep their DOS volume in the root: file:///c:/
	scheme := path[:schemeEnd]
	authority := path[authorityStart:authorityEnd]
	if scheme == "file" && (authority == "" || authority == "localhost") &&
		authorityEnd+1 < len(path) && isVolumeChar(path[authorityEnd+1]) {
		if end := fileURLVolumeEnd(path, authorityEnd+2); end >= 0 {
			if end < len(path) && path[end] == '/' {
				return Root{Kind: RootURL, Len: end + 1}
			}
			if end == len(path) {
				return Root{Kind: RootURL, Len: end}
			}
		}
	}
	return Root{Kind: RootURL, Len: authorityEnd + 1}
}

// RootLength returns the length of the root prefix of path, or 0 when the
// path is relative.
func RootLength(path string) int {
	return ClassifyRoot(path).Len
}

// fileURLVolumeEnd returns the index just past a volume separator (":" or
// "%3a") starting at start, or -1.
func fileURLVolumeEnd(url string, start int) int {
	if start >= len(url) {
		return -1
	}
	if url[start] == ':' {
		return start + 1
	}
	if url[start] == '%' && start+2 < len(url) && url[start+1] == '3' &&
		(url[start+2] == 'a' || url[start+2] == 'A') {
		return start + 3
	}
	return -1
}

func isVolumeChar(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isSeparator(c byte) bool {
	return c == '/' || c == '\\'
}
