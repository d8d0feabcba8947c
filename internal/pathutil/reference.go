package pathutil

import "strings"

// ReferenceNormalize is the component-reduction form of Normalize: it splits
// the path into segments, reduces them and joins the result. It allocates on
// every call and serves as the oracle and benchmark baseline for Normalize.
func ReferenceNormalize(path string) string {
	path = NormalizeSlashes(path)
	normalized := ReferenceNormalizeAbsolute(path, "")
	if normalized != "" && HasTrailingSeparator(path) {
		return EnsureTrailingSeparator(normalized)
	}
	return normalized
}

// ReferenceNormalizeAbsolute is the component-reduction form of
// NormalizeAbsolute.
func ReferenceNormalizeAbsolute(path, currentDirectory string) string {
	if currentDirectory != "" && RootLength(path) == 0 {
		path = Combine(currentDirectory, path)
	} else {
		path = NormalizeSlashes(path)
	}
	return joinComponents(reduceComponents(pathComponents(path)))
}

// pathComponents returns the root followed by every segment after it.
func pathComponents(path string) []string {
	root := RootLength(path)
	components := []string{path[:root]}
	if root < len(path) {
		components = append(components, strings.Split(path[root:], "/")...)
	}
	return components
}

func reduceComponents(components []string) []string {
	reduced := []string{components[0]}
	for _, c := range components[1:] {
		switch c {
		case "", ".":
			continue
		case "..":
			if len(reduced) > 1 && reduced[len(reduced)-1] != ".." {
				reduced = reduced[:len(reduced)-1]
				continue
			}
			if len(reduced) == 1 && reduced[0] != "" {
				// ".." never climbs above a root
				continue
			}
		}
		reduced = append(reduced, c)
	}
	return reduced
}

func joinComponents(components []string) string {
	return components[0] + strings.Join(components[1:], "/")
}
