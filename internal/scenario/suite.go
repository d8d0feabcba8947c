package scenario

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
)

// ErrNoSuites is returned when a suite pattern matches no call logs.
var ErrNoSuites = errors.New("no suites found")

// DefaultPattern matches every file below a suites directory, with or without
// an extension.
const DefaultPattern = "**/*"

// maxParallelLoads bounds concurrent call-log parsing.
const maxParallelLoads = 8

// Suite is a named list of calls.
type Suite struct {
	Name  string
	Path  string // source file, empty for built-in suites
	Calls []Call
}

// ListSuites returns the call logs under dir matching pattern, sorted.
func ListSuites(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid suite pattern %q", pattern)
	}

	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to list suites in %s: %w", dir, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w in %s matching %q", ErrNoSuites, dir, pattern)
	}
	sort.Strings(matches)
	return matches, nil
}

// LoadSuites parses every call log under dir matching pattern.
func LoadSuites(ctx context.Context, dir, pattern string) ([]Suite, error) {
	names, err := ListSuites(dir, pattern)
	if err != nil {
		return nil, err
	}

	suites := make([]Suite, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(dir, filepath.FromSlash(name))
			calls, err := LoadFile(path)
			if err != nil {
				return err
			}
			suites[i] = Suite{
				Name:  strings.TrimSuffix(name, filepath.Ext(name)),
				Path:  path,
				Calls: calls,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return suites, nil
}
