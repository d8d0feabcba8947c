package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSlashes(t *testing.T) {
	assert.Equal(t, "a/b/c", NormalizeSlashes("a\\b/c"))
	assert.Equal(t, "//server/share", NormalizeSlashes("\\\\server\\share"))

	clean := "/already/clean"
	allocs := testing.AllocsPerRun(10, func() {
		_ = NormalizeSlashes(clean)
	})
	assert.Zero(t, allocs)
}

func TestCombine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		base  string
		paths []string
		want  string
	}{
		{"relative onto rooted", "/base", []string{"a"}, "/base/a"},
		{"base with separator", "/base/", []string{"a"}, "/base/a"},
		{"rooted replaces base", "/base", []string{"/other"}, "/other"},
		{"drive replaces base", "/base", []string{"c:\\x"}, "c:/x"},
		{"empty base", "", []string{"a/b"}, "a/b"},
		{"empty elements skipped", "/base", []string{"", "a", "", "b"}, "/base/a/b"},
		{"backslashes", "c:\\dir", []string{"sub\\file"}, "c:/dir/sub/file"},
		{"no elements", "c:\\dir", nil, "c:/dir"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Combine(tc.base, tc.paths...))
		})
	}
}

func TestTrailingSeparator(t *testing.T) {
	assert.True(t, HasTrailingSeparator("/a/"))
	assert.True(t, HasTrailingSeparator("a\\"))
	assert.False(t, HasTrailingSeparator(""))
	assert.False(t, HasTrailingSeparator("/a"))

	assert.Equal(t, "/a/", EnsureTrailingSeparator("/a"))
	assert.Equal(t, "/a/", EnsureTrailingSeparator("/a/"))
	assert.Equal(t, "/", EnsureTrailingSeparator(""))

	assert.Equal(t, "/a", RemoveTrailingSeparator("/a/"))
	assert.Equal(t, "/a", RemoveTrailingSeparator("/a"))
	assert.Equal(t, "/a/", RemoveTrailingSeparator("/a//"))
	assert.Equal(t, "", RemoveTrailingSeparator("/"))
}
