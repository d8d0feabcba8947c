package pathutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{".", ""},
		{"./", ""},
		{"..", ".."},
		{"../", "../"},
		{"/", "/"},
		{"/.", "/"},
		{"/./", "/"},
		{"/../", "/"},
		{"/a/", "/a/"},
		{"/a/.", "/a"},
		{"/a/foo.", "/a/foo."},
		{"/a/./", "/a/"},
		{"/a/./b", "/a/b"},
		{"/a/./b/", "/a/b/"},
		{"/a/..", "/"},
		{"/a/../", "/"},
		{"/a/../b", "/b"},
		{"/a/../b/", "/b/"},
		{"../a", "../a"},
		{"a/..", ""},
		{"a/../..", ".."},
		{"a/../../b", "../b"},
		{"../x/../..", "../.."},
		{"../../a/b/../../..", "../../.."},
		{"./a", "a"},
		{".//a", "a"},
		{"././a", "a"},
		{"a//b", "a/b"},
		{"a///", "a/"},
		{"a/b/c/../../d", "a/d"},
		{"/a/b/../../..", "/"},
		{"/a/.../b", "/a/.../b"},
		{"/a/..b/.c", "/a/..b/.c"},
		{"C:\\foo\\..\\bar", "C:/bar"},
		{"c:/..", "c:/"},
		{"C://a", "C:/a"},
		{"C://.", "C:/"},
		{"c:", "c:"},
		{"//server/share/../x", "//server/x"},
		{"\\\\server\\share\\.\\x\\", "//server/share/x/"},
		{"http://example.com/a/../b", "http://example.com/b"},
		{"http://example.com/..", "http://example.com/"},
		{"file:///c:/a/../../b", "file:///c:/b"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Normalize(tc.input), "Normalize(%q)", tc.input)
		})
	}
}

func TestNormalizeAbsolute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		base string
		want string
	}{
		{"/a/..", "", "/"},
		{"/a/..", "/", "/"},
		{"/a/..", "b/", "/"},
		{"/a/..", "/b", "/"},
		{"/a/.", "b", "/a"},
		{"/a/.", ".", "/a"},
		{"/a/", "", "/a"},
		{"/a/./", "", "/a"},
		{"a/..", "/base/", "/base"},
		{"a/../..", "/base/", "/"},
		{"a/b", "/base", "/base/a/b"},
		{"a/b/", "/base", "/base/a/b"},
		{"../x", "c:\\work\\dir", "c:/work/x"},
		{"..", "", ".."},
		{"a", "", "a"},
		{"", "", ""},
		{"", "/base/", "/base"},
		{"c:", "/base", "c:"},
		{"/", "/base", "/"},
		{"x/./y", "http://host/root", "http://host/root/x/y"},
	}

	for _, tc := range tests {
		t.Run(tc.path+"|"+tc.base, func(t *testing.T) {
			t.Parallel()
			got := NormalizeAbsolute(tc.path, tc.base)
			assert.Equal(t, tc.want, got, "NormalizeAbsolute(%q, %q)", tc.path, tc.base)
		})
	}
}

// corpus enumerates paths built from every combination of a root and up to
// four segments, with and without a trailing separator.
func corpus() []string {
	roots := []string{"", "/", "c:/", "c:\\", "//srv/", "http://host/", "file:///d:/"}
	segments := []string{"a", "bb", ".", "..", "", "..."}

	var seqs [][]string
	var build func(prefix []string, depth int)
	build = func(prefix []string, depth int) {
		seqs = append(seqs, append([]string(nil), prefix...))
		if depth == 0 {
			return
		}
		for _, s := range segments {
			build(append(prefix, s), depth-1)
		}
	}
	build(nil, 4)

	var paths []string
	for _, root := range roots {
		for _, seq := range seqs {
			p := root + strings.Join(seq, "/")
			paths = append(paths, p, p+"/")
		}
	}
	return paths
}

func TestNormalizeMatchesReference(t *testing.T) {
	t.Parallel()

	for _, p := range corpus() {
		require.Equal(t, ReferenceNormalize(p), Normalize(p), "Normalize(%q)", p)
	}
}

func TestNormalizeAbsoluteMatchesReference(t *testing.T) {
	t.Parallel()

	bases := []string{"", "/base", "/base/", "c:/work/", "../up", "rel/dir/"}
	for _, p := range corpus() {
		for _, base := range bases {
			require.Equal(t, ReferenceNormalizeAbsolute(p, base), NormalizeAbsolute(p, base),
				"NormalizeAbsolute(%q, %q)", p, base)
		}
	}
}

func TestNormalizeProperties(t *testing.T) {
	t.Parallel()

	for _, p := range corpus() {
		got := Normalize(p)

		assert.Equal(t, got, Normalize(got), "idempotence for %q", p)

		canonical := NormalizeSlashes(p)
		root := RootLength(canonical)
		if root > 0 {
			require.GreaterOrEqual(t, len(got), root, "root of %q", p)
			assert.Equal(t, canonical[:root], got[:root], "root invariance for %q", p)
		}

		assert.NotContains(t, got[root:], "/./", "dot segment in %q", got)
		assert.NotContains(t, got[root:], "//", "empty segment in %q", got)

		if got != "" && HasTrailingSeparator(canonical) {
			assert.True(t, strings.HasSuffix(got, "/"), "trailing separator lost for %q", p)
			assert.False(t, strings.HasSuffix(got[root:], "//"), "doubled trailing separator for %q", p)
		}

		if IsNormalized(p) {
			assert.Equal(t, p, got, "fast path changed %q", p)
		}
	}
}

func TestSimpleNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"/a/b", "/a/b", true},
		{"a/b/", "a/b/", true},
		{"/a/./b", "/a/b", true},
		{"./a", "a", true},
		{"/./", "/", true},
		{".//a", "", false},
		{"/a/.", "", false},
		{"/a/../b", "", false},
		{"a//b", "", false},
	}

	for _, tc := range tests {
		got, ok := simpleNormalize(tc.input, RootLength(tc.input))
		assert.Equal(t, tc.ok, ok, "simpleNormalize(%q) ok", tc.input)
		if tc.ok {
			assert.Equal(t, tc.want, got, "simpleNormalize(%q)", tc.input)
		}
	}
}

func TestScanDoesNotAllocateForNormalizedInput(t *testing.T) {
	inputs := []struct {
		path string
		root int
	}{
		{"/users/root/project/src/foo.ts", 1},
		{"/users/root/project/src/", 1},
		{"../../a/b/c", 0},
		{"c:/one/two/three", 3},
	}

	for _, in := range inputs {
		var out string
		allocs := testing.AllocsPerRun(100, func() {
			out = scan(in.path, in.root)
		})
		assert.Zero(t, allocs, "scan(%q) allocated", in.path)
		assert.Equal(t, strings.TrimSuffix(in.path, "/"), out)
	}
}

func TestNormalizeDoesNotAllocateForNormalizedInput(t *testing.T) {
	for _, p := range []string{"/a/b", "/one/two/three", "relative/path/", "c:/x/y"} {
		allocs := testing.AllocsPerRun(100, func() {
			_ = Normalize(p)
		})
		assert.Zero(t, allocs, "Normalize(%q) allocated", p)
	}
}

func BenchmarkNormalize(b *testing.B) {
	inputs := []string{
		"/users/root/project/src/foo.ts",
		"/a/./b/../c",
		"/lorem/ipsum/dolor/sit/amet/consectetur/adipiscing/elit",
	}
	b.ReportAllocs()
	for b.Loop() {
		for _, p := range inputs {
			Normalize(p)
		}
	}
}

func BenchmarkReferenceNormalize(b *testing.B) {
	inputs := []string{
		"/users/root/project/src/foo.ts",
		"/a/./b/../c",
		"/lorem/ipsum/dolor/sit/amet/consectetur/adipiscing/elit",
	}
	b.ReportAllocs()
	for b.Loop() {
		for _, p := range inputs {
			ReferenceNormalize(p)
		}
	}
}
