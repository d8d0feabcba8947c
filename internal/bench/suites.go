package bench

import (
	"github.com/michaelscutari/pathnorm/internal/scenario"
)

type input struct {
	path string
	base string
}

var nonNormalizedInputs = []input{
	{"/.", ""},
	{"/./", ""},
	{"/../", ""},
	{"/a/", ""},
	{"/a/.", ""},
	{"/a/foo.", ""},
	{"/a/./", ""},
	{"/a/./b", ""},
	{"/a/./b/", ""},
	{"/a/..", ""},
	{"/a/../", ""},
	{"/a/../", ""},
	{"/a/../b", ""},
	{"/a/../b/", ""},
	{"/a/..", ""},
	{"/a/..", "/"},
	{"/a/..", "b/"},
	{"/a/..", "/b"},
	{"/a/.", "b"},
	{"/a/.", "."},
}

var normalizedInputs = []input{
	{"/a/b", ""},
	{"/one/two/three", ""},
	{"/users/root/project/src/foo.ts", ""},
}

var longNormalizedInputs = []input{
	{"/a/b/c/d/e/f/g/h/i/j/k/l/m/n/o/p/q/r/s/t/u/v/w/x/y/z", ""},
	{"/one/two/three/four/five/six/seven/eight/nine/ten/eleven/twelve/thirteen/fourteen/fifteen/sixteen/seventeen/eighteen/nineteen/twenty", ""},
	{"/users/root/project/src/foo/bar/baz/qux/quux/corge/grault/garply/waldo/fred/plugh/xyzzy/thud", ""},
	{"/lorem/ipsum/dolor/sit/amet/consectetur/adipiscing/elit/sed/do/eiusmod/tempor/incididunt/ut/labore/et/dolore/magna/aliqua/ut/enim/ad/minim/veniam", ""},
}

// Builtin returns the built-in suites. Each input set is measured once
// through each entry point.
func Builtin() []scenario.Suite {
	sets := []struct {
		name   string
		inputs []input
	}{
		{"non-normalized inputs", nonNormalizedInputs},
		{"normalized inputs", normalizedInputs},
		{"normalized inputs (long)", longNormalizedInputs},
	}

	var suites []scenario.Suite
	for _, set := range sets {
		for _, kind := range []scenario.Kind{scenario.KindNormalizeAbsolute, scenario.KindNormalize} {
			calls := make([]scenario.Call, len(set.inputs))
			for i, in := range set.inputs {
				calls[i] = scenario.Call{Kind: kind, Path: in.path}
				if kind == scenario.KindNormalizeAbsolute {
					calls[i].Base = in.base
				}
			}
			suites = append(suites, scenario.Suite{
				Name:  kind.String() + " - " + set.name,
				Calls: calls,
			})
		}
	}
	return suites
}
