package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/michaelscutari/pathnorm/internal/entry"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// CharDiff renders the character-level difference from want to got inline.
// Removed text is wrapped in [-…-] and inserted text in {+…+} so the markers
// survive when color is off.
func CharDiff(got, want string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(want, got, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			b.WriteString(StyleError.Render("[-" + d.Text + "-]"))
		case diffmatchpatch.DiffInsert:
			b.WriteString(StyleSuccess.Render("{+" + d.Text + "+}"))
		case diffmatchpatch.DiffEqual:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}

// WriteMismatch prints one mismatch with its call and an inline diff.
func WriteMismatch(w io.Writer, m entry.Mismatch) {
	loc := m.Suite
	if m.Line > 0 {
		loc = fmt.Sprintf("%s:%d", m.Suite, m.Line)
	}
	args := fmt.Sprintf("%q", m.Path)
	if m.Base != "" {
		args += fmt.Sprintf(", %q", m.Base)
	}

	fmt.Fprintf(w, "%s %s(%s)\n", StyleWarning.Render(loc), m.Call, args)
	fmt.Fprintf(w, "  got:  %q\n", m.Got)
	fmt.Fprintf(w, "  want: %q\n", m.Want)
	fmt.Fprintf(w, "  diff: %s\n", CharDiff(m.Got, m.Want))
}
