package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/michaelscutari/pathnorm/internal/bench"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress ctrl+c to quit.", m.err)
	}

	var b strings.Builder
	lines := 0
	writeLine := func(line string) {
		b.WriteString(line)
		b.WriteString("\n")
		lines++
	}

	writeLine(titleStyle.Render("pathnorm - Normalization Playground"))

	valueWidth := max(10, m.width-12)
	writeLine(m.inputLine(FieldPath, m.path, valueWidth))
	writeLine(m.inputLine(FieldBase, m.base, valueWidth))
	writeLine("")

	e := m.eval
	writeLine(labelStyle.Render("normalize") + "  " + outputStyle.Render(quote(truncateMiddle(e.Output, valueWidth))))
	absolute := "(no base)"
	if e.Base != "" {
		absolute = quote(truncateMiddle(e.Absolute, valueWidth))
	}
	writeLine(labelStyle.Render("absolute") + "  " + outputStyle.Render(absolute))

	root := fmt.Sprintf("%s, %d bytes", e.Root.Kind, e.Root.Len)
	if e.Root.Len > 0 {
		canonical := strings.ReplaceAll(e.Path, "\\", "/")
		root = rootStyle.Render(canonical[:e.Root.Len]) + " " + root
	}
	writeLine(labelStyle.Render("root") + "  " + root)

	fast := warnStyle.Render("full scan")
	if e.FastPath {
		fast = okStyle.Render("already normalized")
	}
	writeLine(labelStyle.Render("fast path") + "  " + fast)

	check := okStyle.Render("matches reference")
	if !e.Agrees {
		check = errorStyle.Render("DIFFERS FROM REFERENCE")
	}
	writeLine(labelStyle.Render("check") + "  " + check)
	writeLine("")

	// Footer size depends on the stored run summary
	footerLines := 2
	if m.run != nil {
		footerLines += 1 + len(m.comparisons)
	}
	visibleRows := max(3, m.height-lines-footerLines-1)

	writeLine(headerStyle.Render(fmt.Sprintf("HISTORY (%s)", FormatCount(int64(len(m.history))))))
	m.writeHistory(&b, visibleRows, valueWidth)

	if m.run != nil {
		b.WriteString("\n")
		b.WriteString(statsStyle.Render(fmt.Sprintf("Last bench %s (%s) on %s",
			m.run.StartedAt.Format("2006-01-02 15:04"), shortID(m.run.ID), m.run.GoVersion)))
		b.WriteString("\n")
		nameWidth := max(10, m.width-barColWidth-12)
		for _, c := range m.comparisons {
			b.WriteString(formatComparison(c, nameWidth))
			b.WriteString("\n")
		}
	}

	help := m.helpLine()
	if m.cursor >= 0 {
		help = fmt.Sprintf("%s [%d/%d]", help, m.cursor+1, len(m.history))
	}
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

func (m *Model) inputLine(f Field, value string, width int) string {
	label := labelStyle.Render(f.String())
	cursor := ""
	if m.focus == f && m.cursor < 0 {
		label = focusedLabelStyle.Render(f.String())
		cursor = "_"
	}
	return label + "  " + inputStyle.Render(truncateMiddle(value, width)+cursor)
}

func (m *Model) writeHistory(b *strings.Builder, visibleRows, width int) {
	if len(m.history) == 0 {
		b.WriteString(statsStyle.Render("Press Enter to keep an input here."))
		b.WriteString("\n")
		return
	}

	// Newest entries last; scroll so the cursor stays visible
	end := len(m.history)
	if m.cursor >= 0 && m.cursor < end-visibleRows+1 {
		end = m.cursor + visibleRows
	}
	start := max(0, end-visibleRows)

	for i := start; i < end; i++ {
		h := m.history[i]
		line := quote(h.Path)
		if h.Base != "" {
			line += " @ " + quote(h.Base)
		}
		line = truncateRight(line+" → "+quote(h.Output), width)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		} else if !h.Agrees {
			line = errorStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
}

const (
	barBlockWidth = 10                                        // number of block characters
	barPctWidth   = 4                                         // " 78%" or "100%"
	barGapWidth   = 1                                         // space between blocks and pct
	barColWidth   = barBlockWidth + barGapWidth + barPctWidth // 15
)

// formatComparison renders a suite with a bar of candidate time as a share of
// baseline time.
func formatComparison(c bench.Comparison, nameWidth int) string {
	name := truncateRight(c.Suite, nameWidth)
	pad := strings.Repeat(" ", max(0, nameWidth-len(name)))
	bar := formatBar(c.Candidate.NsPerOp(), c.Baseline.NsPerOp())
	speedup := fmt.Sprintf("%5.2fx", c.Speedup())
	if !c.DigestsMatch() {
		speedup += errorStyle.Render(" output differs")
	}
	return name + pad + "  " + bar + "  " + speedup
}

func formatBar(val, total float64) string {
	if total <= 0 || val <= 0 {
		empty := strings.Repeat("░", barBlockWidth)
		return barEmptyStyle.Render(empty) + fmt.Sprintf(" %3d%%", 0)
	}

	pct := val / total * 100
	if pct > 100 {
		pct = 100
	}

	filled := int(math.Round(pct / 100 * float64(barBlockWidth)))
	if filled < 1 {
		filled = 1
	}
	if filled > barBlockWidth {
		filled = barBlockWidth
	}

	filledStr := barFilledStyle.Render(strings.Repeat("█", filled))
	emptyStr := barEmptyStyle.Render(strings.Repeat("░", barBlockWidth-filled))
	return filledStr + emptyStr + fmt.Sprintf(" %3d%%", int(math.Round(pct)))
}

func quote(s string) string {
	return `"` + s + `"`
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncateRight(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

func truncateMiddle(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	head := (maxLen - 3) / 2
	tail := maxLen - 3 - head
	return s[:head] + "..." + s[len(s)-tail:]
}
