package tui

import (
	"database/sql"

	"github.com/michaelscutari/pathnorm/internal/bench"
	"github.com/michaelscutari/pathnorm/internal/db"
	"github.com/michaelscutari/pathnorm/internal/entry"
	"github.com/michaelscutari/pathnorm/internal/pathutil"

	tea "github.com/charmbracelet/bubbletea"
)

// Field identifies the input that receives keystrokes.
type Field int

const (
	FieldPath Field = iota
	FieldBase
)

func (f Field) String() string {
	if f == FieldBase {
		return "base"
	}
	return "path"
}

const maxHistory = 200

// Evaluation holds everything the playground shows for one input pair.
type Evaluation struct {
	Path     string
	Base     string
	Output   string // Normalize(Path)
	Absolute string // NormalizeAbsolute(Path, Base)
	Root     pathutil.Root
	FastPath bool
	Agrees   bool // both entry points match the reference
}

// Evaluate runs both entry points and the reference on path and base.
func Evaluate(path, base string) Evaluation {
	e := Evaluation{
		Path:     path,
		Base:     base,
		Output:   pathutil.Normalize(path),
		Absolute: pathutil.NormalizeAbsolute(path, base),
		Root:     pathutil.ClassifyRoot(pathutil.NormalizeSlashes(path)),
		FastPath: pathutil.IsNormalized(path),
	}
	e.Agrees = e.Output == pathutil.ReferenceNormalize(path) &&
		e.Absolute == pathutil.ReferenceNormalizeAbsolute(path, base)
	return e
}

// Model holds the TUI state.
type Model struct {
	db          *sql.DB
	path        string
	base        string
	focus       Field
	eval        Evaluation
	history     []Evaluation
	cursor      int // index into history, -1 while editing
	width       int
	height      int
	run         *entry.Run
	comparisons []bench.Comparison
	err         error
}

// NewModel creates a new playground. The database is optional; when set the
// latest benchmark run is summarized in the footer.
func NewModel(database *sql.DB, path, base string) *Model {
	m := &Model{
		db:     database,
		path:   path,
		base:   base,
		cursor: -1,
	}
	m.evaluate()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.db == nil {
		return nil
	}
	return m.loadLatestRun
}

type runLoadedMsg struct {
	run         *entry.Run
	comparisons []bench.Comparison
	err         error
}

func (m *Model) loadLatestRun() tea.Msg {
	run, err := db.LatestRun(m.db, entry.RunBench)
	if err != nil {
		return runLoadedMsg{err: err}
	}

	results, err := db.LoadResults(m.db, run.ID, "suite")
	if err != nil {
		return runLoadedMsg{err: err}
	}

	return runLoadedMsg{
		run:         run,
		comparisons: bench.Compare(results, "reference", "scanner"),
	}
}

func (m *Model) helpLine() string {
	if m.cursor >= 0 {
		return "↑/↓ browse history | Enter: edit | Esc: back | ctrl+c: quit"
	}
	return "Tab: switch field | Enter: save | ↑: history | ctrl+l: clear | Esc: quit"
}

func (m *Model) evaluate() {
	m.eval = Evaluate(m.path, m.base)
}

func (m *Model) field() *string {
	if m.focus == FieldBase {
		return &m.base
	}
	return &m.path
}

func (m *Model) save() {
	if m.path == "" && m.base == "" {
		return
	}
	if n := len(m.history); n > 0 && m.history[n-1].Path == m.path && m.history[n-1].Base == m.base {
		return
	}
	m.history = append(m.history, m.eval)
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
}

func (m *Model) recall(i int) {
	m.cursor = i
	m.path = m.history[i].Path
	m.base = m.history[i].Base
	m.evaluate()
}
