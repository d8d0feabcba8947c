package tui

import (
	"errors"

	"github.com/michaelscutari/pathnorm/internal/db"

	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case runLoadedMsg:
		// An empty database is not an error for the playground
		if msg.err != nil && !errors.Is(msg.err, db.ErrRunNotFound) {
			m.err = msg.err
			return m, nil
		}
		m.run = msg.run
		m.comparisons = msg.comparisons
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.cursor >= 0 {
		return m.handleHistoryKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "tab", "shift+tab":
		if m.focus == FieldPath {
			m.focus = FieldBase
		} else {
			m.focus = FieldPath
		}
		return m, nil

	case "enter":
		m.save()
		return m, nil

	case "up":
		if len(m.history) > 0 {
			m.recall(len(m.history) - 1)
		}
		return m, nil

	case "ctrl+l":
		m.path = ""
		m.base = ""
		m.evaluate()
		return m, nil

	case "ctrl+r":
		if m.db != nil {
			return m, m.loadLatestRun
		}
		return m, nil

	case "backspace":
		f := m.field()
		if len(*f) > 0 {
			runes := []rune(*f)
			*f = string(runes[:len(runes)-1])
			m.evaluate()
		}
		return m, nil
	}

	if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
		*m.field() += string(msg.Runes)
		m.evaluate()
		return m, nil
	}

	return m, nil
}

func (m *Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.recall(m.cursor - 1)
		}
		return m, nil

	case "down", "j":
		if m.cursor < len(m.history)-1 {
			m.recall(m.cursor + 1)
		} else {
			m.cursor = -1
		}
		return m, nil

	case "home", "g":
		m.recall(0)
		return m, nil

	case "end", "G":
		m.recall(len(m.history) - 1)
		return m, nil

	case "enter", "esc":
		m.cursor = -1
		return m, nil
	}

	return m, nil
}
