package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/michaelscutari/pathnorm/internal/store"
	"github.com/michaelscutari/pathnorm/internal/tui"
	"github.com/spf13/cobra"

	tea "github.com/charmbracelet/bubbletea"
)

var tuiCmd = &cobra.Command{
	Use:   "tui [path]",
	Short: "Try normalization interactively",
	Long: `Open an interactive playground that normalizes a path as you type, shows
its root and checks the result against the reference implementation. When
a results database exists the latest benchmark is shown alongside.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTUI,
}

var (
	tuiDB   string
	tuiBase string
)

func init() {
	tuiCmd.Flags().StringVarP(&tuiDB, "db", "d", "", "Results database path (default from config)")
	tuiCmd.Flags().StringVarP(&tuiBase, "base", "b", "", "Initial base directory")
}

func runTUI(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}

	var database *sql.DB
	dbPath := resolveDBPath(tuiDB)
	if _, err := os.Stat(dbPath); err == nil {
		database, err = store.NewManager(dbPath, cfg.Retention).OpenReader()
		if err != nil {
			return err
		}
		defer database.Close()
	} else {
		logger.Debug("no results database, benchmark panel disabled", "path", dbPath)
	}

	model := tui.NewModel(database, path, tuiBase)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
