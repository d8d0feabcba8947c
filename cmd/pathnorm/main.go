package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/michaelscutari/pathnorm/internal/config"
	"github.com/michaelscutari/pathnorm/internal/logging"
	"github.com/michaelscutari/pathnorm/internal/report"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var (
	cfgFile string
	verbose bool
	noColor bool

	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pathnorm",
	Short: "A lexical path normalizer with replay and benchmark tooling",
	Long: `pathnorm canonicalizes filesystem-style paths without touching the
filesystem: it resolves . and .. segments, collapses separators and keeps
POSIX, drive, UNC and URL roots intact. It also replays recorded call logs,
benchmarks the normalizer against a reference implementation and keeps
results in SQLite.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/.config/pathnorm/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(tuiCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = c

	logger = logging.Setup(os.Stderr, logging.Options{Verbose: verbose, Prefix: "pathnorm"})
	logger.Debug("config loaded", "suites_dir", cfg.SuitesDir, "db_path", cfg.DBPath)

	if noColor || !cfg.Output.Color || !stdoutIsTerminal() {
		report.SetNoColor(true)
	}
	return nil
}

func stdoutIsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func stderrIsTerminal() bool {
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}

func stdinIsTerminal() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}
