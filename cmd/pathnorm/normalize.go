package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/michaelscutari/pathnorm/internal/report"
	"github.com/spf13/cobra"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [path...]",
	Short: "Normalize paths given as arguments or on stdin",
	Long: `Normalize resolves . and .. segments and collapses separators in each path.
With --base, relative paths are resolved against the base directory first.
When no paths are given they are read from stdin, one per line.`,
	Aliases: []string{"norm"},
	RunE:    runNormalize,
}

var (
	normalizeBase   string
	normalizeFormat string
)

func init() {
	normalizeCmd.Flags().StringVarP(&normalizeBase, "base", "b", "", "Base directory for relative paths")
	normalizeCmd.Flags().StringVarP(&normalizeFormat, "format", "f", "", "Output format: text, json or yaml (default from config)")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(normalizeFormat)
	if err != nil {
		return err
	}

	inputs, err := pathArgs(args, os.Stdin)
	if err != nil {
		return err
	}

	records := make([]report.PathRecord, 0, len(inputs))
	for _, in := range inputs {
		records = append(records, report.NewPathRecord(in, normalizeBase))
	}
	return report.WritePaths(os.Stdout, format, records)
}

func outputFormat(flag string) (report.Format, error) {
	if flag == "" {
		flag = cfg.Output.Format
	}
	return report.ParseFormat(flag)
}

// pathArgs returns args, or the lines of stdin when args is empty.
func pathArgs(args []string, stdin io.Reader) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if stdinIsTerminal() {
		return nil, fmt.Errorf("no paths given (pass them as arguments or on stdin)")
	}

	var lines []string
	sc := bufio.NewScanner(stdin)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return lines, nil
}
