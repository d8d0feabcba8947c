package main

import (
	"os"

	"github.com/michaelscutari/pathnorm/internal/report"
	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [path...]",
	Short: "Show the root of each path",
	Long: `Classify reports which kind of root each path starts with (POSIX, drive,
UNC, URL or file URL) and how many bytes of it are preserved verbatim
during normalization.`,
	RunE: runClassify,
}

var classifyFormat string

func init() {
	classifyCmd.Flags().StringVarP(&classifyFormat, "format", "f", "", "Output format: text, json or yaml (default from config)")
}

func runClassify(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(classifyFormat)
	if err != nil {
		return err
	}

	inputs, err := pathArgs(args, os.Stdin)
	if err != nil {
		return err
	}

	records := make([]report.RootRecord, 0, len(inputs))
	for _, in := range inputs {
		records = append(records, report.NewRootRecord(in))
	}
	return report.WriteRoots(os.Stdout, format, records)
}
