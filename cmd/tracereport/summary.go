package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iafilius/TraceViewer/src/analysis"
	"github.com/iafilius/TraceViewer/src/exitcode"
	"github.com/iafilius/TraceViewer/src/export"
	"github.com/iafilius/TraceViewer/src/logging"
)

var summaryCSV bool

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the packet reception summary of a trace",
	RunE:  runSummary,
}

func init() {
	f := summaryCmd.Flags()
	f.StringVar(&cfg.FilePath, "file", "", "Path to .tr trace file (required)")
	f.BoolVar(&summaryCSV, "csv", false, "Print the Metric,Value table as CSV")
	_ = summaryCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	if err := printSummary(cmd.OutOrStdout(), log, cfg.FilePath, summaryCSV); err != nil {
		log.Error().Err(err).Str("file", cfg.FilePath).Msg("summary failed")
		os.Exit(exitCodeFor(err))
	}
	return nil
}

// printSummary loads path and writes its summary table to w.
func printSummary(w io.Writer, log zerolog.Logger, path string, asCSV bool) error {
	ds, err := analysis.LoadWithLogger(path, log)
	if err != nil {
		return err
	}
	if asCSV {
		return export.WriteSummaryCSV(w, ds.Summary)
	}
	fmt.Fprintf(w, "%-24s %s\n", analysis.SummaryColumns[0], analysis.SummaryColumns[1])
	for _, row := range ds.Summary.Rows() {
		fmt.Fprintf(w, "%-24s %s\n", row[0], row[1])
	}
	return nil
}
