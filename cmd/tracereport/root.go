package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/iafilius/TraceViewer/src/analysis"
	"github.com/iafilius/TraceViewer/src/config"
	"github.com/iafilius/TraceViewer/src/exitcode"
	"github.com/iafilius/TraceViewer/src/export"
	"github.com/iafilius/TraceViewer/src/trace"
)

var (
	cfg        = config.Default()
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "tracereport",
	Short: "Summarize and export NS-3 packet traces without a display",
	Long:  "Parses NS-3 ASCII trace files, prints the reception summary and writes the same tables and plots the desktop viewer saves.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return applyConfigFile(cmd)
	},
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	pf.StringVar(&configPath, "config", "", "Optional YAML config file")
}

// applyConfigFile merges the YAML file into cfg. Flags given on the command line win.
func applyConfigFile(cmd *cobra.Command) error {
	if configPath == "" {
		return nil
	}
	merged := cfg
	if err := merged.LoadFromFile(configPath); err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-format") {
		merged.LogFormat = cfg.LogFormat
	}
	if flags.Changed("log-level") {
		merged.LogLevel = cfg.LogLevel
	}
	if flags.Changed("plot-width-in") {
		merged.PlotWidthInch = cfg.PlotWidthInch
	}
	if flags.Changed("plot-height-in") {
		merged.PlotHeightInch = cfg.PlotHeightInch
	}
	cfg = merged
	return nil
}

// exitCodeFor maps a load or export failure to its process exit code.
func exitCodeFor(err error) int {
	var pe *fs.PathError
	switch {
	case err == nil:
		return exitcode.Success
	case errors.Is(err, export.ErrUnsupportedFormat), errors.Is(err, export.ErrNothingToExport):
		return exitcode.ExportError
	case errors.Is(err, trace.ErrFormat):
		return exitcode.FormatError
	case errors.Is(err, analysis.ErrEmptyDataset):
		return exitcode.EmptyDataset
	case errors.As(err, &pe):
		return exitcode.IOError
	}
	return exitcode.ExportError
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitcode.UsageError)
	}
}
