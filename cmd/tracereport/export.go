package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iafilius/TraceViewer/src/analysis"
	"github.com/iafilius/TraceViewer/src/exitcode"
	"github.com/iafilius/TraceViewer/src/export"
	"github.com/iafilius/TraceViewer/src/logging"
	"github.com/iafilius/TraceViewer/src/render"
)

// exportTargets holds the output path per export kind; empty paths are skipped.
type exportTargets struct {
	Summary  string
	Detail   string
	Plot     string
	Combined string
}

var targets exportTargets

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write summary, detail, plot and combined outputs for a trace",
	Long: "Writes any subset of the viewer's exports. The format follows the file extension:\n" +
		"  --summary   " + strings.Join(export.Formats(export.Summary), " ") + "\n" +
		"  --detail    " + strings.Join(export.Formats(export.Detail), " ") + "\n" +
		"  --plot      " + strings.Join(export.Formats(export.PlotImage), " ") + "\n" +
		"  --combined  " + strings.Join(export.Formats(export.Combined), " "),
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&cfg.FilePath, "file", "", "Path to .tr trace file (required)")
	f.StringVar(&targets.Summary, "summary", "", "Summary table output path")
	f.StringVar(&targets.Detail, "detail", "", "Detail table output path")
	f.StringVar(&targets.Plot, "plot", "", "Reception plot output path")
	f.StringVar(&targets.Combined, "combined", "", "Plot plus summary output path")
	f.Float64Var(&cfg.PlotWidthInch, "plot-width-in", cfg.PlotWidthInch, "Plot width in inches")
	f.Float64Var(&cfg.PlotHeightInch, "plot-height-in", cfg.PlotHeightInch, "Plot height in inches")
	_ = exportCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	if targets == (exportTargets{}) {
		log.Error().Msg("nothing to do: pass at least one of --summary, --detail, --plot, --combined")
		os.Exit(exitcode.UsageError)
	}
	ds, err := analysis.LoadWithLogger(cfg.FilePath, log)
	if err != nil {
		log.Error().Err(err).Str("file", cfg.FilePath).Msg("load failed")
		os.Exit(exitCodeFor(err))
	}
	size := render.Size{Width: cfg.PlotWidthInch, Height: cfg.PlotHeightInch}
	if err := writeExports(cmd.OutOrStdout(), log, ds, targets, size); err != nil {
		os.Exit(exitcode.ExportError)
	}
	return nil
}

// writeExports writes every requested output. It keeps going after a failure and
// returns the first error.
func writeExports(w io.Writer, log zerolog.Logger, ds *analysis.Dataset, t exportTargets, size render.Size) error {
	jobs := []struct {
		kind export.Kind
		path string
		save func(string) error
	}{
		{export.Summary, t.Summary, func(p string) error { return export.SaveSummary(p, ds.Summary) }},
		{export.Detail, t.Detail, func(p string) error { return export.SaveDetail(p, ds.Table) }},
		{export.PlotImage, t.Plot, func(p string) error { return export.SavePlot(p, ds.Table, size) }},
		{export.Combined, t.Combined, func(p string) error { return export.SaveCombined(p, ds.Table, ds.Summary) }},
	}
	var first error
	for _, j := range jobs {
		if j.path == "" {
			continue
		}
		if err := j.save(j.path); err != nil {
			log.Error().Err(err).Str("kind", j.kind.String()).Str("path", j.path).Msg("export failed")
			if first == nil {
				first = err
			}
			continue
		}
		log.Info().Str("kind", j.kind.String()).Str("path", j.path).Msg("exported")
		fmt.Fprintf(w, "%s saved to %s\n", j.kind, j.path)
	}
	return first
}
