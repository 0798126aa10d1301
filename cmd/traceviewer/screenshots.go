package main

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/iafilius/TraceViewer/cmd/traceviewer/uihelpers"
	"github.com/iafilius/TraceViewer/src/analysis"
	"github.com/iafilius/TraceViewer/src/config"
	"github.com/iafilius/TraceViewer/src/export"
	"github.com/iafilius/TraceViewer/src/render"
)

// screenshotWidth is the preview width used when no window exists.
var screenshotWidth = 1100

// RunScreenshotsMode loads filePath and writes the on-screen plot preview plus the
// exported plot, summary and combined images under outDir.
// It runs headlessly without creating a UI window.
func RunScreenshotsMode(filePath, outDir string, cfg config.Config, log zerolog.Logger) error {
	if filePath == "" {
		return fmt.Errorf("screenshots need -file")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create out dir: %w", err)
	}
	ds, err := analysis.LoadWithLogger(filePath, log)
	if err != nil {
		return err
	}

	w, h := uihelpers.ComputeChartDimensions(screenshotWidth)
	img, err := render.PreviewPNG(ds.Table, w, h)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("png encode preview: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "plot_preview.png"), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write preview: %w", err)
	}

	size := render.Size{Width: cfg.PlotWidthInch, Height: cfg.PlotHeightInch}
	toRender := []struct {
		name string
		fn   func(path string) error
	}{
		{"plot.png", func(p string) error { return export.SavePlot(p, ds.Table, size) }},
		{"summary.png", func(p string) error { return export.SaveSummary(p, ds.Summary) }},
		{"combined.png", func(p string) error { return export.SaveCombined(p, ds.Table, ds.Summary) }},
	}
	for _, item := range toRender {
		if err := item.fn(filepath.Join(outDir, item.name)); err != nil {
			return err
		}
		log.Debug().Str("file", item.name).Msg("screenshot written")
	}
	return nil
}
