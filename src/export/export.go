// Package export writes the loaded trace to disk, choosing the encoding from the
// target file extension.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iafilius/TraceViewer/src/analysis"
	"github.com/iafilius/TraceViewer/src/render"
	"github.com/iafilius/TraceViewer/src/trace"
)

var (
	// ErrUnsupportedFormat is returned for an extension the export kind cannot produce.
	ErrUnsupportedFormat = errors.New("unsupported export format")
	// ErrNothingToExport is returned when there is no loaded data to write.
	ErrNothingToExport = errors.New("nothing to export")
)

// Kind selects one of the export surfaces.
type Kind int

const (
	Summary Kind = iota
	Detail
	PlotImage
	Combined
)

func (k Kind) String() string {
	switch k {
	case Summary:
		return "summary"
	case Detail:
		return "detail"
	case PlotImage:
		return "plot"
	case Combined:
		return "combined"
	}
	return "unknown"
}

var formats = map[Kind][]string{
	Summary:   {".csv", ".png", ".jpg", ".jpeg", ".pdf"},
	Detail:    {".csv", ".parquet"},
	PlotImage: {".png", ".jpg", ".jpeg", ".pdf", ".svg", ".eps"},
	Combined:  {".png", ".jpg", ".jpeg", ".pdf"},
}

// Formats lists the extensions accepted for k, lower-case with the leading dot.
func Formats(k Kind) []string {
	return append([]string(nil), formats[k]...)
}

// Ext returns the lower-cased extension of path.
func Ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// Supported reports whether path has an extension k can write.
func Supported(k Kind, path string) bool {
	ext := Ext(path)
	for _, f := range formats[k] {
		if f == ext {
			return true
		}
	}
	return false
}

func checkFormat(k Kind, path string) error {
	if Supported(k, path) {
		return nil
	}
	return fmt.Errorf("%s export to %q: %w (use %s)", k, filepath.Base(path), ErrUnsupportedFormat, strings.Join(formats[k], ", "))
}

// SaveSummary writes the summary as a Metric,Value CSV or as a rendered table image.
func SaveSummary(path string, s analysis.Summary) error {
	if err := checkFormat(Summary, path); err != nil {
		return err
	}
	if Ext(path) == ".csv" {
		return writeFile(path, func(w io.Writer) error { return WriteSummaryCSV(w, s) })
	}
	return writeFile(path, func(w io.Writer) error { return render.WriteSummary(w, s, Ext(path)) })
}

// WriteSummaryCSV writes the two-column summary table.
func WriteSummaryCSV(w io.Writer, s analysis.Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(analysis.SummaryColumns); err != nil {
		return err
	}
	if err := cw.WriteAll(s.Rows()); err != nil {
		return err
	}
	return cw.Error()
}

// SaveDetail writes every parsed row as CSV or Parquet.
func SaveDetail(path string, t trace.Table) error {
	if len(t) == 0 {
		return ErrNothingToExport
	}
	if err := checkFormat(Detail, path); err != nil {
		return err
	}
	if Ext(path) == ".parquet" {
		return writeFile(path, func(w io.Writer) error { return trace.WriteParquet(w, t) })
	}
	return writeFile(path, func(w io.Writer) error { return trace.WriteCSV(w, t) })
}

// SavePlot writes the reception plot at the given size.
func SavePlot(path string, t trace.Table, size render.Size) error {
	if err := checkFormat(PlotImage, path); err != nil {
		return err
	}
	p, err := render.Plot(t)
	if err != nil {
		return err
	}
	return writeFile(path, func(w io.Writer) error { return render.WritePlot(w, p, Ext(path), size) })
}

// SaveCombined writes the plot stacked above the summary table.
func SaveCombined(path string, t trace.Table, s analysis.Summary) error {
	if len(t) == 0 {
		return ErrNothingToExport
	}
	if err := checkFormat(Combined, path); err != nil {
		return err
	}
	return writeFile(path, func(w io.Writer) error { return render.WriteCombined(w, t, s, Ext(path)) })
}

// writeFile creates path, runs fn and closes the file. A failed export leaves no partial file.
func writeFile(path string, fn func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()
	if err := fn(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
