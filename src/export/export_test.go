package export

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/iafilius/TraceViewer/src/analysis"
	"github.com/iafilius/TraceViewer/src/render"
	"github.com/iafilius/TraceViewer/src/trace"
)

func loaded(t *testing.T) (trace.Table, analysis.Summary) {
	t.Helper()
	tbl, err := trace.ParseReader(strings.NewReader(
		"r 1.000000 /x from0 Node-1: size=512 protocol=6\n" +
			"r 2.500000 /x from0 Node-1: size=512 protocol=6\n" +
			"s 3.000000 /x from0 Node-0: size=512 protocol=6\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	s, err := analysis.Summarize(tbl)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	return tbl, s
}

func TestSaveSummary_CSV(t *testing.T) {
	_, s := loaded(t)
	path := filepath.Join(t.TempDir(), "summary.CSV")
	if err := SaveSummary(path, s); err != nil {
		t.Fatalf("save: %v", err)
	}
	b, _ := os.ReadFile(path)
	want := "Metric,Value\n" +
		"Total Packets Received,2\n" +
		"First Packet Time (s),1.0\n" +
		"Last Packet Time (s),2.5\n" +
		"Duration (s),1.5\n" +
		"Average Interval (s),1.5\n"
	if string(b) != want {
		t.Fatalf("summary csv:\n%s\nwant:\n%s", b, want)
	}
}

func TestSaveSummary_Image(t *testing.T) {
	_, s := loaded(t)
	dir := t.TempDir()
	for _, name := range []string{"s.png", "s.jpg", "s.jpeg", "s.pdf"} {
		path := filepath.Join(dir, name)
		if err := SaveSummary(path, s); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if st, err := os.Stat(path); err != nil || st.Size() == 0 {
			t.Fatalf("%s: missing output", name)
		}
	}
}

func TestSaveSummary_UnsupportedLeavesNoFile(t *testing.T) {
	_, s := loaded(t)
	path := filepath.Join(t.TempDir(), "summary.txt")
	err := SaveSummary(path, s)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("unsupported export must not create a file")
	}
}

func TestSaveDetail_CSVRoundTrip(t *testing.T) {
	tbl, _ := loaded(t)
	path := filepath.Join(t.TempDir(), "detail.csv")
	if err := SaveDetail(path, tbl); err != nil {
		t.Fatalf("save: %v", err)
	}
	f, _ := os.Open(path)
	defer f.Close()
	back, err := trace.ReadCSV(f)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !reflect.DeepEqual(tbl, back) {
		t.Fatalf("round trip mismatch: %+v vs %+v", tbl, back)
	}
}

func TestSaveDetail_Parquet(t *testing.T) {
	tbl, _ := loaded(t)
	path := filepath.Join(t.TempDir(), "detail.parquet")
	if err := SaveDetail(path, tbl); err != nil {
		t.Fatalf("save: %v", err)
	}
	back, err := trace.ReadParquet(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !reflect.DeepEqual(tbl, back) {
		t.Fatalf("round trip mismatch: %+v vs %+v", tbl, back)
	}
}

func TestSaveDetail_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "detail.csv")
	if err := SaveDetail(path, nil); !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("expected ErrNothingToExport, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("no file expected")
	}
}

func TestSavePlot_Formats(t *testing.T) {
	tbl, _ := loaded(t)
	dir := t.TempDir()
	for _, ext := range Formats(PlotImage) {
		path := filepath.Join(dir, "plot"+ext)
		if err := SavePlot(path, tbl, render.PlotSize); err != nil {
			t.Fatalf("%s: %v", ext, err)
		}
	}
	if err := SavePlot(filepath.Join(dir, "plot.gif"), tbl, render.PlotSize); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat for gif, got %v", err)
	}
}

func TestSaveCombined(t *testing.T) {
	tbl, s := loaded(t)
	dir := t.TempDir()
	if err := SaveCombined(filepath.Join(dir, "combined.pdf"), tbl, s); err != nil {
		t.Fatalf("pdf: %v", err)
	}
	if err := SaveCombined(filepath.Join(dir, "combined.svg"), tbl, s); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("combined svg should be unsupported, got %v", err)
	}
	if err := SaveCombined(filepath.Join(dir, "combined.png"), nil, s); !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("expected ErrNothingToExport, got %v", err)
	}
}

func TestWriteFile_RemovesPartialOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.csv")
	boom := errors.New("boom")
	err := writeFile(path, func(w io.Writer) error {
		w.Write([]byte("half"))
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("partial file left behind")
	}
}

func TestSaveToUnwritableDir(t *testing.T) {
	_, s := loaded(t)
	path := filepath.Join(t.TempDir(), "missing-dir", "summary.csv")
	if err := SaveSummary(path, s); err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestFormatsAndKind(t *testing.T) {
	if !Supported(Summary, "/tmp/a.JPEG") || Supported(Detail, "/tmp/a.png") {
		t.Fatalf("unexpected support matrix")
	}
	f := Formats(Detail)
	f[0] = ".mutated"
	if Formats(Detail)[0] != ".csv" {
		t.Fatalf("Formats must return a copy")
	}
	if Combined.String() != "combined" || Kind(42).String() != "unknown" {
		t.Fatalf("unexpected kind names")
	}
}
