package main

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/iafilius/TraceViewer/src/analysis"
	"github.com/iafilius/TraceViewer/src/trace"
)

// writeTrace writes content to a temp .tr file and returns its path.
func writeTrace(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "sample.tr")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write trace: %v", err)
	}
	return p
}

const sampleTrace = "r 1.000000 /NodeList/1 from0 Node-1: size=512 protocol=6\n" +
	"r 2.500000 /NodeList/1 from0 Node-1: size=512 protocol=6\n" +
	"s 3.000000 /NodeList/0 from0 Node-0: size=512 protocol=6\n"

func loadSample(t *testing.T) *analysis.Dataset {
	t.Helper()
	ds, err := analysis.Load(writeTrace(t, sampleTrace))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return ds
}

func TestSummaryCells(t *testing.T) {
	if summaryRowCount(nil) != 1 {
		t.Fatalf("empty summary should show the header row only")
	}
	if summaryCell(nil, 0, 0) != "Metric" || summaryCell(nil, 0, 1) != "Value" || summaryCell(nil, 1, 0) != "" {
		t.Fatalf("unexpected empty summary cells")
	}
	ds := loadSample(t)
	if summaryRowCount(ds) != 6 {
		t.Fatalf("summary rows = %d want 6", summaryRowCount(ds))
	}
	want := [][2]string{
		{"Total Packets Received", "2"},
		{"First Packet Time (s)", "1.0"},
		{"Last Packet Time (s)", "2.5"},
		{"Duration (s)", "1.5"},
		{"Average Interval (s)", "1.5"},
	}
	for i, w := range want {
		if got := [2]string{summaryCell(ds, i+1, 0), summaryCell(ds, i+1, 1)}; got != w {
			t.Fatalf("row %d = %v want %v", i+1, got, w)
		}
	}
	if summaryCell(ds, 99, 0) != "" || summaryCell(ds, 1, 5) != "" {
		t.Fatalf("out of range cells should be blank")
	}
}

func TestDetailCells(t *testing.T) {
	ds := loadSample(t)
	if detailRowCount(ds) != 3 || detailRowCount(nil) != 1 {
		t.Fatalf("unexpected detail row counts")
	}
	for c, h := range trace.Columns {
		if detailCell(ds, 0, c) != h {
			t.Fatalf("header %d = %q want %q", c, detailCell(ds, 0, c), h)
		}
	}
	var got []string
	for c := range trace.Columns {
		got = append(got, detailCell(ds, 2, c))
	}
	want := []string{"1", "2.5", "from0", "Node-1", "512", "6"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("detail row = %v want %v", got, want)
	}
	if detailCell(ds, 3, 0) != "" {
		t.Fatalf("row beyond the table should be blank")
	}
}

func TestRecentList(t *testing.T) {
	raw := "/a.tr\n\n/b.tr\n/gone.tr\n"
	got := filterRecent(raw, func(p string) bool { return p != "/gone.tr" })
	if !reflect.DeepEqual(got, []string{"/a.tr", "/b.tr"}) {
		t.Fatalf("filterRecent = %v", got)
	}
	if filterRecent("", func(string) bool { return true }) != nil {
		t.Fatalf("empty list should be nil")
	}
	list := pushRecent([]string{"/a.tr", "/b.tr", "/c.tr"}, "/b.tr", 3)
	if !reflect.DeepEqual(list, []string{"/b.tr", "/a.tr", "/c.tr"}) {
		t.Fatalf("pushRecent reorder = %v", list)
	}
	list = pushRecent([]string{"/a.tr", "/b.tr", "/c.tr"}, "/d.tr", 3)
	if !reflect.DeepEqual(list, []string{"/d.tr", "/a.tr", "/b.tr"}) {
		t.Fatalf("pushRecent cap = %v", list)
	}
}

func TestResolveConfig(t *testing.T) {
	cfg, err := resolveConfig("", "x.tr", "", "", "")
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if cfg.FilePath != "x.tr" || cfg.LogFormat != "text" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	yml := filepath.Join(t.TempDir(), "viewer.yaml")
	if err := os.WriteFile(yml, []byte("log_format: json\nlog_level: debug\nplot:\n  width_in: 12\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = resolveConfig(yml, "", "warn", "", "shots")
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if cfg.LogFormat != "json" || cfg.LogLevel != "warn" || cfg.PlotWidthInch != 12 || cfg.ScreenshotsDir != "shots" {
		t.Fatalf("flags should override yaml: %+v", cfg)
	}
	if _, err := resolveConfig("", "", "loud", "", ""); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestLoadErrorMessage(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.tr")
	_, err := analysis.Load(missing)
	if msg := loadErrorMessage(missing, err).Error(); !strings.Contains(msg, "does not exist") {
		t.Fatalf("missing file message: %q", msg)
	}
	empty := writeTrace(t, "s 1.0 /x from0 Node-0:\n")
	_, err = analysis.Load(empty)
	if msg := loadErrorMessage(empty, err).Error(); !strings.Contains(msg, "no packet reception events") {
		t.Fatalf("empty file message: %q", msg)
	}
	bad := writeTrace(t, "s 1.0\nr abc /x\n")
	_, err = analysis.Load(bad)
	if msg := loadErrorMessage(bad, err).Error(); !strings.Contains(msg, "line 2") {
		t.Fatalf("format error message: %q", msg)
	}
	other := errors.New("boom")
	if loadErrorMessage("x", other) != other {
		t.Fatalf("unknown errors pass through")
	}
}

func TestCrosshairText(t *testing.T) {
	got := crosshairText(trace.Row{Index: 7, ReceptionTime: 2, SourceNode: "from3", DestinationNode: "Node-4"})
	if !strings.Contains(got, "Packet 7") || !strings.Contains(got, "2.0 s") || !strings.Contains(got, "from3") {
		t.Fatalf("crosshair text = %q", got)
	}
}
