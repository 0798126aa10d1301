package render

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/iafilius/TraceViewer/src/analysis"
	"github.com/iafilius/TraceViewer/src/trace"
)

func sample() (trace.Table, analysis.Summary) {
	tbl := trace.Table{
		{Index: 0, ReceptionTime: 1.0, SourceNode: "from0", DestinationNode: "Node-1", SizeBytes: "512", Protocol: "6"},
		{Index: 1, ReceptionTime: 2.5, SourceNode: "from0", DestinationNode: "Node-1", SizeBytes: "512", Protocol: "6"},
		{Index: 4, ReceptionTime: 2.75, SourceNode: "from2", DestinationNode: "Node-1", SizeBytes: "64", Protocol: "17"},
	}
	s, _ := analysis.Summarize(tbl)
	return tbl, s
}

// magic prefixes per output format
var magic = map[string]string{
	"png": "\x89PNG",
	"jpg": "\xff\xd8\xff",
	"pdf": "%PDF",
	"svg": "<?xml",
	"eps": "%!PS",
}

func TestWritePlot_Formats(t *testing.T) {
	tbl, _ := sample()
	p, err := Plot(tbl)
	if err != nil {
		t.Fatalf("plot: %v", err)
	}
	for format, prefix := range magic {
		var buf bytes.Buffer
		if err := WritePlot(&buf, p, format, PlotSize); err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		if !strings.HasPrefix(buf.String(), prefix) {
			t.Fatalf("%s: unexpected header %q", format, buf.String()[:8])
		}
	}
}

func TestWritePlot_UnknownFormat(t *testing.T) {
	tbl, _ := sample()
	p, _ := Plot(tbl)
	var buf bytes.Buffer
	if err := WritePlot(&buf, p, "bmp", PlotSize); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestPlot_Labels(t *testing.T) {
	p, err := Plot(trace.Table{})
	if err != nil {
		t.Fatalf("plot: %v", err)
	}
	if p.Title.Text != PlotTitle || p.X.Label.Text != PlotXLabel || p.Y.Label.Text != PlotYLabel {
		t.Fatalf("unexpected labels: %q %q %q", p.Title.Text, p.X.Label.Text, p.Y.Label.Text)
	}
}

func TestPlot_RejectsNaN(t *testing.T) {
	if _, err := Plot(trace.Table{{ReceptionTime: math.NaN()}}); err == nil {
		t.Fatalf("expected error for NaN reception time")
	}
}

func TestWriteSummaryAndCombined(t *testing.T) {
	tbl, s := sample()
	for _, format := range []string{"png", "jpg", "pdf"} {
		var buf bytes.Buffer
		if err := WriteSummary(&buf, s, format); err != nil {
			t.Fatalf("summary %s: %v", format, err)
		}
		if !strings.HasPrefix(buf.String(), magic[format]) {
			t.Fatalf("summary %s: bad header", format)
		}
		buf.Reset()
		if err := WriteCombined(&buf, tbl, s, format); err != nil {
			t.Fatalf("combined %s: %v", format, err)
		}
		if !strings.HasPrefix(buf.String(), magic[format]) {
			t.Fatalf("combined %s: bad header", format)
		}
	}
}

func TestWriteSummary_SVGContainsMetrics(t *testing.T) {
	_, s := sample()
	var buf bytes.Buffer
	if err := WriteSummary(&buf, s, "svg"); err != nil {
		t.Fatalf("summary svg: %v", err)
	}
	// svg keeps text as glyph paths or text nodes depending on backend; the document must at least be complete
	if !strings.Contains(buf.String(), "</svg>") {
		t.Fatalf("incomplete svg output")
	}
}

func TestNormalizeFormat(t *testing.T) {
	cases := map[string]string{".PNG": "png", "jpeg": "jpg", ".Jpg": "jpg", "pdf": "pdf", ".eps": "eps"}
	for in, want := range cases {
		if got := NormalizeFormat(in); got != want {
			t.Fatalf("NormalizeFormat(%q)=%q want %q", in, got, want)
		}
	}
}

func TestPreviewPNG(t *testing.T) {
	tbl, _ := sample()
	img, err := PreviewPNG(tbl, 900, 320)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 900 || b.Dy() != 320 {
		t.Fatalf("unexpected bounds %v", b)
	}
	// single point is padded so go-chart has a non-zero X range
	img, err = PreviewPNG(tbl[:1], 800, 300)
	if err != nil || img == nil {
		t.Fatalf("single point preview: %v", err)
	}
	img, err = PreviewPNG(nil, 640, 240)
	if err != nil {
		t.Fatalf("empty preview: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 640 || b.Dy() != 240 {
		t.Fatalf("unexpected blank bounds %v", b)
	}
}
