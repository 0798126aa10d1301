// Package render draws the reception plot and the summary table onto gonum/plot
// canvases, which cover every export format the viewer offers.
package render

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	// canvas backends registered with draw.NewFormattedCanvas
	_ "gonum.org/v1/plot/vg/vgeps"
	_ "gonum.org/v1/plot/vg/vgimg"
	_ "gonum.org/v1/plot/vg/vgpdf"
	_ "gonum.org/v1/plot/vg/vgsvg"

	"github.com/iafilius/TraceViewer/src/analysis"
	"github.com/iafilius/TraceViewer/src/trace"
)

const (
	PlotTitle    = "Packet Reception Over Time"
	PlotXLabel   = "Packet Index"
	PlotYLabel   = "Time (s)"
	SummaryTitle = "Trace Summary"
)

// Default canvas sizes, in inches.
var (
	PlotSize     = Size{Width: 8, Height: 6}
	SummarySize  = Size{Width: 4, Height: 2}
	CombinedSize = Size{Width: 10, Height: 8}
)

// Size is a canvas size in inches.
type Size struct {
	Width, Height float64
}

func (s Size) lengths() (vg.Length, vg.Length) {
	return vg.Length(s.Width) * vg.Inch, vg.Length(s.Height) * vg.Inch
}

var lineBlue = color.RGBA{R: 31, G: 119, B: 180, A: 255}

// Plot builds the reception time plot: one point per row, X is the row position.
func Plot(t trace.Table) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = PlotTitle
	p.Title.TextStyle.Font.Weight = xfont.WeightBold
	p.X.Label.Text = PlotXLabel
	p.Y.Label.Text = PlotYLabel
	p.Add(plotter.NewGrid())
	if len(t) == 0 {
		return p, nil
	}
	pts := make(plotter.XYs, len(t))
	for i, r := range t {
		pts[i].X = float64(i)
		pts[i].Y = r.ReceptionTime
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, fmt.Errorf("build reception series: %w", err)
	}
	line.Color = lineBlue
	line.Width = vg.Points(1.5)
	points.Shape = draw.CircleGlyph{}
	points.Color = lineBlue
	points.Radius = vg.Points(3)
	p.Add(line, points)
	return p, nil
}

// NormalizeFormat maps a file extension (".PNG", "jpeg") to a canvas format name.
func NormalizeFormat(ext string) string {
	f := strings.ToLower(strings.TrimPrefix(ext, "."))
	if f == "jpeg" {
		return "jpg"
	}
	return f
}

func newCanvas(size Size, format string) (vg.CanvasWriterTo, draw.Canvas, error) {
	w, h := size.lengths()
	c, err := draw.NewFormattedCanvas(w, h, NormalizeFormat(format))
	if err != nil {
		return nil, draw.Canvas{}, err
	}
	return c, draw.New(c), nil
}

// WritePlot renders p in the given format and writes it to w.
func WritePlot(w io.Writer, p *plot.Plot, format string, size Size) error {
	c, dc, err := newCanvas(size, format)
	if err != nil {
		return err
	}
	p.Draw(dc)
	_, err = c.WriteTo(w)
	return err
}

// WriteSummary renders the summary table alone.
func WriteSummary(w io.Writer, s analysis.Summary, format string) error {
	c, dc, err := newCanvas(SummarySize, format)
	if err != nil {
		return err
	}
	fillBackground(dc)
	DrawSummaryTable(dc, s, "")
	_, err = c.WriteTo(w)
	return err
}

// WriteCombined stacks the plot above the titled summary table.
func WriteCombined(w io.Writer, t trace.Table, s analysis.Summary, format string) error {
	p, err := Plot(t)
	if err != nil {
		return err
	}
	c, dc, err := newCanvas(CombinedSize, format)
	if err != nil {
		return err
	}
	fillBackground(dc)
	midY := dc.Min.Y + (dc.Max.Y-dc.Min.Y)/2
	top := draw.Canvas{Canvas: dc.Canvas, Rectangle: vg.Rectangle{Min: vg.Point{X: dc.Min.X, Y: midY}, Max: dc.Max}}
	bottom := draw.Canvas{Canvas: dc.Canvas, Rectangle: vg.Rectangle{Min: dc.Min, Max: vg.Point{X: dc.Max.X, Y: midY}}}
	p.Draw(top)
	DrawSummaryTable(bottom, s, SummaryTitle)
	_, err = c.WriteTo(w)
	return err
}

func fillBackground(dc draw.Canvas) {
	dc.FillPolygon(color.White, rectPoints(dc.Rectangle))
}

func rectPoints(r vg.Rectangle) []vg.Point {
	return []vg.Point{
		{X: r.Min.X, Y: r.Min.Y},
		{X: r.Max.X, Y: r.Min.Y},
		{X: r.Max.X, Y: r.Max.Y},
		{X: r.Min.X, Y: r.Max.Y},
	}
}

// DrawSummaryTable draws a Metric/Value grid centered in dc. A non-empty title is
// drawn above the grid.
func DrawSummaryTable(dc draw.Canvas, s analysis.Summary, title string) {
	cells := append([][]string{analysis.SummaryColumns}, s.Rows()...)
	width := dc.Max.X - dc.Min.X
	height := dc.Max.Y - dc.Min.Y

	fontSize := vg.Points(10)
	if height < 2.5*vg.Inch {
		fontSize = vg.Points(8)
	}
	cellSty := text.Style{
		Color:   color.Black,
		Font:    plotFont(fontSize, xfont.WeightNormal),
		XAlign:  text.XCenter,
		YAlign:  text.YCenter,
		Handler: plot.DefaultTextHandler,
	}
	border := draw.LineStyle{Color: color.Gray{Y: 64}, Width: vg.Points(0.5)}

	top := dc.Max.Y - height*0.08
	if title != "" {
		titleSty := cellSty
		titleSty.Font = plotFont(fontSize+vg.Points(2), xfont.WeightBold)
		dc.FillText(titleSty, vg.Point{X: dc.Min.X + width/2, Y: top}, title)
		top -= height * 0.1
	}
	// cap row height so short tables stay compact
	rowH := (top - (dc.Min.Y + height*0.06)) / vg.Length(len(cells))
	if maxRow := fontSize * 2.4; rowH > maxRow {
		rowH = maxRow
	}
	tableW := width * 0.9
	left := dc.Min.X + (width-tableW)/2
	colX := []vg.Length{left, left + tableW*0.68, left + tableW}

	for i, row := range cells {
		y1 := top - vg.Length(i)*rowH
		y0 := y1 - rowH
		if i == 0 {
			dc.FillPolygon(color.Gray{Y: 230}, rectPoints(vg.Rectangle{Min: vg.Point{X: colX[0], Y: y0}, Max: vg.Point{X: colX[2], Y: y1}}))
		}
		for j, txt := range row {
			dc.FillText(cellSty, vg.Point{X: (colX[j] + colX[j+1]) / 2, Y: (y0 + y1) / 2}, txt)
		}
		dc.StrokeLine2(border, colX[0], y1, colX[2], y1)
		dc.StrokeLine2(border, colX[0], y0, colX[2], y0)
		for _, x := range colX {
			dc.StrokeLine2(border, x, y0, x, y1)
		}
	}
}

func plotFont(size vg.Length, weight xfont.Weight) font.Font {
	f := plot.DefaultFont
	f.Size = size
	f.Weight = weight
	return f
}
