package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/iafilius/TraceViewer/src/trace"
)

// PreviewPNG renders the on-screen reception chart with go-chart.
// An empty table yields a blank image carrying a short note.
func PreviewPNG(t trace.Table, width, height int) (image.Image, error) {
	if len(t) == 0 {
		return drawNote(blank(width, height), "No trace loaded"), nil
	}
	xs := make([]float64, len(t))
	ys := make([]float64, len(t))
	for i, r := range t {
		xs[i] = float64(i)
		ys[i] = r.ReceptionTime
	}
	// go-chart needs at least two X values
	if len(xs) == 1 {
		xs = append(xs, xs[0]+1)
		ys = append(ys, ys[0])
	}
	yAxis := chart.YAxis{Name: PlotYLabel, GridMajorStyle: gridStyle()}
	minY, maxY := ys[0], ys[0]
	for _, v := range ys[1:] {
		minY = math.Min(minY, v)
		maxY = math.Max(maxY, v)
	}
	if maxY <= minY {
		// flat series: give go-chart a non-zero Y range
		yAxis.Range = &chart.ContinuousRange{Min: minY - 1, Max: maxY + 1}
	}
	blue := drawing.ColorFromHex("1f77b4")
	series := chart.ContinuousSeries{
		Name:    "Reception",
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			StrokeColor: blue,
			StrokeWidth: 1.5,
			DotColor:    blue,
			DotWidth:    3,
		},
	}
	ch := chart.Chart{
		Title:      PlotTitle,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 28}},
		XAxis:      chart.XAxis{Name: PlotXLabel, GridMajorStyle: gridStyle()},
		YAxis:      yAxis,
		Series:     []chart.Series{series},
	}
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return blank(width, height), fmt.Errorf("render preview: %w", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return blank(width, height), fmt.Errorf("decode preview: %w", err)
	}
	return img, nil
}

func gridStyle() chart.Style {
	return chart.Style{StrokeColor: drawing.ColorFromHex("dddddd"), StrokeWidth: 1}
}

func blank(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 18, G: 18, B: 18, A: 255}), image.Point{}, draw.Src)
	return img
}

// drawNote writes text centered on img using the 7x13 bitmap font.
func drawNote(img *image.RGBA, text string) image.Image {
	if strings.TrimSpace(text) == "" {
		return img
	}
	face := basicfont.Face7x13
	dr := &font.Drawer{Dst: img, Src: image.NewUniform(color.RGBA{R: 200, G: 200, B: 200, A: 255}), Face: face}
	b := img.Bounds()
	tw := dr.MeasureString(text).Ceil()
	x := b.Min.X + (b.Dx()-tw)/2
	y := b.Min.Y + b.Dy()/2
	dr.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	dr.DrawString(text)
	return img
}
