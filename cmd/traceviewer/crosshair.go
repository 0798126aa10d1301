package main

import (
	"fmt"
	"image/color"

	fyne "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/iafilius/TraceViewer/cmd/traceviewer/uihelpers"
	"github.com/iafilius/TraceViewer/src/trace"
)

// horizontal padding of the go-chart preview image, in image pixels
const (
	previewLeftPad  = float32(16)
	previewRightPad = float32(64)
)

// crosshairOverlay draws a vertical guide over the plot image and labels the packet
// nearest to the cursor.
type crosshairOverlay struct {
	widget.BaseWidget
	state    *uiState
	mouse    fyne.Position
	hovering bool
}

func newCrosshairOverlay(state *uiState) *crosshairOverlay {
	c := &crosshairOverlay{state: state}
	c.ExtendBaseWidget(c)
	return c
}

type crosshairRenderer struct {
	c       *crosshairOverlay
	line    *canvas.Line
	labelBG *canvas.Rectangle
	label   *widget.Label
	objs    []fyne.CanvasObject
}

func (c *crosshairOverlay) CreateRenderer() fyne.WidgetRenderer {
	line := canvas.NewLine(theme.Color(theme.ColorNameDisabled))
	line.StrokeWidth = 1
	bg := canvas.NewRectangle(color.NRGBA{R: 0, G: 0, B: 0, A: 170})
	lbl := widget.NewLabel("")
	r := &crosshairRenderer{c: c, line: line, labelBG: bg, label: lbl}
	r.objs = []fyne.CanvasObject{line, bg, lbl}
	return r
}

func (r *crosshairRenderer) hide() {
	r.line.Position1 = fyne.NewPos(-10, -10)
	r.line.Position2 = fyne.NewPos(-10, -10)
	r.labelBG.Resize(fyne.NewSize(0, 0))
	r.labelBG.Move(fyne.NewPos(-1000, -1000))
	r.label.Move(fyne.NewPos(-1000, -1000))
}

func (r *crosshairRenderer) Layout(size fyne.Size) {
	st := r.c.state
	img := st.plotCanvas
	if !r.c.hovering || st.data == nil || img == nil || img.Image == nil {
		r.hide()
		return
	}
	b := img.Image.Bounds()
	tbl := st.data.Table
	centers := uihelpers.PointCenters(len(tbl), float32(b.Dx()), float32(b.Dy()), size.Width, size.Height, previewLeftPad, previewRightPad)
	idx := uihelpers.NearestIndex(centers, r.c.mouse.X)
	if idx < 0 {
		r.hide()
		return
	}
	x := centers[idx]
	r.line.Position1 = fyne.NewPos(x, 0)
	r.line.Position2 = fyne.NewPos(x, size.Height)
	r.label.SetText(crosshairText(tbl[idx]))

	pad := float32(6)
	ts := r.label.MinSize()
	tx, ty := x+8, r.c.mouse.Y+8
	if tx+ts.Width+2*pad > size.Width {
		tx = x - ts.Width - 2*pad - 8
	}
	if ty+ts.Height+2*pad > size.Height {
		ty = size.Height - ts.Height - 2*pad
	}
	r.labelBG.Resize(fyne.NewSize(ts.Width+2*pad, ts.Height+2*pad))
	r.labelBG.Move(fyne.NewPos(tx, ty))
	r.label.Resize(ts)
	r.label.Move(fyne.NewPos(tx+pad, ty+pad))
}

func crosshairText(row trace.Row) string {
	return fmt.Sprintf("Packet %d\n%s s\n%s → %s", row.Index, trace.FormatSeconds(row.ReceptionTime), row.SourceNode, row.DestinationNode)
}

func (r *crosshairRenderer) MinSize() fyne.Size           { return fyne.NewSize(10, 10) }
func (r *crosshairRenderer) Objects() []fyne.CanvasObject { return r.objs }
func (r *crosshairRenderer) Destroy()                     {}
func (r *crosshairRenderer) Refresh() {
	r.Layout(r.c.Size())
	r.line.StrokeColor = theme.Color(theme.ColorNameDisabled)
	r.line.Refresh()
	r.labelBG.Refresh()
	r.label.Refresh()
}

func (c *crosshairOverlay) MouseMoved(ev *desktop.MouseEvent) {
	c.hovering = true
	c.mouse = ev.Position
	c.Refresh()
}
func (c *crosshairOverlay) MouseIn(ev *desktop.MouseEvent) { c.hovering = true; c.Refresh() }
func (c *crosshairOverlay) MouseOut()                      { c.hovering = false; c.Refresh() }

var _ desktop.Hoverable = (*crosshairOverlay)(nil)
