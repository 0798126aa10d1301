package uihelpers

import (
	"math"
	"path/filepath"
)

// ComputeChartDimensions applies width/height clamp rules used for the plot tab.
// Input: desired raw width (e.g., canvas width). Returns clamped width & height.
func ComputeChartDimensions(rawW int) (int, int) {
	w := rawW
	if w < 800 {
		w = 800
	}
	h := int(float32(w) * 0.5)
	if h < 320 {
		h = 320
	}
	if h > 720 {
		h = 720
	}
	return w, h
}

// ComputeDetailColumnWidths returns the 6 column widths for the detail table given a window width.
// Order: Packet Index, Reception Time, Source Node, Destination Node, Size, Protocol
func ComputeDetailColumnWidths(winW float32) [6]int {
	const compactBreakpoint = 900
	const ultraCompactBreakpoint = 560
	if winW < ultraCompactBreakpoint {
		return [6]int{70, 110, 0, 90, 0, 0}
	}
	if winW < compactBreakpoint {
		return [6]int{90, 130, 90, 110, 80, 70}
	}
	// wide windows share the surplus across the node columns
	extra := int(math.Min(float64(winW-compactBreakpoint), 600)) / 4
	return [6]int{110, 160, 120 + extra, 140 + extra, 100, 90}
}

// ComputeSummaryColumnWidths returns the Metric and Value column widths.
func ComputeSummaryColumnWidths(winW float32) [2]int {
	if winW < 560 {
		return [2]int{190, 110}
	}
	return [2]int{240, 160}
}

// TruncatePath shortens p to about n characters, always keeping the base name.
func TruncatePath(p string, n int) string {
	if len(p) <= n {
		return p
	}
	base := filepath.Base(p)
	if len(base)+4 >= n {
		return "..." + base
	}
	dir := filepath.Dir(p)
	left := n - len(base) - 4
	if len(dir) > left {
		dir = dir[:left]
	}
	return dir + "/..." + base
}

// NearestIndex returns the index of the center closest to x, or -1 without centers.
func NearestIndex(centers []float32, x float32) int {
	best := -1
	bestD := float32(math.MaxFloat32)
	for i, c := range centers {
		d := float32(math.Abs(float64(x - c)))
		if d < bestD {
			bestD = d
			best = i
		}
	}
	return best
}

// ContainRect computes where an imgW x imgH image lands when drawn contain-fit into a
// viewW x viewH area. Returns the draw origin and the scale factor.
func ContainRect(imgW, imgH, viewW, viewH float32) (x, y, scale float32) {
	if imgW <= 0 || imgH <= 0 || viewW <= 0 || viewH <= 0 {
		return 0, 0, 1
	}
	sx := viewW / imgW
	sy := viewH / imgH
	scale = sx
	if sy < sx {
		scale = sy
	}
	x = (viewW - imgW*scale) / 2
	y = (viewH - imgH*scale) / 2
	return x, y, scale
}

// PointCenters maps n evenly spaced X values (0..n-1) to view-space pixel positions,
// given the horizontal plot padding of the rendered image.
func PointCenters(n int, imgW, imgH, viewW, viewH, leftPad, rightPad float32) []float32 {
	if n <= 0 {
		return nil
	}
	drawX, _, scale := ContainRect(imgW, imgH, viewW, viewH)
	plotW := imgW - leftPad - rightPad
	if plotW < 1 {
		plotW = imgW
		leftPad = 0
	}
	out := make([]float32, n)
	for i := range out {
		fx := float32(0.5)
		if n > 1 {
			fx = float32(i) / float32(n-1)
		}
		out[i] = drawX + (leftPad+fx*plotW)*scale
	}
	return out
}
