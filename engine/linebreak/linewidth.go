package linebreak

import (
	"fmt"
	"math"
)

// LineWidth is the shape of a paragraph: the available width per line.
type LineWidth interface {
	At(line int) float32 // width of line #line, starting at 0
	Min() float32        // minimum width of all lines
}

// ConstantWidth is a rectangular paragraph shape.
type ConstantWidth float32

// At is part of interface LineWidth.
func (w ConstantWidth) At(int) float32 { return float32(w) }

// Min is part of interface LineWidth.
func (w ConstantWidth) Min() float32 { return float32(w) }

// IndentedWidth is a paragraph shape with a number of lines of a first
// width, followed by lines of another width, e.g. for text flowing around
// an initial or a float. Indents are subtracted from the widths of the
// lines; the last indent repeats for all following lines.
type IndentedWidth struct {
	FirstWidth float32
	FirstLines int
	RestWidth  float32
	Indents    []float32
}

// At is part of interface LineWidth.
func (iw IndentedWidth) At(line int) float32 {
	w := iw.RestWidth
	if line < iw.FirstLines {
		w = iw.FirstWidth
	}
	if len(iw.Indents) > 0 {
		w -= iw.Indents[min(line, len(iw.Indents)-1)]
	}
	return w
}

// Min is part of interface LineWidth.
func (iw IndentedWidth) Min() float32 {
	m := float32(math.MaxFloat32)
	for l := 0; l <= max(iw.FirstLines, len(iw.Indents)); l++ {
		m = min(m, iw.At(l))
	}
	return m
}

func (iw IndentedWidth) String() string {
	return fmt.Sprintf("%d×%g, then %g, indents %v", iw.FirstLines, iw.FirstWidth, iw.RestWidth, iw.Indents)
}

var _ LineWidth = ConstantWidth(0)
var _ LineWidth = IndentedWidth{}

// --- Tab stops -------------------------------------------------------------

// TabStops are the positions a TAB character advances to. Beyond the last
// explicit stop, stops are placed at every multiple of TabWidth.
type TabStops struct {
	Stops    []float32 // in increasing order
	TabWidth float32
}

// NextTab returns the first tab stop after x.
func (ts TabStops) NextTab(x float32) float32 {
	for _, s := range ts.Stops {
		if s > x {
			return s
		}
	}
	if ts.TabWidth <= 0 {
		return x
	}
	return float32(math.Floor(float64(x/ts.TabWidth))+1) * ts.TabWidth
}
