package font

import (
	"fmt"
	"math"
)

// Extent is a vertical extent. Ascent is negative (above the baseline),
// descent is positive.
type Extent struct {
	Ascent, Descent float32
}

// ExtendBy enlarges e to include o.
func (e *Extent) ExtendBy(o Extent) {
	if o.Ascent < e.Ascent {
		e.Ascent = o.Ascent
	}
	if o.Descent > e.Descent {
		e.Descent = o.Descent
	}
}

func (e Extent) String() string {
	return fmt.Sprintf("(ascent=%g, descent=%g)", e.Ascent, e.Descent)
}

// Rect is a bounding box in a coordinate system which grows downwards.
type Rect struct {
	Left, Top, Right, Bottom float32
}

// InvalidRect returns a rectangle for which IsValid is false.
func InvalidRect() Rect {
	nan := float32(math.NaN())
	return Rect{nan, nan, nan, nan}
}

// IsValid is false for rectangles created with InvalidRect.
func (r Rect) IsValid() bool {
	return !math.IsNaN(float64(r.Left))
}

// IsEmpty is true if r has zero width or zero height.
func (r Rect) IsEmpty() bool {
	return r.Left == r.Right || r.Top == r.Bottom
}

// Width returns the horizontal size of r.
func (r Rect) Width() float32 {
	return r.Right - r.Left
}

// Offset shifts r.
func (r *Rect) Offset(dx, dy float32) {
	r.Left += dx
	r.Top += dy
	r.Right += dx
	r.Bottom += dy
}

// Join enlarges r to the union of r and o, with o shifted by (dx, dy).
// An empty r is replaced.
func (r *Rect) Join(o Rect, dx, dy float32) {
	if r.IsEmpty() {
		*r = Rect{o.Left + dx, o.Top + dy, o.Right + dx, o.Bottom + dy}
		return
	}
	r.Left = min32(r.Left, o.Left+dx)
	r.Top = min32(r.Top, o.Top+dy)
	r.Right = max32(r.Right, o.Right+dx)
	r.Bottom = max32(r.Bottom, o.Bottom+dy)
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g, %g)-(%g, %g)", r.Left, r.Top, r.Right, r.Bottom)
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
