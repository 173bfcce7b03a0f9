package core

import "fmt"

// Range is a half-open range [Start…End) of positions within a paragraph's
// text. Positions count runes.
type Range struct {
	Start, End int
}

// NewRange creates a range. It panics if end < start or start < 0.
func NewRange(start, end int) Range {
	Assert(start >= 0 && start <= end, "invalid range [%d…%d)", start, end)
	return Range{Start: start, End: end}
}

// Len returns the number of positions in r.
func (r Range) Len() int {
	return r.End - r.Start
}

// IsEmpty is true for ranges without any position.
func (r Range) IsEmpty() bool {
	return r.End <= r.Start
}

// Contains is true if position i is part of r.
func (r Range) Contains(i int) bool {
	return r.Start <= i && i < r.End
}

// ContainsRange is true if o is a sub-range of r.
func (r Range) ContainsRange(o Range) bool {
	return r.Start <= o.Start && o.End <= r.End
}

// Intersect returns the overlap of r and o. The result is empty if r and o
// are disjoint.
func (r Range) Intersect(o Range) Range {
	x := Range{Start: max(r.Start, o.Start), End: min(r.End, o.End)}
	if x.End < x.Start {
		x.End = x.Start
	}
	return x
}

// Shift moves r by delta positions.
func (r Range) Shift(delta int) Range {
	return Range{Start: r.Start + delta, End: r.End + delta}
}

func (r Range) String() string {
	return fmt.Sprintf("[%d…%d)", r.Start, r.End)
}
