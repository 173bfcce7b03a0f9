package segment

import (
	"github.com/npillmayer/parashape/core"
	"golang.org/x/text/unicode/bidi"
)

// BidiMode tells how to resolve the direction of a paragraph.
type BidiMode uint8

// Bidi modes. The default modes take the direction from the first strong
// character and fall back to the given direction.
const (
	DefaultLTR BidiMode = iota
	DefaultRTL
	ForceLTR
	ForceRTL
)

func (m BidiMode) String() string {
	switch m {
	case DefaultLTR:
		return "default-LTR"
	case DefaultRTL:
		return "default-RTL"
	case ForceLTR:
		return "LTR"
	case ForceRTL:
		return "RTL"
	}
	return "[UNKNOWN]"
}

// IsRTL is true for modes defaulting or forcing right-to-left.
func (m BidiMode) IsRTL() bool {
	return m == DefaultRTL || m == ForceRTL
}

// BidiRun is a range of text with a uniform direction.
type BidiRun struct {
	core.Range
	RTL bool
}

// BidiRuns splits text[rng] into directional runs, in visual order.
//
// Text without right-to-left characters results in a single run. If the
// bidi algorithm fails, the range is returned as a single run in the
// direction of mode.
func BidiRuns(text []rune, rng core.Range, mode BidiMode) []BidiRun {
	core.Assert(rng.Start >= 0 && rng.End <= len(text) && rng.Start <= rng.End,
		"bidi range %v out of text bounds", rng)
	if rng.IsEmpty() {
		return nil
	}
	single := []BidiRun{{Range: rng, RTL: mode.IsRTL()}}
	switch mode {
	case ForceLTR, ForceRTL:
		return single
	case DefaultLTR:
		if !hasRTL(text[rng.Start:rng.End]) {
			return single
		}
	}
	dir := bidi.LeftToRight
	if mode == DefaultRTL {
		dir = bidi.RightToLeft
	}
	var p bidi.Paragraph
	if _, err := p.SetString(string(text[rng.Start:rng.End]), bidi.DefaultDirection(dir)); err != nil {
		tracer().Errorf("bidi resolution failed: %v", err)
		return single
	}
	order, err := p.Order()
	if err != nil {
		tracer().Errorf("bidi ordering failed: %v", err)
		return single
	}
	runs := make([]BidiRun, 0, order.NumRuns())
	covered := 0
	for i := 0; i < order.NumRuns(); i++ {
		run := order.Run(i)
		start, end := run.Pos() // end is inclusive
		end++
		if start < 0 || end > rng.Len() || start >= end {
			tracer().Errorf("bidi run [%d…%d) out of range %v", start, end, rng)
			return single
		}
		runs = append(runs, BidiRun{
			Range: core.Range{Start: rng.Start + start, End: rng.Start + end},
			RTL:   run.Direction() == bidi.RightToLeft,
		})
		covered += end - start
	}
	if covered != rng.Len() {
		tracer().Errorf("bidi runs cover %d of %d characters", covered, rng.Len())
		return single
	}
	return runs
}

// hasRTL is true if text contains a character which may start a
// right-to-left run.
func hasRTL(text []rune) bool {
	for _, r := range text {
		if r < 0x0590 {
			continue
		}
		props, _ := bidi.LookupRune(r)
		switch props.Class() {
		case bidi.R, bidi.AL, bidi.AN, bidi.RLE, bidi.RLO, bidi.RLI, bidi.FSI:
			return true
		}
	}
	return false
}
