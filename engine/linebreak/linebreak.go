package linebreak

import (
	"fmt"
	"strings"

	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/core/font"
	"github.com/npillmayer/parashape/engine/hyphenation"
	"github.com/npillmayer/parashape/engine/measure"
)

// Strategy selects a line-breaking algorithm.
type Strategy uint8

// Line-breaking strategies. Balanced tries to give all lines, including
// the last one, similar widths.
const (
	Greedy Strategy = iota
	HighQuality
	Balanced
)

func (s Strategy) String() string {
	switch s {
	case Greedy:
		return "greedy"
	case HighQuality:
		return "high-quality"
	case Balanced:
		return "balanced"
	}
	return fmt.Sprintf("Strategy(%d)", uint8(s))
}

// HyphenationFrequency tells how eagerly words are hyphenated.
type HyphenationFrequency uint8

// Hyphenation frequencies.
const (
	HyphenationNone HyphenationFrequency = iota
	HyphenationNormal
	HyphenationFull
)

func (f HyphenationFrequency) String() string {
	switch f {
	case HyphenationNone:
		return "none"
	case HyphenationNormal:
		return "normal"
	case HyphenationFull:
		return "full"
	}
	return fmt.Sprintf("HyphenationFrequency(%d)", uint8(f))
}

// Flags describe a line: the hyphen edit to apply to it, and whether it
// contains a TAB.
type Flags uint32

const tabFlag Flags = 0x20000000

func makeFlags(edit hyphenation.Edit, hasTab bool) Flags {
	f := Flags(edit)
	if hasTab {
		f |= tabFlag
	}
	return f
}

// Edit returns the hyphen edit for the line.
func (f Flags) Edit() hyphenation.Edit {
	return hyphenation.Edit(f & 0xff)
}

// HasTab is true if the line contains a TAB character.
func (f Flags) HasTab() bool {
	return f&tabFlag != 0
}

// Result is the outcome of breaking a paragraph into lines. All slices have
// one entry per line.
type Result struct {
	BreakPoints []int       // offset after the last character of each line
	Widths      []float32   // advance of each line, without trailing spaces
	Ascents     []float32   // negative
	Descents    []float32   // positive
	Bounds      []font.Rect // ink bounds, or the advance box
	Flags       []Flags
}

// Len returns the number of lines.
func (r *Result) Len() int {
	return len(r.BreakPoints)
}

// Line returns the range of line #l.
func (r *Result) Line(l int) core.Range {
	start := 0
	if l > 0 {
		start = r.BreakPoints[l-1]
	}
	return core.Range{Start: start, End: r.BreakPoints[l]}
}

func (r *Result) String() string {
	var b strings.Builder
	for l := range r.BreakPoints {
		fmt.Fprintf(&b, "%v w=%g %v; ", r.Line(l), r.Widths[l], r.Flags[l].Edit())
	}
	return b.String()
}

func (r *Result) reverse() {
	n := len(r.BreakPoints)
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		r.BreakPoints[i], r.BreakPoints[j] = r.BreakPoints[j], r.BreakPoints[i]
		r.Widths[i], r.Widths[j] = r.Widths[j], r.Widths[i]
		r.Ascents[i], r.Ascents[j] = r.Ascents[j], r.Ascents[i]
		r.Descents[i], r.Descents[j] = r.Descents[j], r.Descents[i]
		r.Bounds[i], r.Bounds[j] = r.Bounds[j], r.Bounds[i]
		r.Flags[i], r.Flags[j] = r.Flags[j], r.Flags[i]
	}
}

// appendLine appends line [start…end) of width w. prev is the hyphenation
// type of the break before the line, this the one of the break after it.
func (r *Result) appendLine(para *measure.Paragraph, start, end int, w float32,
	prev, this hyphenation.Type, hasTab, useBoundsForWidth bool) {
	//
	rng := core.Range{Start: start, End: end}
	r.BreakPoints = append(r.BreakPoints, end)
	r.Widths = append(r.Widths, w)
	trimmed := measure.TrimTrailingLineEndSpaces(para.Text, rng)
	if useBoundsForWidth && !trimmed.IsEmpty() {
		lm := para.LineMetrics(trimmed)
		r.Ascents = append(r.Ascents, lm.Extent.Ascent)
		r.Descents = append(r.Descents, lm.Extent.Descent)
		r.Bounds = append(r.Bounds, lm.Bounds)
	} else {
		extent := para.Extent(rng)
		r.Ascents = append(r.Ascents, extent.Ascent)
		r.Descents = append(r.Descents, extent.Descent)
		r.Bounds = append(r.Bounds, font.Rect{Left: 0, Top: extent.Ascent, Right: w, Bottom: extent.Descent})
	}
	edit := hyphenation.PackEdit(hyphenation.EditForNextLine(prev), hyphenation.EditForThisLine(this))
	r.Flags = append(r.Flags, makeFlags(edit, hasTab))
}

// BreakIntoLines breaks a measured paragraph into lines. Text containing a
// TAB is always broken greedily. If justified is set, lines may shrink by
// a third of a space per space, and hyphenation is favoured over loose
// lines. If useBoundsForWidth is set, lines are fitted by their ink bounds
// where glyphs overhang.
func BreakIntoLines(text []rune, strategy Strategy, frequency HyphenationFrequency, justified bool,
	measured *measure.Paragraph, lineWidth LineWidth, tabStops TabStops, useBoundsForWidth bool) *Result {
	//
	core.Assert(len(text) == measured.Len(), "text of length %d does not match measured paragraph of length %d",
		len(text), measured.Len())
	if len(text) == 0 {
		return &Result{}
	}
	core.Assert(coversText(measured), "runs of measured paragraph do not cover its text")
	var result *Result
	if strategy == Greedy || hasTab(text) {
		result = breakGreedy(measured, lineWidth, tabStops, frequency != HyphenationNone, useBoundsForWidth)
	} else {
		result = breakOptimal(measured, strategy, frequency, justified, lineWidth, useBoundsForWidth)
	}
	tracer().Debugf("%s line breaking gives %d lines", strategy, result.Len())
	return result
}

func hasTab(text []rune) bool {
	for _, c := range text {
		if c == '\t' {
			return true
		}
	}
	return false
}

// coversText is true if the runs of para leave no gaps.
func coversText(para *measure.Paragraph) bool {
	pos := 0
	for i := range para.Runs {
		if para.Runs[i].Start != pos {
			return false
		}
		pos = para.Runs[i].End
	}
	return pos == para.Len()
}
