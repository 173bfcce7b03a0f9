package measure

import (
	"fmt"

	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/core/font"
	"github.com/npillmayer/parashape/engine/shaping"
	"github.com/npillmayer/parashape/engine/text/segment"
)

// RunKind tells style runs from replacement runs.
type RunKind uint8

// Kinds of runs.
const (
	StyleRunKind       RunKind = iota // text shaped with a paint
	ReplacementRunKind                // placeholder of fixed width
)

func (k RunKind) String() string {
	switch k {
	case StyleRunKind:
		return "style"
	case ReplacementRunKind:
		return "replacement"
	}
	return fmt.Sprintf("RunKind(%d)", uint8(k))
}

// WordStyle selects the unit of line breaking.
type WordStyle uint8

// Word styles. With WordStylePhrase, lines break at spaces and mandatory
// breaks only, keeping phrases together.
const (
	WordStyleNone WordStyle = iota
	WordStylePhrase
)

// Run is a range of a paragraph's text with uniform settings.
//
// Runs of a paragraph are given in logical order and must not overlap.
type Run struct {
	Kind RunKind
	core.Range
	Paint       *shaping.Paint         // style runs only
	RTL         bool                   // style runs only
	LineBreak   segment.LineBreakStyle // style runs only
	WordStyle   WordStyle              // style runs only
	Hyphenation bool                   // style runs only
	Width       float32                // replacement runs only
	Locales     uint32                 // locale list of replacement runs
}

// StyleRun creates a run of text shaped with paint.
func StyleRun(rng core.Range, paint *shaping.Paint, rtl bool) Run {
	core.Assert(paint != nil, "style run %v without paint", rng)
	return Run{
		Kind:  StyleRunKind,
		Range: rng,
		Paint: paint,
		RTL:   rtl,
	}
}

// ReplacementRun creates a placeholder of a given width. The width is
// credited to the first character of rng.
func ReplacementRun(rng core.Range, width float32, localeListID uint32) Run {
	return Run{
		Kind:    ReplacementRunKind,
		Range:   rng,
		Width:   width,
		Locales: localeListID,
	}
}

// CanBreak is true if lines may break within the run.
func (r *Run) CanBreak() bool {
	switch r.Kind {
	case StyleRunKind:
		return r.LineBreak != segment.LineBreakStyleNoBreak
	}
	return false
}

// CanHyphenate is true if words of the run may be hyphenated.
func (r *Run) CanHyphenate() bool {
	switch r.Kind {
	case StyleRunKind:
		return r.Hyphenation && r.CanBreak()
	}
	return false
}

// LocaleListID returns the locale list governing word breaking and
// hyphenation within the run.
func (r *Run) LocaleListID() uint32 {
	switch r.Kind {
	case StyleRunKind:
		return r.Paint.LocaleListID
	}
	return r.Locales
}

// LineBreakStyle returns the line-break style of the run.
func (r *Run) LineBreakStyle() segment.LineBreakStyle {
	if r.Kind == StyleRunKind {
		return r.LineBreak
	}
	return segment.LineBreakStyleNone
}

func (r *Run) bidiMode() segment.BidiMode {
	if r.RTL {
		return segment.ForceRTL
	}
	return segment.ForceLTR
}

// MeasureText returns the total advance of text set in the style of r, e.g.
// of a hyphen to be appended to a line.
func (r *Run) MeasureText(cache *shaping.Cache, text []rune) float32 {
	switch r.Kind {
	case StyleRunKind:
		whole := core.Range{Start: 0, End: len(text)}
		return cache.MeasureText(text, whole, r.bidiMode(), r.Paint, 0, 0, nil, nil)
	case ReplacementRunKind:
		return r.Width
	}
	panic(fmt.Sprintf("unknown run kind %v", r.Kind))
}

func (r Run) String() string {
	switch r.Kind {
	case StyleRunKind:
		return fmt.Sprintf("style-run%v{%v, rtl=%v}", r.Range, r.Paint, r.RTL)
	case ReplacementRunKind:
		return fmt.Sprintf("replacement-run%v{width=%g}", r.Range, r.Width)
	}
	return fmt.Sprintf("run%v{%v}", r.Range, r.Kind)
}

// --- Line metrics ----------------------------------------------------------

// LineMetrics accumulates advance, ink bounds and vertical extent of
// consecutive parts of a line.
type LineMetrics struct {
	Extent  font.Extent
	Bounds  font.Rect
	Advance float32
}

// Append adds a part of a line to the right of the current parts.
func (lm *LineMetrics) Append(extent font.Extent, bounds font.Rect, advance float32) {
	lm.Extent.ExtendBy(extent)
	if bounds.IsValid() && !bounds.IsEmpty() {
		lm.Bounds.Join(bounds, lm.Advance, 0)
	}
	lm.Advance += advance
}

// AppendMetrics adds the metrics of another part of a line.
func (lm *LineMetrics) AppendMetrics(o LineMetrics) {
	lm.Append(o.Extent, o.Bounds, o.Advance)
}
