package measure

import (
	"fmt"

	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/core/font"
	"github.com/npillmayer/parashape/engine/hyphenation"
	"github.com/npillmayer/parashape/engine/shaping"
	"github.com/npillmayer/parashape/engine/text/segment"
)

// Options control what is computed when measuring a paragraph.
type Options struct {
	Hyphenation   bool       // find hyphenation points
	Layout        bool       // record shaped pieces for building layouts
	Bounds        bool       // compute ink bounds and flag overhanging characters
	IgnoreKerning bool       // compute hyphenated widths from character widths
	Hint          *Paragraph // earlier measurement of the same text, may be nil
}

// HyphenBreak is a hyphenation point within a word. First is the width of
// the part of the word before the break, including the hyphen, Second the
// width of the part after the break, including any hyphen inserted at the
// start of the next line. Both include their context up to the adjacent
// word breaks.
type HyphenBreak struct {
	Offset        int
	Type          hyphenation.Type
	First, Second float32
}

func (hb HyphenBreak) String() string {
	return fmt.Sprintf("hyphen@%d{%v, %g|%g}", hb.Offset, hb.Type, hb.First, hb.Second)
}

// Measurer measures paragraphs. It is safe for concurrent use, provided
// its collaborators are.
type Measurer struct {
	cache    *shaping.Cache
	breaker  *segment.WordBreaker
	registry *hyphenation.Registry
}

// NewMeasurer creates a measurer. cache and breaker may be nil, resulting in
// the process-wide defaults. registry may be nil, resulting in no
// hyphenation.
func NewMeasurer(cache *shaping.Cache, breaker *segment.WordBreaker, registry *hyphenation.Registry) *Measurer {
	if cache == nil {
		cache = shaping.DefaultCache()
	}
	if breaker == nil {
		breaker = segment.DefaultWordBreaker()
	}
	return &Measurer{cache: cache, breaker: breaker, registry: registry}
}

// Cache returns the piece cache of m.
func (m *Measurer) Cache() *shaping.Cache {
	return m.cache
}

// WordBreaker returns the word breaker of m.
func (m *Measurer) WordBreaker() *segment.WordBreaker {
	return m.breaker
}

// Hyphenators returns the hyphenator registry of m, which may be nil.
func (m *Measurer) Hyphenators() *hyphenation.Registry {
	return m.registry
}

// Paragraph is a measured paragraph. Widths holds the advance of every
// character; characters within a cluster other than the first one have
// width 0.
//
// A Paragraph is immutable and safe for concurrent use.
type Paragraph struct {
	Text         []rune
	Runs         []Run
	Widths       []float32
	HyphenBreaks []HyphenBreak // in increasing order of offset

	overhang []bool
	pieces   *Pieces
	cache    *shaping.Cache
	breaker  *segment.WordBreaker
	registry *hyphenation.Registry
}

// Measure measures text, which is covered by runs. Runs must be in logical
// order and must not overlap; characters outside of any run have zero
// width.
//
// Shaping failures are logged and result in zero widths; Measure never
// fails.
func (m *Measurer) Measure(text []rune, runs []Run, opts Options) *Paragraph {
	checkRuns(text, runs)
	para := &Paragraph{
		Text:     text,
		Runs:     runs,
		Widths:   make([]float32, len(text)),
		overhang: make([]bool, len(text)),
		cache:    m.cache,
		breaker:  m.breaker,
		registry: m.registry,
	}
	src := pieceSource{cache: m.cache, text: text}
	if opts.Layout {
		para.pieces = newPieces()
		src.record = para.pieces
	}
	if opts.Hint != nil && equalRunes(opts.Hint.Text, text) {
		src.known = opts.Hint.pieces
	}
	for i := range runs {
		r := &runs[i]
		switch r.Kind {
		case StyleRunKind:
			para.measureStyleRun(src, r, opts.Bounds)
		case ReplacementRunKind:
			if !r.IsEmpty() {
				para.Widths[r.Start] = r.Width
			}
		}
	}
	if opts.Hyphenation && m.registry != nil {
		para.computeHyphenation(src, opts.IgnoreKerning)
	}
	tracer().Debugf("measured paragraph of %d characters in %d runs, %d hyphenation points",
		len(text), len(runs), len(para.HyphenBreaks))
	return para
}

func checkRuns(text []rune, runs []Run) {
	prev := 0
	for i := range runs {
		r := &runs[i]
		core.Assert(r.Start >= prev && r.Start <= r.End && r.End <= len(text),
			"run %d %v out of order or out of text bounds", i, r.Range)
		prev = r.End
	}
}

func equalRunes(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// measureStyleRun writes the advances of the characters of r. If
// computeBounds is set, characters of pieces with ink outside of their
// advance box are flagged.
func (para *Paragraph) measureStyleRun(src pieceSource, r *Run, computeBounds bool) {
	src.each(r, r.Paint, r.Range, r.Range, hyphenation.NoStartEdit, hyphenation.NoEndEdit, computeBounds,
		func(p *shaping.Piece, rng core.Range, extra float32, bounds font.Rect) {
			copy(para.Widths[rng.Start:rng.End], p.Advances)
			if p.Len() > 0 {
				para.Widths[rng.Start] += extra
			}
			if !computeBounds || !bounds.IsValid() {
				return
			}
			if bounds.Left < 0 || bounds.Right > p.Advance+extra {
				for i := rng.Start; i < rng.End; i++ {
					para.overhang[i] = true
				}
			}
		})
}

// --- Hyphenation -----------------------------------------------------------

func (para *Paragraph) computeHyphenation(src pieceSource, ignoreKerning bool) {
	proc := NewCharProcessor(para.Text, para.breaker, para.registry)
	for i := range para.Runs {
		r := &para.Runs[i]
		if !r.CanHyphenate() {
			continue
		}
		proc.UpdateLocaleIfNecessary(r)
		for j := r.Start; j < r.End; j++ {
			proc.FeedChar(j, para.Text[j], para.Widths[j], r.CanBreak())
			if j+1 == proc.NextWordBreak {
				para.hyphenationPoints(src, r, proc.Hyphenator, proc.ContextRange(), proc.WordRange(),
					ignoreKerning)
			}
		}
	}
}

// hyphenationPoints hyphenates the word at target, and measures both
// parts of context at every hyphenation point.
func (para *Paragraph) hyphenationPoints(src pieceSource, r *Run, h *hyphenation.Hyphenator,
	context, target core.Range, ignoreKerning bool) {
	//
	if h == nil || target.IsEmpty() || !r.ContainsRange(context) || !context.ContainsRange(target) {
		return
	}
	types := h.HyphenateText(para.Text[target.Start:target.End])
	for k, t := range types {
		if t == hyphenation.DontBreak {
			continue
		}
		at := target.Start + k
		thisLine, nextLine := hyphenation.EditForThisLine(t), hyphenation.EditForNextLine(t)
		var first, second float32
		if ignoreKerning {
			first = para.sumOfWidths(core.Range{Start: context.Start, End: at})
			if thisLine == hyphenation.ReplaceWithHyphen && at > context.Start {
				first -= para.Widths[at-1]
			}
			if s := hyphenation.EndString(thisLine); len(s) > 0 {
				first += r.MeasureText(para.cache, s)
			}
			second = para.sumOfWidths(core.Range{Start: at, End: context.End})
			if s := hyphenation.StartString(nextLine); len(s) > 0 {
				second += r.MeasureText(para.cache, s)
			}
		} else {
			first = src.measure(r, core.Range{Start: context.Start, End: at}, hyphenation.NoStartEdit, thisLine)
			second = src.measure(r, core.Range{Start: at, End: context.End}, nextLine, hyphenation.NoEndEdit)
		}
		para.HyphenBreaks = append(para.HyphenBreaks, HyphenBreak{
			Offset: at,
			Type:   t,
			First:  first,
			Second: second,
		})
	}
}

func (para *Paragraph) sumOfWidths(rng core.Range) float32 {
	var sum float32
	for _, w := range para.Widths[rng.Start:rng.End] {
		sum += w
	}
	return sum
}

// --- Queries ---------------------------------------------------------------

// Len returns the number of characters of the paragraph.
func (para *Paragraph) Len() int {
	return len(para.Text)
}

// Advance returns the sum of the widths of the characters of rng.
func (para *Paragraph) Advance(rng core.Range) float32 {
	para.checkRange(rng)
	return para.sumOfWidths(rng)
}

// MeasureWithEdits returns the advance of rng with hyphen edits applied to
// its start and its end.
func (para *Paragraph) MeasureWithEdits(rng core.Range, startEdit hyphenation.StartEdit,
	endEdit hyphenation.EndEdit) float32 {
	//
	para.checkRange(rng)
	if startEdit == hyphenation.NoStartEdit && endEdit == hyphenation.NoEndEdit {
		return para.sumOfWidths(rng)
	}
	src := pieceSource{cache: para.cache, text: para.Text, known: para.pieces}
	var advance float32
	for i := range para.Runs {
		r := &para.Runs[i]
		sub := r.Intersect(rng)
		if sub.IsEmpty() {
			continue
		}
		switch r.Kind {
		case StyleRunKind:
			se, ee := hyphenation.NoStartEdit, hyphenation.NoEndEdit
			if sub.Start == rng.Start {
				se = startEdit
			}
			if sub.End == rng.End {
				ee = endEdit
			}
			advance += src.measure(r, sub, se, ee)
		case ReplacementRunKind:
			advance += para.sumOfWidths(sub)
		}
	}
	return advance
}

// CharProcessor creates a char processor using the word breaker the
// paragraph has been measured with.
func (para *Paragraph) CharProcessor() *CharProcessor {
	return NewCharProcessor(para.Text, para.breaker, para.registry)
}

// Pieces returns the recorded pieces, or nil if pieces have not been
// recorded.
func (para *Paragraph) Pieces() *Pieces {
	return para.pieces
}

// HasOverhang is true if characters of rng may paint outside of their
// advance box. Only the characters near the ends of long ranges are
// checked, as overhang in the middle of a line does not matter.
func (para *Paragraph) HasOverhang(rng core.Range) bool {
	para.checkRange(rng)
	const ends = 5
	if rng.Len() < 2*ends {
		for i := rng.Start; i < rng.End; i++ {
			if para.overhang[i] {
				return true
			}
		}
		return false
	}
	for i := 0; i < ends; i++ {
		if para.overhang[rng.Start+i] || para.overhang[rng.End-1-i] {
			return true
		}
	}
	return false
}

// Bounds returns the ink bounding box of rng, relative to the start of rng
// on the baseline.
func (para *Paragraph) Bounds(rng core.Range) font.Rect {
	return para.metrics(rng, true).Bounds
}

// Extent returns the vertical extent of the fonts used for rng.
func (para *Paragraph) Extent(rng core.Range) font.Extent {
	return para.metrics(rng, false).Extent
}

// LineMetrics returns advance, ink bounds and extent of rng.
func (para *Paragraph) LineMetrics(rng core.Range) LineMetrics {
	return para.metrics(rng, true)
}

func (para *Paragraph) metrics(rng core.Range, needsBounds bool) LineMetrics {
	para.checkRange(rng)
	src := pieceSource{cache: para.cache, text: para.Text, known: para.pieces}
	var lm LineMetrics
	for i := range para.Runs {
		r := &para.Runs[i]
		sub := r.Intersect(rng)
		if sub.IsEmpty() {
			continue
		}
		switch r.Kind {
		case StyleRunKind:
			var run LineMetrics
			src.each(r, r.Paint, sub, r.Range, hyphenation.NoStartEdit, hyphenation.NoEndEdit, needsBounds,
				func(p *shaping.Piece, _ core.Range, extra float32, bounds font.Rect) {
					run.Append(p.Extent, bounds, p.Advance+extra)
				})
			lm.AppendMetrics(run)
		case ReplacementRunKind:
			lm.Append(font.Extent{}, font.Rect{}, para.sumOfWidths(sub))
		}
	}
	return lm
}

// BuildLayout lays out the glyphs of rng, e.g. of a line. Shaping contexts
// are restricted to ctx. If paint is not nil, it overrides the paints of
// the style runs. Hyphen edits apply to the start and the end of rng.
func (para *Paragraph) BuildLayout(rng, ctx core.Range, paint *shaping.Paint,
	startEdit hyphenation.StartEdit, endEdit hyphenation.EndEdit) *shaping.Layout {
	//
	para.checkRange(rng)
	core.Assert(ctx.ContainsRange(rng), "layout range %v outside of context %v", rng, ctx)
	src := pieceSource{cache: para.cache, text: para.Text, known: para.pieces}
	layout := shaping.NewLayout(rng.Len())
	for i := range para.Runs {
		r := &para.Runs[i]
		sub := r.Intersect(rng)
		if sub.IsEmpty() {
			continue
		}
		switch r.Kind {
		case StyleRunKind:
			p := r.Paint
			if paint != nil {
				p = paint
			}
			se, ee := hyphenation.NoStartEdit, hyphenation.NoEndEdit
			if sub.Start == rng.Start {
				se = startEdit
			}
			if sub.End == rng.End {
				ee = endEdit
			}
			src.each(r, p, sub, r.Intersect(ctx), se, ee, false,
				func(piece *shaping.Piece, at core.Range, extra float32, _ font.Rect) {
					layout.AppendPiece(piece, at.Start-rng.Start, extra)
				})
		case ReplacementRunKind:
			layout.AppendAdvance(sub.Start-rng.Start, para.sumOfWidths(sub))
		}
	}
	return layout
}

func (para *Paragraph) checkRange(rng core.Range) {
	core.Assert(rng.Start >= 0 && rng.Start <= rng.End && rng.End <= len(para.Text),
		"range %v out of paragraph bounds [0…%d)", rng, len(para.Text))
}
