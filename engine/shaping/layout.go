package shaping

import (
	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/core/font"
	"github.com/npillmayer/parashape/engine/hyphenation"
	"github.com/npillmayer/parashape/engine/text/segment"
)

// LayoutGlyph is a glyph positioned relative to the start of a layout.
type LayoutGlyph struct {
	Font  font.FakedFont
	GID   font.GlyphID
	X, Y  float32
	Index int // index of the originating character, relative to the layout
}

// Layout is a sequence of positioned glyphs for a range of text, e.g. a
// line. Advances has an entry for every character of the range.
type Layout struct {
	Glyphs   []LayoutGlyph
	Advances []float32
	Advance  float32
}

// NewLayout creates an empty layout for n characters.
func NewLayout(n int) *Layout {
	return &Layout{
		Glyphs:   make([]LayoutGlyph, 0, n),
		Advances: make([]float32, n),
	}
}

// AppendPiece appends the glyphs of a piece, which starts at character start
// of the layout. extra is added to the advance of the piece's first
// character.
func (l *Layout) AppendPiece(p *Piece, start int, extra float32) {
	for _, g := range p.Glyphs {
		l.Glyphs = append(l.Glyphs, LayoutGlyph{
			Font:  g.Font,
			GID:   g.GID,
			X:     l.Advance + g.X,
			Y:     g.Y,
			Index: start + g.Cluster,
		})
	}
	for i, a := range p.Advances {
		l.Advances[start+i] = a
	}
	if len(p.Advances) > 0 {
		l.Advances[start] += extra
	}
	l.Advance += p.Advance + extra
}

// AppendAdvance appends a gap of a given width without any glyphs, e.g. for
// an inline object. The advance is credited to character start.
func (l *Layout) AppendAdvance(start int, advance float32) {
	if start < len(l.Advances) {
		l.Advances[start] += advance
	}
	l.Advance += advance
}

// LayoutText lays out text[rng.Start:rng.End]. Hyphen edits apply to the
// start and the end of the range only.
func (c *Cache) LayoutText(text []rune, rng core.Range, mode segment.BidiMode, paint *Paint,
	startEdit hyphenation.StartEdit, endEdit hyphenation.EndEdit) *Layout {
	//
	l := NewLayout(rng.Len())
	for _, run := range segment.BidiRuns(text, rng, mode) {
		c.layoutRun(text, run, rng, paint, startEdit, endEdit, func(p *Piece, piece core.Range, extra float32, _ font.Rect) {
			l.AppendPiece(p, piece.Start-rng.Start, extra)
		}, false)
	}
	return l
}

// MeasureText returns the advance of text[rng.Start:rng.End]. If advances
// is not nil, it receives the advance of every character of the range. If
// bounds is not nil, it receives the ink bounding box.
func (c *Cache) MeasureText(text []rune, rng core.Range, mode segment.BidiMode, paint *Paint,
	startEdit hyphenation.StartEdit, endEdit hyphenation.EndEdit, advances []float32, bounds *font.Rect) float32 {
	//
	var total float32
	var ink font.Rect
	for _, run := range segment.BidiRuns(text, rng, mode) {
		c.layoutRun(text, run, rng, paint, startEdit, endEdit, func(p *Piece, piece core.Range, extra float32, b font.Rect) {
			if advances != nil {
				offset := piece.Start - rng.Start
				copy(advances[offset:offset+p.Len()], p.Advances)
				if p.Len() > 0 {
					advances[offset] += extra
				}
			}
			if bounds != nil && b.IsValid() {
				ink.Join(b, total, 0)
			}
			total += p.Advance + extra
		}, bounds != nil)
	}
	if bounds != nil {
		*bounds = ink
	}
	return total
}

type pieceSink func(p *Piece, piece core.Range, extra float32, bounds font.Rect)

// layoutRun shapes the pieces of a bidi run. Word spacing is added to
// pieces consisting of a single word space.
func (c *Cache) layoutRun(text []rune, run segment.BidiRun, whole core.Range, paint *Paint,
	startEdit hyphenation.StartEdit, endEdit hyphenation.EndEdit, sink pieceSink, needsBounds bool) {
	//
	for _, piece := range segment.Pieces(text, run.Range, run.RTL) {
		se, ee := hyphenation.NoStartEdit, hyphenation.NoEndEdit
		if piece.Start == whole.Start {
			se = startEdit
		}
		if piece.End == whole.End {
			ee = endEdit
		}
		var extra float32
		if piece.Len() == 1 && segment.IsWordSpace(text[piece.Start]) {
			extra = paint.WordSpacing
		}
		ctx := text[piece.Context.Start:piece.Context.End]
		rng := piece.Range
		c.GetOrCreate(ctx, rng.Shift(-piece.Context.Start), paint, run.RTL, se, ee, needsBounds,
			func(p *Piece, _ *Paint, bounds font.Rect) {
				sink(p, rng, extra, bounds)
			})
	}
}
