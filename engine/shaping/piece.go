package shaping

import (
	"fmt"

	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/core/font"
	"github.com/npillmayer/parashape/engine/glyphing"
	"github.com/npillmayer/parashape/engine/hyphenation"
	"github.com/npillmayer/parashape/engine/text/segment"
)

// Glyph is a positioned glyph of a piece. X and Y are relative to the
// start of the piece, Y grows upwards.
type Glyph struct {
	Font    font.FakedFont
	GID     font.GlyphID
	X, Y    float32
	Cluster int // index of the originating character, relative to the piece
}

// Piece is the shaped form of a short range of text.
type Piece struct {
	Glyphs   []Glyph     // in visual order
	Advances []float32   // one entry per character of the range
	Advance  float32     // sum of Advances
	Extent   font.Extent // vertical extent of the fonts used
}

// Len returns the number of characters the piece has been created for.
func (p *Piece) Len() int {
	return len(p.Advances)
}

func (p *Piece) String() string {
	return fmt.Sprintf("piece{len=%d, glyphs=%d, advance=%g}", len(p.Advances), len(p.Glyphs), p.Advance)
}

// zeroPiece is the result of a failed shaping attempt.
func zeroPiece(n int) *Piece {
	return &Piece{Advances: make([]float32, n)}
}

// Shape creates the piece for text[rng.Start:rng.End]. text is the context
// of the range and may influence shaping. Hyphen edits are applied to the
// range before shaping. Advances of inserted hyphens are credited to the
// adjacent characters of the range.
//
// If shaper fails, Shape logs the error and returns a piece with zero
// advances and no glyphs.
func Shape(shaper glyphing.Shaper, text []rune, rng core.Range, paint *Paint, rtl bool,
	edit hyphenation.Edit) *Piece {
	//
	core.Assert(rng.Start >= 0 && rng.End <= len(text) && rng.Start <= rng.End,
		"piece range %v out of text range [0…%d)", rng, len(text))
	if rng.IsEmpty() {
		return &Piece{}
	}
	buf := newEditBuffer(text, rng, edit)
	piece := &Piece{Advances: make([]float32, rng.Len())}
	runs := paint.Collection.Itemize(buf.chars[buf.rng.Start:buf.rng.End], paint.Style,
		paint.LocaleListID, paint.Variant, 0)
	dir := glyphing.LeftToRight
	if rtl {
		dir = glyphing.RightToLeft
	}
	x := float32(0)
	for k := range runs {
		if rtl {
			k = len(runs) - 1 - k // visual order
		}
		run := runs[k]
		ff := paint.Collection.BestFont(buf.chars[buf.rng.Start:buf.rng.End], run, paint.Style)
		fontRng := core.Range{Start: run.Start, End: run.End}.Shift(buf.rng.Start)
		buf.fixHyphens(fontRng, ff)
		scripts := segment.ScriptRuns(buf.chars, fontRng)
		for s := range scripts {
			if rtl {
				s = len(scripts) - 1 - s
			}
			req := glyphing.Request{
				Text:          buf.chars,
				Start:         scripts[s].Start,
				End:           scripts[s].End,
				Font:          ff,
				Size:          paint.Size,
				ScaleX:        paint.Scale(),
				LetterSpacing: paint.LetterSpacing,
				Direction:     dir,
				Script:        scripts[s].Script,
				Language:      paint.Language(),
				Features:      paint.Features,
			}
			res, err := shaper.Shape(req)
			if err != nil {
				tracer().Errorf("cannot shape %q with %s: %v",
					string(text[rng.Start:rng.End]), sourceOf(ff), err)
				return zeroPiece(rng.Len())
			}
			for i, a := range res.Advances {
				piece.Advances[buf.origin(req.Start+i)-rng.Start] += a
			}
			for _, g := range res.Glyphs {
				piece.Glyphs = append(piece.Glyphs, Glyph{
					Font:    ff,
					GID:     g.GID,
					X:       x + g.XOffset,
					Y:       g.YOffset,
					Cluster: buf.origin(g.Cluster) - rng.Start,
				})
				x += g.XAdvance
			}
			piece.Extent.ExtendBy(res.Extent)
		}
	}
	for _, a := range piece.Advances {
		piece.Advance += a
	}
	return piece
}

// Bounds computes the ink bounding box of a piece. Pieces do not remember
// their paint, so it has to be given again.
func (p *Piece) Bounds(paint *Paint) font.Rect {
	var ink font.Rect
	scale := paint.Scale()
	for _, g := range p.Glyphs {
		if !g.Font.IsValid() {
			continue
		}
		b := g.Font.Typeface().GlyphBounds(g.GID, paint.Size, g.Font.Fakery)
		if b.IsEmpty() {
			continue
		}
		b.Left *= scale
		b.Right *= scale
		if paint.SkewX != 0 { // x' = x + skew·y, y grows downwards
			t, u := paint.SkewX*b.Top, paint.SkewX*b.Bottom
			b.Left += minf(t, u)
			b.Right += maxf(t, u)
		}
		ink.Join(b, g.X, -g.Y)
	}
	return ink
}

func sourceOf(ff font.FakedFont) string {
	if !ff.IsValid() {
		return "<no font>"
	}
	return ff.Font.Source()
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// --- Hyphen edits ----------------------------------------------------------

// editBuffer is the context of a piece with hyphen edits applied. rng is
// the position of the (edited) piece within chars.
type editBuffer struct {
	chars    []rune
	rng      core.Range
	orig     core.Range // the unedited range
	edited   bool
	pre      int  // # of characters inserted at the start
	replaced bool // the last character has been replaced by a hyphen
}

func newEditBuffer(text []rune, rng core.Range, edit hyphenation.Edit) *editBuffer {
	buf := &editBuffer{orig: rng}
	if edit == 0 {
		buf.chars, buf.rng = text, rng
		return buf
	}
	edited := hyphenation.ApplyEdit(text, rng.Start, rng.End, edit)
	buf.chars = make([]rune, 0, len(text)-rng.Len()+len(edited))
	buf.chars = append(buf.chars, text[:rng.Start]...)
	buf.chars = append(buf.chars, edited...)
	buf.chars = append(buf.chars, text[rng.End:]...)
	buf.rng = core.Range{Start: rng.Start, End: rng.Start + len(edited)}
	buf.edited = true
	buf.pre = len(hyphenation.StartString(edit.Start()))
	buf.replaced = edit.End() == hyphenation.ReplaceWithHyphen
	return buf
}

// origin maps an index of the edited buffer to the index of the original
// character within the piece's range. Inserted characters belong to the
// neighbouring character of the range.
func (buf *editBuffer) origin(i int) int {
	if !buf.edited {
		return i
	}
	j := i - buf.pre
	if j < buf.orig.Start {
		j = buf.orig.Start
	}
	if j >= buf.orig.End {
		j = buf.orig.End - 1
	}
	return j
}

// fixHyphens replaces inserted hyphens U+2010 by hyphen-minus within rng,
// if the font has no glyph for U+2010.
func (buf *editBuffer) fixHyphens(rng core.Range, ff font.FakedFont) {
	if !buf.edited || !ff.IsValid() {
		return
	}
	var hasHyphen, checked bool
	for i := rng.Start; i < rng.End; i++ {
		if buf.chars[i] != hyphenation.Hyphen || !buf.isInserted(i) {
			continue
		}
		if !checked {
			_, hasHyphen = ff.Typeface().NominalGlyph(hyphenation.Hyphen)
			checked = true
		}
		if !hasHyphen {
			buf.chars[i] = hyphenation.HyphenMinus
		}
	}
}

func (buf *editBuffer) isInserted(i int) bool {
	if i < buf.rng.Start || i >= buf.rng.End {
		return false
	}
	if i < buf.rng.Start+buf.pre {
		return true
	}
	post := buf.rng.Len() - buf.orig.Len() - buf.pre
	if buf.replaced {
		post++
	}
	return i >= buf.rng.End-post
}
