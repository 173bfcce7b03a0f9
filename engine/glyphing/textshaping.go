package glyphing

import (
	"errors"
	"fmt"

	ot "github.com/go-text/typesetting/font/opentype"
	"github.com/npillmayer/parashape/core/font"
	"golang.org/x/text/language"
)

// Direction is the direction to typeset text in.
type Direction int

// Direction to typeset text in.
const (
	LeftToRight Direction = iota
	RightToLeft
	TopToBottom
	BottomToTop
)

func (d Direction) String() string {
	switch d {
	case LeftToRight:
		return "LTR"
	case RightToLeft:
		return "RTL"
	case TopToBottom:
		return "TTB"
	case BottomToTop:
		return "BTT"
	}
	return "[UNKNOWN]"
}

// ErrNoGlyphs is returned by shapers which could not produce any output
// for non-empty input.
var ErrNoGlyphs = errors.New("shaper produced no glyphs")

// ErrUnsupportedTypeface is returned by shapers which cannot work with the
// implementation of a typeface, e.g. because they need the font binary.
var ErrUnsupportedTypeface = errors.New("typeface not supported by shaper")

// A ShapedGlyph is a glyph with its position relative to the pen position.
// Metrics are in pixels.
type ShapedGlyph struct {
	GID      font.GlyphID
	Cluster  int     // index of the first code-point producing this glyph
	XAdvance float32 // advance after glyph has been set
	XOffset  float32 // offset of the anchor point
	YOffset  float32 // offset of the anchor point, upwards
}

func (g ShapedGlyph) String() string {
	return fmt.Sprintf("(GID=%d, cluster=%d, advance=%g)", g.GID, g.Cluster, g.XAdvance)
}

// A Shaper creates a sequence of glyphs from a sequence of
// Unicode code-points. Glyphs are taken from a font, given in a specific size.
//
// Shapers must be safe for concurrent use.
type Shaper interface {
	Shape(req Request) (Result, error)
}

// ShaperFunc adapts a function to a Shaper.
type ShaperFunc func(req Request) (Result, error)

// Shape calls f.
func (f ShaperFunc) Shape(req Request) (Result, error) {
	return f(req)
}

// Request is a run of text to shape. Text is the context of the run, which
// is Text[Start:End]; context may influence shaping (e.g., Arabic joining).
type Request struct {
	Text          []rune
	Start, End    int
	Font          font.FakedFont
	Size          float32         // pixels per em
	ScaleX        float32         // horizontal scale, 0 is taken as 1
	LetterSpacing float32         // in em
	WordSpacing   float32         // in pixels, added to each space character
	Direction     Direction       // writing direction
	Script        language.Script // 4-letter ISO 15924 script identifier
	Language      language.Tag    // BCP 47 language tag
	Features      []FeatureRange  // OpenType features to apply
	NeedsBounds   bool            // compute the ink bounding box
}

// Len returns the number of code-points to shape.
func (req Request) Len() int {
	return req.End - req.Start
}

// Scale returns the horizontal scale factor.
func (req Request) Scale() float32 {
	if req.ScaleX == 0 {
		return 1
	}
	return req.ScaleX
}

// FeatureRange tells a shaper to turn a certain OpenType feature on or off for a
// run of code-points. A range with End = 0 covers the complete input.
type FeatureRange struct {
	Feature    ot.Tag // 4-letter feature tag
	Arg        int    // optional argument for this feature
	On         bool   // turn it on or off?
	Start, End int    // position of code-points to apply feature for
}

// Feature creates a feature switch for the complete input.
// It panics if tag is not a 4-letter string.
func Feature(tag string, on bool) FeatureRange {
	return FeatureRange{Feature: ot.MustNewTag(tag), On: on}
}

// Value returns the numeric value of a feature switch.
func (frng FeatureRange) Value() uint32 {
	if !frng.On {
		return 0
	}
	if frng.Arg > 0 {
		return uint32(frng.Arg)
	}
	return 1
}

// Covers is true if the feature applies to all of [start…end).
func (frng FeatureRange) Covers(start, end int) bool {
	if frng.End == 0 {
		return true
	}
	return frng.Start <= start && end <= frng.End
}

// Result is the output of a shaper.
type Result struct {
	Glyphs   []ShapedGlyph // in visual order
	Advances []float32     // per code-point of the request's range
	Advance  float32       // sum of Advances
	Extent   font.Extent   // vertical extent of the font
	Bounds   font.Rect     // ink bounds, or an invalid rect if not requested
}

// BoundsFunc reports the ink bounding box of a glyph, in pixels, relative to
// its origin on the baseline.
type BoundsFunc func(gid font.GlyphID) font.Rect

// Finish completes the result of a shaper. Glyph advances are credited to
// the first code-point of their cluster. Letter and word spacing are
// applied, and extent and (if requested) bounds are computed. If bounds is
// nil, bounds are taken from the request's typeface.
//
// Finish returns ErrNoGlyphs for non-empty input without glyphs.
func Finish(req Request, glyphs []ShapedGlyph, bounds BoundsFunc) (Result, error) {
	res := Result{Bounds: font.InvalidRect()}
	if req.Len() <= 0 {
		return res, nil
	}
	if len(glyphs) == 0 {
		return res, ErrNoGlyphs
	}
	if !req.Font.IsValid() {
		return res, ErrUnsupportedTypeface
	}
	tf := req.Font.Typeface()
	res.Extent = tf.Extent(req.Size, req.Font.Fakery)
	res.Advances = make([]float32, req.Len())
	scale := req.Scale()
	letterSpace := req.LetterSpacing * req.Size * scale
	seen := -1
	for i := range glyphs {
		g := &glyphs[i]
		if g.Cluster < req.Start || g.Cluster >= req.End {
			tracer().Errorf("shaper reported glyph for cluster %d outside of [%d…%d)",
				g.Cluster, req.Start, req.End)
			g.XAdvance = 0
			continue
		}
		g.XAdvance *= scale
		g.XOffset *= scale
		if letterSpace != 0 && g.XAdvance != 0 && g.Cluster != seen {
			g.XAdvance += letterSpace
		}
		seen = g.Cluster
		res.Advances[g.Cluster-req.Start] += g.XAdvance
	}
	if req.WordSpacing != 0 {
		for i := req.Start; i < req.End; i++ {
			if isWordSpace(req.Text[i]) {
				res.Advances[i-req.Start] += req.WordSpacing
			}
		}
	}
	for _, a := range res.Advances {
		res.Advance += a
	}
	res.Glyphs = glyphs
	if req.NeedsBounds {
		res.Bounds = inkBounds(req, glyphs, bounds)
	}
	return res, nil
}

func inkBounds(req Request, glyphs []ShapedGlyph, bounds BoundsFunc) font.Rect {
	if bounds == nil {
		tf := req.Font.Typeface()
		bounds = func(gid font.GlyphID) font.Rect {
			return tf.GlyphBounds(gid, req.Size, req.Font.Fakery)
		}
	}
	scale := req.Scale()
	var ink font.Rect
	x := float32(0)
	for _, g := range glyphs {
		b := bounds(g.GID)
		b.Left *= scale
		b.Right *= scale
		if !b.IsEmpty() {
			ink.Join(b, x+g.XOffset, -g.YOffset)
		}
		x += g.XAdvance
	}
	return ink
}

func isWordSpace(r rune) bool {
	return r == ' ' || r == 0x00A0
}
