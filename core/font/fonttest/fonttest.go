/*
Package fonttest provides synthetic typefaces for tests.

A synthetic typeface covers a configurable set of code-points, maps every
code-point to a glyph of the same id, and has fixed metrics. This makes
expected advances and extents easy to compute.
*/
package fonttest

import (
	"fmt"
	"sync/atomic"

	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/core/font"
	"github.com/npillmayer/parashape/core/font/coverage"
)

// Typeface is a synthetic font.Typeface. All metrics are fractions of the
// font size.
type Typeface struct {
	FontName  string
	Src       string
	FontStyle font.Style
	HasStyle  bool
	Cover     *coverage.CodePointSet
	VS        []*coverage.CodePointSet
	AxisTags  []font.AxisTag
	Vars      []font.Variation
	Advance   float32            // advance of every glyph, default 0.5
	Advances  map[rune]float32   // per-rune advance overrides
	Overhangs map[rune]font.Rect // per-rune bounds overrides
	Ascent    float32            // positive, default 0.8
	Descent   float32            // positive, default 0.2
}

var _ font.Typeface = (*Typeface)(nil)

// New creates a synthetic upright regular typeface covering ranges.
func New(name string, ranges ...coverage.Range) *Typeface {
	return &Typeface{
		FontName:  name,
		Src:       "test:" + name,
		FontStyle: font.DefaultStyle(),
		HasStyle:  true,
		Cover:     coverage.New(ranges),
		Advance:   0.5,
		Ascent:    0.8,
		Descent:   0.2,
	}
}

// WithStyle sets the nominal style and returns t.
func (t *Typeface) WithStyle(weight font.Weight, slant font.Slant) *Typeface {
	t.FontStyle = font.Style{Weight: weight, Slant: slant}
	return t
}

// WithVS adds coverage for variation sequences with selector vs and returns t.
func (t *Typeface) WithVS(vs rune, ranges ...coverage.Range) *Typeface {
	index := font.VSIndex(vs)
	for len(t.VS) <= index {
		t.VS = append(t.VS, nil)
	}
	t.VS[index] = coverage.New(ranges)
	return t
}

// WithAxes declares variation axes and returns t.
func (t *Typeface) WithAxes(tags ...string) *Typeface {
	for _, tag := range tags {
		t.AxisTags = append(t.AxisTags, font.MakeTag(tag))
	}
	return t
}

func (t *Typeface) Name() string                         { return t.FontName }
func (t *Typeface) Source() string                       { return t.Src }
func (t *Typeface) Style() (font.Style, bool)            { return t.FontStyle, t.HasStyle }
func (t *Typeface) Coverage() *coverage.CodePointSet     { return t.Cover }
func (t *Typeface) VSCoverage() []*coverage.CodePointSet { return t.VS }
func (t *Typeface) Axes() []font.AxisTag                 { return t.AxisTags }
func (t *Typeface) Variations() []font.Variation         { return t.Vars }

// NominalGlyph maps covered runes to glyph ids equal to the code-point.
func (t *Typeface) NominalGlyph(r rune) (font.GlyphID, bool) {
	if !t.Cover.ContainsRune(r) {
		return 0, false
	}
	return font.GlyphID(r), true
}

// HorizontalAdvance returns the configured advance times size.
func (t *Typeface) HorizontalAdvance(gid font.GlyphID, size float32, fakery font.Fakery) float32 {
	if adv, ok := t.Advances[rune(gid)]; ok {
		return adv * size
	}
	return t.Advance * size
}

// GlyphBounds returns the advance box between ascent and baseline, unless
// overridden.
func (t *Typeface) GlyphBounds(gid font.GlyphID, size float32, fakery font.Fakery) font.Rect {
	if r, ok := t.Overhangs[rune(gid)]; ok {
		return font.Rect{Left: r.Left * size, Top: r.Top * size, Right: r.Right * size, Bottom: r.Bottom * size}
	}
	adv := t.HorizontalAdvance(gid, size, fakery)
	return font.Rect{Left: 0, Top: -t.Ascent * size, Right: adv, Bottom: 0}
}

// Extent returns the configured ascent and descent times size.
func (t *Typeface) Extent(size float32, fakery font.Fakery) font.Extent {
	return font.Extent{Ascent: -t.Ascent * size, Descent: t.Descent * size}
}

// WithVariations copies t with variations applied.
func (t *Typeface) WithVariations(vars []font.Variation) (font.Typeface, error) {
	if len(t.AxisTags) == 0 {
		return nil, core.Error(core.EINVALID, "typeface %s has no axes", t.FontName)
	}
	derived := *t
	derived.Vars = append(append([]font.Variation(nil), t.Vars...), vars...)
	return &derived, nil
}

func (t *Typeface) String() string {
	return fmt.Sprintf("fonttest.Typeface(%s,%v)", t.FontName, t.FontStyle)
}

// Factory loads synthetic typefaces by source, for lazily loaded fonts.
type Factory struct {
	Typefaces map[string]*Typeface
	loads     atomic.Int32
}

// Loads returns the number of calls to LoadTypeface.
func (f *Factory) Loads() int {
	return int(f.loads.Load())
}

// NewFactory creates a factory serving typefaces by their sources.
func NewFactory(tfs ...*Typeface) *Factory {
	f := &Factory{Typefaces: make(map[string]*Typeface)}
	for _, tf := range tfs {
		f.Typefaces[tf.Src] = tf
	}
	return f
}

// LoadTypeface implements font.TypefaceFactory.
func (f *Factory) LoadTypeface(source string, vars []font.Variation) (font.Typeface, error) {
	f.loads.Add(1)
	tf, ok := f.Typefaces[source]
	if !ok {
		return nil, core.Error(core.EMISSING, "no test typeface %s", source)
	}
	if len(vars) > 0 {
		return tf.WithVariations(vars)
	}
	return tf, nil
}
