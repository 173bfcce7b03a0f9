package font

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"sync"

	gtfont "github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"
	"github.com/go-text/typesetting/font/opentype/tables"
	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/core/font/coverage"
	"golang.org/x/image/font/gofont/goregular"
)

// fakeBoldStrokeRatio is the outline enlargement for synthetic bold, as
// a fraction of the font size.
const fakeBoldStrokeRatio = 1.0 / 24.0

// fakeItalicSkew is the horizontal skew for synthetic italic.
const fakeItalicSkew = -0.25

// OpenTypeface is a Typeface for OpenType and TrueType fonts, backed by
// go-text/typesetting.
//
// go-text faces are not safe for concurrent use, so every call borrows a
// face from a pool.
type OpenTypeface struct {
	name     string
	source   string
	data     []byte
	font     *gtfont.Font
	style    Style
	hasStyle bool
	upem     float32
	cover    *coverage.CodePointSet
	vsCover  []*coverage.CodePointSet
	axes     []AxisTag
	vars     []Variation
	faces    *sync.Pool
}

var _ Typeface = (*OpenTypeface)(nil)

// LoadTypeface reads and parses a font file.
func LoadTypeface(path string) (*OpenTypeface, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot read font file %s", path)
	}
	return ParseTypeface(path, data)
}

// ParseTypeface parses font data. source is recorded to identify the data
// for later re-loading, e.g. a file path.
func ParseTypeface(source string, data []byte) (*OpenTypeface, error) {
	ld, err := ot.NewLoader(bytes.NewReader(data))
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot parse font %s", source)
	}
	f, err := gtfont.NewFont(ld)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot load font tables of %s", source)
	}
	t := &OpenTypeface{
		source: source,
		data:   data,
		font:   f,
		upem:   float32(f.Upem()),
		style:  DefaultStyle(),
	}
	desc, _ := gtfont.Describe(ld, nil)
	t.name = desc.Family
	if t.name == "" {
		t.name = filepath.Base(source)
	}
	if desc.Aspect.Weight != 0 {
		t.hasStyle = true
		t.style.Weight = Weight(desc.Aspect.Weight)
	}
	if desc.Aspect.Style != 0 {
		t.hasStyle = true
		if desc.Aspect.Style == gtfont.StyleItalic {
			t.style.Slant = SlantItalic
		}
	}
	t.cover = cmapCoverage(f.Cmap)
	t.vsCover = vsCoverage(ld)
	t.axes = fvarAxes(ld)
	t.faces = t.newFacePool()
	tracer().Debugf("parsed typeface %q from %s: style=%v, axes=%v", t.name, source, t.style, t.axes)
	return t, nil
}

// --- Fallback typeface -----------------------------------------------------

// FallbackTypeface returns a typeface to be used if everything else fails.
// It is always present. Currently we use Go Sans.
func FallbackTypeface() *OpenTypeface {
	fallbackLoading.Do(func() {
		var err error
		fallbackTypeface, err = ParseTypeface("gofont:goregular", goregular.TTF)
		if err != nil {
			panic("cannot load default font") // this cannot happen
		}
	})
	return fallbackTypeface
}

var fallbackLoading sync.Once

var fallbackTypeface *OpenTypeface

// --- Coverage extraction ---------------------------------------------------

func cmapCoverage(cmap gtfont.Cmap) *coverage.CodePointSet {
	var intervals [][2]rune
	if ranger, ok := cmap.(gtfont.CmapRuneRanger); ok {
		intervals = ranger.RuneRanges(nil)
	} else {
		it := cmap.Iter()
		for it.Next() {
			r, _ := it.Char()
			intervals = append(intervals, [2]rune{r, r})
		}
	}
	sort.Slice(intervals, func(i, j int) bool { return intervals[i][0] < intervals[j][0] })
	return coverage.FromRunes(intervals)
}

func uint24(b [3]byte) rune {
	return rune(b[0])<<16 | rune(b[1])<<8 | rune(b[2])
}

// vsCoverage reads the cmap format 14 subtable, if present, and creates a
// coverage set for each variation selector.
func vsCoverage(ld *ot.Loader) []*coverage.CodePointSet {
	raw, err := ld.RawTable(ot.MustNewTag("cmap"))
	if err != nil {
		return nil
	}
	cmap, _, err := tables.ParseCmap(raw)
	if err != nil {
		tracer().Infof("cannot parse cmap for variation sequences: %v", err)
		return nil
	}
	var selectors []tables.VariationSelector
	for _, rec := range cmap.Records {
		switch st := rec.Subtable.(type) {
		case tables.CmapSubtable14:
			selectors = st.VarSelectors
		case *tables.CmapSubtable14:
			selectors = st.VarSelectors
		}
	}
	var out []*coverage.CodePointSet
	for _, vs := range selectors {
		index := VSIndex(uint24(vs.VarSelector))
		if index == InvalidVSIndex {
			continue
		}
		var intervals [][2]rune
		for _, r := range vs.DefaultUVS.Ranges {
			start := uint24(r.StartUnicodeValue)
			intervals = append(intervals, [2]rune{start, start + rune(r.AdditionalCount)})
		}
		for _, m := range vs.NonDefaultUVS.Ranges {
			if m.GlyphID != 0 {
				u := uint24(m.UnicodeValue)
				intervals = append(intervals, [2]rune{u, u})
			}
		}
		sort.Slice(intervals, func(i, j int) bool { return intervals[i][0] < intervals[j][0] })
		for len(out) <= index {
			out = append(out, nil)
		}
		out[index] = coverage.FromRunes(intervals)
	}
	return out
}

func fvarAxes(ld *ot.Loader) []AxisTag {
	raw, err := ld.RawTable(ot.MustNewTag("fvar"))
	if err != nil {
		return nil
	}
	fvar, _, err := tables.ParseFvar(raw)
	if err != nil {
		tracer().Infof("cannot parse fvar table: %v", err)
		return nil
	}
	axes := make([]AxisTag, 0, len(fvar.Axis))
	for _, a := range fvar.Axis {
		axes = append(axes, AxisTag(a.Tag))
	}
	sort.Slice(axes, func(i, j int) bool { return axes[i] < axes[j] })
	return axes
}

// --- Faces -----------------------------------------------------------------

func (t *OpenTypeface) newFacePool() *sync.Pool {
	return &sync.Pool{
		New: func() interface{} {
			face := gtfont.NewFace(t.font)
			if len(t.vars) > 0 {
				face.SetVariations(goTextVariations(t.vars))
			}
			return face
		},
	}
}

func goTextVariations(vars []Variation) []gtfont.Variation {
	out := make([]gtfont.Variation, len(vars))
	for i, v := range vars {
		out[i] = gtfont.Variation{Tag: ot.Tag(v.Tag), Value: v.Value}
	}
	return out
}

// AcquireFace borrows a go-text face with this typeface's variations applied.
// The face must be given back with ReleaseFace and must not be shared
// between goroutines in the meantime.
func (t *OpenTypeface) AcquireFace() *gtfont.Face {
	return t.faces.Get().(*gtfont.Face)
}

// ReleaseFace returns a face obtained from AcquireFace.
func (t *OpenTypeface) ReleaseFace(face *gtfont.Face) {
	t.faces.Put(face)
}

// --- Typeface interface ----------------------------------------------------

// Name returns the family name of the font.
func (t *OpenTypeface) Name() string { return t.name }

// Source identifies the font data.
func (t *OpenTypeface) Source() string { return t.source }

// Binary returns the raw font data.
func (t *OpenTypeface) Binary() []byte { return t.data }

// Style returns the style recorded in the font's metadata.
func (t *OpenTypeface) Style() (Style, bool) { return t.style, t.hasStyle }

// Coverage returns the code-points mapped by the font's cmap.
func (t *OpenTypeface) Coverage() *coverage.CodePointSet { return t.cover }

// VSCoverage returns the coverage of variation sequences.
func (t *OpenTypeface) VSCoverage() []*coverage.CodePointSet { return t.vsCover }

// Axes returns the variation axes of a variable font.
func (t *OpenTypeface) Axes() []AxisTag { return t.axes }

// Variations returns the axis values applied.
func (t *OpenTypeface) Variations() []Variation { return t.vars }

// UnitsPerEm returns the font's design units per em.
func (t *OpenTypeface) UnitsPerEm() float32 { return t.upem }

// NominalGlyph returns the glyph for a rune from the cmap.
func (t *OpenTypeface) NominalGlyph(r rune) (GlyphID, bool) {
	gid, ok := t.font.NominalGlyph(r)
	return GlyphID(gid), ok
}

// HorizontalAdvance returns a glyph's advance in pixels. Fakery does not
// change advances.
func (t *OpenTypeface) HorizontalAdvance(gid GlyphID, size float32, fakery Fakery) float32 {
	face := t.AcquireFace()
	defer t.ReleaseFace(face)
	return face.HorizontalAdvance(gtfont.GID(gid)) * size / t.upem
}

// GlyphBounds returns the ink bounds of a glyph in pixels, relative to the
// glyph origin, y growing downwards.
func (t *OpenTypeface) GlyphBounds(gid GlyphID, size float32, fakery Fakery) Rect {
	face := t.AcquireFace()
	ext, ok := face.GlyphExtents(gtfont.GID(gid))
	t.ReleaseFace(face)
	if !ok {
		return Rect{}
	}
	s := size / t.upem
	r := Rect{
		Left:   ext.XBearing * s,
		Top:    -ext.YBearing * s,
		Right:  (ext.XBearing + ext.Width) * s,
		Bottom: -(ext.YBearing + ext.Height) * s,
	}
	return applyFakery(r, size, fakery)
}

func applyFakery(r Rect, size float32, fakery Fakery) Rect {
	if r.IsEmpty() {
		return r
	}
	if fakery.FakeBold {
		d := size * fakeBoldStrokeRatio / 2
		r = Rect{r.Left - d, r.Top - d, r.Right + d, r.Bottom + d}
	}
	if fakery.FakeItalic {
		dTop, dBottom := fakeItalicSkew*r.Top, fakeItalicSkew*r.Bottom
		r.Left += min32(dTop, dBottom)
		r.Right += max32(dTop, dBottom)
	}
	return r
}

// Extent returns the font-wide vertical extent in pixels.
func (t *OpenTypeface) Extent(size float32, fakery Fakery) Extent {
	face := t.AcquireFace()
	ext, ok := face.FontHExtents()
	t.ReleaseFace(face)
	if !ok {
		return Extent{Ascent: -size * 0.8, Descent: size * 0.2}
	}
	s := size / t.upem
	return Extent{Ascent: -ext.Ascender * s, Descent: -ext.Descender * s}
}

// WithVariations creates a derived typeface with axis values applied.
// Values for axes the font does not have are ignored by the font library.
func (t *OpenTypeface) WithVariations(vars []Variation) (Typeface, error) {
	if len(t.axes) == 0 {
		return nil, core.Error(core.EINVALID, "font %s is not a variable font", t.name)
	}
	merged := append([]Variation(nil), t.vars...)
	for _, v := range vars {
		replaced := false
		for i := range merged {
			if merged[i].Tag == v.Tag {
				merged[i].Value = v.Value
				replaced = true
			}
		}
		if !replaced {
			merged = append(merged, v)
		}
	}
	derived := *t
	derived.vars = merged
	derived.faces = derived.newFacePool()
	return &derived, nil
}
