package font

import (
	"sort"

	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/core/flatbuf"
	"github.com/npillmayer/parashape/core/font/coverage"
)

// FamilyConfig holds the attributes of a family which are not derived from
// its fonts.
type FamilyConfig struct {
	LocaleListID   uint32
	Variant        Variant
	CustomFallback bool // family was added on top of the system fallback
	VariationType  VariationFamilyType
}

// Family is an ordered, non-empty list of fonts which share coverage, a
// locale list and a variant. Families are immutable.
type Family struct {
	fonts      []*Font
	config     FamilyConfig
	colorEmoji bool
	coverage   *coverage.CodePointSet
	vsCoverage []*coverage.CodePointSet
	axes       []AxisTag
}

// NewFamily creates a family from fonts. Coverage is taken from the font
// closest to the default style. An empty font list is a configuration error.
func NewFamily(fonts []*Font, config FamilyConfig) (*Family, error) {
	if len(fonts) == 0 {
		return nil, core.Error(core.EMISSING, "font family needs at least one font")
	}
	fam := &Family{
		fonts:  append([]*Font(nil), fonts...),
		config: config,
	}
	fam.colorEmoji = LocaleListByID(config.LocaleListID).EmojiStyle() == EmojiStyleEmoji
	base := fam.closestByDistance(DefaultStyle()).Typeface()
	fam.coverage = base.Coverage()
	if fam.coverage == nil {
		fam.coverage = coverage.New(nil)
	}
	fam.vsCoverage = base.VSCoverage()
	fam.axes = unionOfAxes(fam.fonts)
	tracer().Debugf("new font family %q with %d fonts, %d code-points", base.Name(),
		len(fonts), countCodePoints(fam.coverage))
	return fam, nil
}

func unionOfAxes(fonts []*Font) []AxisTag {
	seen := make(map[AxisTag]bool)
	var axes []AxisTag
	for _, f := range fonts {
		for _, a := range f.Axes() {
			if !seen[a] {
				seen[a] = true
				axes = append(axes, a)
			}
		}
	}
	sort.Slice(axes, func(i, j int) bool { return axes[i] < axes[j] })
	return axes
}

func countCodePoints(set *coverage.CodePointSet) int {
	n := 0
	for _, r := range set.Ranges() {
		n += int(r.End - r.Start)
	}
	return n
}

// NumFonts returns the number of fonts of the family.
func (fam *Family) NumFonts() int { return len(fam.fonts) }

// Font returns the i-th font.
func (fam *Family) Font(i int) *Font { return fam.fonts[i] }

// Fonts returns the fonts of the family. The slice must not be modified.
func (fam *Family) Fonts() []*Font { return fam.fonts }

// LocaleListID returns the id of the family's locale list.
func (fam *Family) LocaleListID() uint32 { return fam.config.LocaleListID }

// Variant returns the family variant.
func (fam *Family) Variant() Variant { return fam.config.Variant }

// IsCustomFallback is true for families added on top of the system fallback.
func (fam *Family) IsCustomFallback() bool { return fam.config.CustomFallback }

// IsColorEmoji is true if the family's locale list asks for emoji presentation.
func (fam *Family) IsColorEmoji() bool { return fam.colorEmoji }

// VariationType returns how variable fonts of this family serve styles.
func (fam *Family) VariationType() VariationFamilyType { return fam.config.VariationType }

// Coverage returns the code-points supported by the family.
func (fam *Family) Coverage() *coverage.CodePointSet { return fam.coverage }

// SupportedAxes returns the union of all fonts' axes, sorted.
func (fam *Family) SupportedAxes() []AxisTag { return fam.axes }

// HasVSTable is true if the family supports any variation sequence.
func (fam *Family) HasVSTable() bool {
	for _, set := range fam.vsCoverage {
		if set != nil {
			return true
		}
	}
	return false
}

// HasGlyph is true if the family supports ch, or the variation sequence
// ch+vs if vs is not 0.
func (fam *Family) HasGlyph(ch rune, vs rune) bool {
	if vs == 0 {
		return fam.coverage.ContainsRune(ch)
	}
	index := VSIndex(vs)
	if index == InvalidVSIndex || index >= len(fam.vsCoverage) || fam.vsCoverage[index] == nil {
		return false
	}
	return fam.vsCoverage[index].ContainsRune(ch)
}

// ClosestMatch selects the font of the family which fits style best and
// computes the fakery to emulate style. Families of variable fonts adjust
// variation axes instead of faking.
func (fam *Family) ClosestMatch(style Style) FakedFont {
	italic := style.Slant == SlantItalic
	switch fam.config.VariationType {
	case SingleFontWeightOnly:
		fakery := NoFakery()
		fakery.FakeItalic = italic
		fakery.WeightAdjust = int16(style.Weight)
		return FakedFont{Font: fam.fonts[0], Fakery: fakery}
	case SingleFontWeightItalic:
		fakery := NoFakery()
		fakery.WeightAdjust = int16(style.Weight)
		fakery.ItalAdjust = 0
		if italic {
			fakery.ItalAdjust = 1
		}
		return FakedFont{Font: fam.fonts[0], Fakery: fakery}
	case TwoFontWeight:
		fakery := NoFakery()
		fakery.WeightAdjust = int16(style.Weight)
		font := fam.fonts[0]
		if italic && len(fam.fonts) > 1 {
			font = fam.fonts[1]
		}
		return FakedFont{Font: font, Fakery: fakery}
	}
	best := fam.closestByDistance(style)
	return FakedFont{Font: best, Fakery: ComputeFakery(style, best.Style())}
}

// closestByDistance returns the first font with minimum match distance.
func (fam *Family) closestByDistance(style Style) *Font {
	best := fam.fonts[0]
	bestDistance := MatchDistance(style, best.Style())
	for _, f := range fam.fonts[1:] {
		if d := MatchDistance(style, f.Style()); d < bestDistance {
			best, bestDistance = f, d
		}
	}
	return best
}

// WithVariations creates a family of fonts with variation axes set. It
// returns false if none of the variations applies to this family.
func (fam *Family) WithVariations(vars []Variation) (*Family, bool) {
	if len(vars) == 0 || len(fam.axes) == 0 {
		return nil, false
	}
	supported := false
	for _, v := range vars {
		if fam.supportsAxis(v.Tag) {
			supported = true
			break
		}
	}
	if !supported {
		return nil, false
	}
	fonts := make([]*Font, len(fam.fonts))
	for i, f := range fam.fonts {
		fonts[i] = f
		if !fontSupportsAny(f, vars) {
			continue
		}
		tf, err := f.Typeface().WithVariations(vars)
		if err != nil {
			tracer().Errorf("cannot apply variations to %s: %v", f.Source(), err)
			continue
		}
		fonts[i] = NewFont(tf, WithStyle(f.Style()), WithLocaleList(f.LocaleListID()))
	}
	derived := &Family{
		fonts:      fonts,
		config:     fam.config,
		colorEmoji: fam.colorEmoji,
		coverage:   fam.coverage,
		vsCoverage: fam.vsCoverage,
		axes:       fam.axes,
	}
	derived.config.VariationType = NoVariationFamily
	return derived, true
}

func (fam *Family) supportsAxis(tag AxisTag) bool {
	i := sort.Search(len(fam.axes), func(i int) bool { return fam.axes[i] >= tag })
	return i < len(fam.axes) && fam.axes[i] == tag
}

func fontSupportsAny(f *Font, vars []Variation) bool {
	for _, v := range vars {
		if f.SupportsAxis(v.Tag) {
			return true
		}
	}
	return false
}

// --- Serialization ---------------------------------------------------------

// WriteTo serializes the family. Fonts are written as indexes, which are
// provided by fontIndex.
func (fam *Family) WriteTo(w *flatbuf.Writer, fontIndex func(*Font) uint32) {
	indexes := make([]uint32, len(fam.fonts))
	for i, f := range fam.fonts {
		indexes[i] = fontIndex(f)
	}
	w.U32Array(indexes)
	w.String(LocaleListByID(fam.config.LocaleListID).String())
	w.U8(uint8(fam.config.Variant))
	w.Bool(fam.config.CustomFallback)
	w.U8(uint8(fam.config.VariationType))
	fam.coverage.WriteTo(w)
	// sparse table of variation sequence coverage
	w.U32(uint32(len(fam.vsCoverage)))
	entries := 0
	for _, set := range fam.vsCoverage {
		if set != nil {
			entries++
		}
	}
	w.U32(uint32(entries))
	for i, set := range fam.vsCoverage {
		if set != nil {
			w.U32(uint32(i))
			set.WriteTo(w)
		}
	}
	axes := make([]uint32, len(fam.axes))
	for i, a := range fam.axes {
		axes[i] = uint32(a)
	}
	w.U32Array(axes)
}

// ReadFamily deserializes a family written by WriteTo. fontAt resolves font
// indexes. Typefaces are not touched.
func ReadFamily(r *flatbuf.Reader, fontAt func(uint32) (*Font, error)) (*Family, error) {
	indexes := r.U32Array()
	locales := r.String()
	fam := &Family{}
	fam.config.Variant = Variant(r.U8())
	fam.config.CustomFallback = r.Bool()
	fam.config.VariationType = VariationFamilyType(r.U8())
	if r.Err() != nil {
		return nil, core.WrapError(r.Err(), core.EINVALID, "cannot read font family")
	}
	if len(indexes) == 0 {
		return nil, core.Error(core.EMISSING, "font family without fonts")
	}
	for _, inx := range indexes {
		f, err := fontAt(inx)
		if err != nil {
			return nil, err
		}
		fam.fonts = append(fam.fonts, f)
	}
	fam.config.LocaleListID = RegisterLocaleList(locales)
	fam.colorEmoji = LocaleListByID(fam.config.LocaleListID).EmojiStyle() == EmojiStyleEmoji
	var err error
	if fam.coverage, err = coverage.ReadFrom(r); err != nil {
		return nil, err
	}
	size, entries := int(r.U32()), int(r.U32())
	if r.Err() != nil || size > 256 || entries > size {
		return nil, core.Error(core.EINVALID, "corrupt variation sequence table")
	}
	if size > 0 {
		fam.vsCoverage = make([]*coverage.CodePointSet, size)
	}
	for i := 0; i < entries; i++ {
		inx := int(r.U32())
		if r.Err() != nil || inx >= size {
			return nil, core.Error(core.EINVALID, "corrupt variation sequence table")
		}
		if fam.vsCoverage[inx], err = coverage.ReadFrom(r); err != nil {
			return nil, err
		}
	}
	for _, a := range r.U32Array() {
		fam.axes = append(fam.axes, AxisTag(a))
	}
	if r.Err() != nil {
		return nil, core.WrapError(r.Err(), core.EINVALID, "cannot read font family")
	}
	return fam, nil
}
