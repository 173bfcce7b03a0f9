package font

import (
	"github.com/npillmayer/parashape/core/font/coverage"
)

// GlyphID identifies a glyph within a typeface.
type GlyphID = uint32

// Typeface is a handle to a loaded font file, supplied by a font library.
// Metrics are reported in pixels for a given font size (pixels per em).
//
// Implementations must be safe for concurrent use.
type Typeface interface {
	Name() string
	// Source identifies the font data such that a TypefaceFactory may load it again.
	Source() string
	// Style returns the nominal style recorded in the font file, if any.
	Style() (Style, bool)
	Coverage() *coverage.CodePointSet
	// VSCoverage returns coverage tables for variation sequences, indexed by
	// VSIndex. Entries may be nil.
	VSCoverage() []*coverage.CodePointSet
	// Axes returns the supported variation axes, sorted.
	Axes() []AxisTag
	// Variations returns the axis values applied to this typeface.
	Variations() []Variation
	NominalGlyph(r rune) (GlyphID, bool)
	HorizontalAdvance(gid GlyphID, size float32, fakery Fakery) float32
	GlyphBounds(gid GlyphID, size float32, fakery Fakery) Rect
	Extent(size float32, fakery Fakery) Extent
	// WithVariations derives a typeface with variation axes set.
	WithVariations(vars []Variation) (Typeface, error)
}

// TypefaceFactory loads typefaces for sources previously reported by
// Typeface.Source, e.g. after reading fonts from a flat buffer.
type TypefaceFactory interface {
	LoadTypeface(source string, vars []Variation) (Typeface, error)
}

// TypefaceFactoryFunc adapts a function to a TypefaceFactory.
type TypefaceFactoryFunc func(source string, vars []Variation) (Typeface, error)

// LoadTypeface calls f.
func (f TypefaceFactoryFunc) LoadTypeface(source string, vars []Variation) (Typeface, error) {
	return f(source, vars)
}

// --- Variation selectors ---------------------------------------------------

// InvalidVSIndex is returned by VSIndex for code-points which are not
// variation selectors.
const InvalidVSIndex = 0xFFFF

// VSIndex maps variation selectors U+FE00…U+FE0F to 0…15 and
// U+E0100…U+E01EF to 16…255.
func VSIndex(vs rune) int {
	switch {
	case vs >= 0xFE00 && vs <= 0xFE0F:
		return int(vs - 0xFE00)
	case vs >= 0xE0100 && vs <= 0xE01EF:
		return int(vs-0xE0100) + 16
	}
	return InvalidVSIndex
}

// IsVariationSelector is true for both blocks of variation selectors.
func IsVariationSelector(r rune) bool {
	return VSIndex(r) != InvalidVSIndex
}

// Text and emoji presentation selectors.
const (
	TextStyleVS  rune = 0xFE0E
	EmojiStyleVS rune = 0xFE0F
)
