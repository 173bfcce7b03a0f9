package font

import (
	"fmt"

	ot "github.com/go-text/typesetting/font/opentype"
)

// Weight is a CSS-like font weight, 100…1000.
type Weight uint16

// Common weights.
const (
	WeightThin       Weight = 100
	WeightExtraLight Weight = 200
	WeightLight      Weight = 300
	WeightNormal     Weight = 400
	WeightMedium     Weight = 500
	WeightSemiBold   Weight = 600
	WeightBold       Weight = 700
	WeightExtraBold  Weight = 800
	WeightBlack      Weight = 900
)

// Slant is either upright or italic. Oblique fonts count as italic.
type Slant uint8

// Slants.
const (
	SlantUpright Slant = iota
	SlantItalic
)

// Style is the nominal style of a font, or the style a client asks for.
type Style struct {
	Weight Weight
	Slant  Slant
}

// DefaultStyle is regular weight, upright.
func DefaultStyle() Style {
	return Style{Weight: WeightNormal, Slant: SlantUpright}
}

// Pack packs a style into 16 bits. Used for serialization and cache keys only.
func (s Style) Pack() uint16 {
	return uint16(s.Weight)&0x3ff | uint16(s.Slant&1)<<10
}

// UnpackStyle is the inverse of Pack.
func UnpackStyle(bits uint16) Style {
	return Style{Weight: Weight(bits & 0x3ff), Slant: Slant(bits>>10) & 1}
}

func (s Style) String() string {
	if s.Slant == SlantItalic {
		return fmt.Sprintf("%d-italic", s.Weight)
	}
	return fmt.Sprintf("%d", s.Weight)
}

// MatchDistance is a metric between two styles, 0 being an exact match.
// Weights are compared in steps of 100, a differing slant adds 2.
func MatchDistance(a, b Style) int {
	if a == b {
		return 0
	}
	d := int(a.Weight/100) - int(b.Weight/100)
	if d < 0 {
		d = -d
	}
	if a.Slant != b.Slant {
		d += 2
	}
	return d
}

// ComputeFakery decides which synthetic style emulation is necessary to
// approximate style wanted with a font of style actual.
//
// If the desired weight is semi-bold or darker and 2 or more grades
// above the actual weight (for example, medium 500 → bold 700), fake bold is
// selected.
func ComputeFakery(wanted, actual Style) Fakery {
	f := NoFakery()
	f.FakeBold = wanted.Weight >= WeightSemiBold && int(wanted.Weight)-int(actual.Weight) >= 200
	f.FakeItalic = wanted.Slant == SlantItalic && actual.Slant == SlantUpright
	return f
}

// --- Fakery ----------------------------------------------------------------

// Fakery holds the transforms (fake bold, fake italic) or variation axis
// adjustments which are applied to a font to match a requested style.
// Adjustments of -1 are unset.
type Fakery struct {
	FakeBold     bool
	FakeItalic   bool
	WeightAdjust int16 // value for axis 'wght', or -1
	ItalAdjust   int8  // value for axis 'ital' (0 or 1), or -1
}

// NoFakery returns a fakery which neither fakes nor adjusts.
func NoFakery() Fakery {
	return Fakery{WeightAdjust: -1, ItalAdjust: -1}
}

// HasAdjustment is true if any variation axis has to be adjusted.
func (f Fakery) HasAdjustment() bool {
	return f.WeightAdjust != -1 || f.ItalAdjust != -1
}

const (
	fakeBoldBit   = 1
	fakeItalicBit = 1 << 1
	hasWghtBit    = 1 << 2
	hasItalBit    = 1 << 3
	italBit       = 1 << 4
	wghtShift     = 5
	wghtMask      = 0x3ff << wghtShift
)

// Pack packs a fakery into 16 bits. Used for serialization and cache keys only.
func (f Fakery) Pack() uint16 {
	var bits uint16
	if f.FakeBold {
		bits |= fakeBoldBit
	}
	if f.FakeItalic {
		bits |= fakeItalicBit
	}
	if f.WeightAdjust != -1 {
		bits |= hasWghtBit
		bits |= uint16(f.WeightAdjust) << wghtShift & wghtMask
	}
	if f.ItalAdjust != -1 {
		bits |= hasItalBit
		if f.ItalAdjust == 1 {
			bits |= italBit
		}
	}
	return bits
}

// UnpackFakery is the inverse of Pack.
func UnpackFakery(bits uint16) Fakery {
	f := NoFakery()
	f.FakeBold = bits&fakeBoldBit != 0
	f.FakeItalic = bits&fakeItalicBit != 0
	if bits&hasWghtBit != 0 {
		f.WeightAdjust = int16(bits & wghtMask >> wghtShift)
	}
	if bits&hasItalBit != 0 {
		f.ItalAdjust = 0
		if bits&italBit != 0 {
			f.ItalAdjust = 1
		}
	}
	return f
}

func (f Fakery) String() string {
	return fmt.Sprintf("fakery{bold=%v,italic=%v,wght=%d,ital=%d}",
		f.FakeBold, f.FakeItalic, f.WeightAdjust, f.ItalAdjust)
}

// --- Variations ------------------------------------------------------------

// AxisTag is an OpenType variation axis tag, e.g. 'wght'.
type AxisTag uint32

// Registered axes used for style adjustment.
var (
	TagWght = MakeTag("wght")
	TagItal = MakeTag("ital")
)

// MakeTag creates an axis tag from a 4-letter string. It panics for
// strings of other lengths.
func MakeTag(s string) AxisTag {
	return AxisTag(ot.MustNewTag(s))
}

func (t AxisTag) String() string {
	return ot.Tag(t).String()
}

// Variation is a value for a variation axis, in design units.
type Variation struct {
	Tag   AxisTag
	Value float32
}

// Variant is a font-family variant. Families of variant VariantDefault
// match any requested variant.
type Variant uint8

// Family variants.
const (
	VariantDefault Variant = iota
	VariantCompact
	VariantElegant
)

func (v Variant) String() string {
	switch v {
	case VariantDefault:
		return "default"
	case VariantCompact:
		return "compact"
	case VariantElegant:
		return "elegant"
	}
	return "[UNKNOWN]"
}

// VariationFamilyType tells how a family made of variable fonts serves
// requests for weight and slant.
type VariationFamilyType uint8

// Variation family types.
const (
	NoVariationFamily      VariationFamilyType = iota // regular matching plus fakery
	SingleFontWeightOnly                              // one font, 'wght' axis, italic is faked
	SingleFontWeightItalic                            // one font, 'wght' and 'ital' axes
	TwoFontWeight                                     // upright and italic font, each with a 'wght' axis
)
