package shaping

import (
	"fmt"
	"strings"

	"github.com/npillmayer/parashape/core/font"
	"github.com/npillmayer/parashape/core/font/fallback"
	"github.com/npillmayer/parashape/engine/glyphing"
	"golang.org/x/text/language"
)

// Paint holds everything which influences the shape of text, except the
// text itself and its direction.
type Paint struct {
	Collection    *fallback.Collection
	Style         font.Style
	Size          float32 // pixels per em
	ScaleX        float32 // horizontal scale, 0 is taken as 1
	SkewX         float32 // horizontal shear of glyphs, e.g. -0.25 for an oblique look
	LetterSpacing float32 // in em
	WordSpacing   float32 // in pixels, added to every word space
	LocaleListID  uint32
	Variant       font.Variant
	Features      []glyphing.FeatureRange
	SkipCache     bool // never memoize shaping results of this paint
}

// NewPaint creates a paint for a collection with default style and a font
// size.
func NewPaint(collection *fallback.Collection, size float32) *Paint {
	return &Paint{
		Collection: collection,
		Style:      font.DefaultStyle(),
		Size:       size,
		ScaleX:     1,
	}
}

// Scale returns the horizontal scale factor.
func (p *Paint) Scale() float32 {
	if p.ScaleX == 0 {
		return 1
	}
	return p.ScaleX
}

// Equal is true if p and o produce identical shapes for identical text.
func (p *Paint) Equal(o *Paint) bool {
	if p == o {
		return true
	}
	if p == nil || o == nil {
		return false
	}
	return p.collectionID() == o.collectionID() && p.Style == o.Style &&
		p.Size == o.Size && p.Scale() == o.Scale() && p.SkewX == o.SkewX &&
		p.LetterSpacing == o.LetterSpacing && p.WordSpacing == o.WordSpacing &&
		p.LocaleListID == o.LocaleListID && p.Variant == o.Variant &&
		p.SkipCache == o.SkipCache && p.featureKey() == o.featureKey()
}

func (p *Paint) collectionID() uint32 {
	if p.Collection == nil {
		return 0
	}
	return p.Collection.ID()
}

// Language returns the first language of the paint's locale list, or
// language.Und.
func (p *Paint) Language() language.Tag {
	ll := font.LocaleListByID(p.LocaleListID)
	if len(ll.Locales) == 0 {
		return language.Und
	}
	return ll.Locales[0].Tag
}

// featureKey is a canonical string form of the feature settings.
func (p *Paint) featureKey() string {
	if len(p.Features) == 0 {
		return ""
	}
	var b strings.Builder
	for _, f := range p.Features {
		fmt.Fprintf(&b, "%s=%d[%d:%d];", f.Feature, f.Value(), f.Start, f.End)
	}
	return b.String()
}

func (p *Paint) String() string {
	return fmt.Sprintf("paint{collection=%d, %v, size=%g, locales=%d}",
		p.collectionID(), p.Style, p.Size, p.LocaleListID)
}
