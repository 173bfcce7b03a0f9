package glyphing

import "unicode"

type nominal struct{}

// NominalShaper returns a shaper which maps every code-point to its nominal
// glyph, using the typeface's advances. It knows nothing about ligatures or
// kerning and works with every implementation of font.Typeface. Non-spacing
// marks and format characters have zero advance.
func NominalShaper() Shaper {
	return nominal{}
}

func (nominal) Shape(req Request) (Result, error) {
	if req.Len() <= 0 {
		return Finish(req, nil, nil)
	}
	if !req.Font.IsValid() {
		return Result{}, ErrUnsupportedTypeface
	}
	tf := req.Font.Typeface()
	glyphs := make([]ShapedGlyph, 0, req.Len())
	for i := req.Start; i < req.End; i++ {
		r := req.Text[i]
		gid, _ := tf.NominalGlyph(r)
		g := ShapedGlyph{GID: gid, Cluster: i}
		if !unicode.In(r, unicode.Mn, unicode.Me, unicode.Cf) {
			g.XAdvance = tf.HorizontalAdvance(gid, req.Size, req.Font.Fakery)
		}
		glyphs = append(glyphs, g)
	}
	if req.Direction == RightToLeft {
		for i, j := 0, len(glyphs)-1; i < j; i, j = i+1, j-1 {
			glyphs[i], glyphs[j] = glyphs[j], glyphs[i]
		}
	}
	return Finish(req, glyphs, nil)
}
