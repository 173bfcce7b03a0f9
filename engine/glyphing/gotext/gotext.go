/*
Package gotext shapes text with the HarfBuzz port of go-text/typesetting.

This is the default shaper of the engine. It works with typefaces which
are able to hand out go-text font faces, i.e. *font.OpenTypeface.

	shaper := gotext.New()
	res, err := shaper.Shape(glyphing.Request{ … })

The script of a request is detected from its text, as go-text does it.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package gotext

import (
	"sync"

	"github.com/go-text/typesetting/di"
	gtfont "github.com/go-text/typesetting/font"
	gtlang "github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"github.com/npillmayer/parashape/core"
	"github.com/npillmayer/parashape/engine/glyphing"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"
)

// tracer traces with key 'parashape.shaping'.
func tracer() tracing.Trace {
	return tracing.Select("parashape.shaping")
}

// FaceSource is implemented by typefaces which hand out go-text faces.
// Faces are not safe for concurrent use and must be released after use.
type FaceSource interface {
	AcquireFace() *gtfont.Face
	ReleaseFace(*gtfont.Face)
}

// Shaper is a glyphing.Shaper backed by go-text's HarfBuzz port.
// It is safe for concurrent use.
type Shaper struct {
	shapers sync.Pool // of *shaping.HarfbuzzShaper, which hold internal buffers
}

var _ glyphing.Shaper = (*Shaper)(nil)

// New creates a shaper.
func New() *Shaper {
	return &Shaper{
		shapers: sync.Pool{
			New: func() any {
				return &shaping.HarfbuzzShaper{}
			},
		},
	}
}

// Shape shapes the range of a request.
func (s *Shaper) Shape(req glyphing.Request) (glyphing.Result, error) {
	if req.Len() <= 0 {
		return glyphing.Finish(req, nil, nil)
	}
	if !req.Font.IsValid() {
		return glyphing.Result{}, glyphing.ErrUnsupportedTypeface
	}
	tf := req.Font.Typeface()
	src, ok := tf.(FaceSource)
	if !ok {
		return glyphing.Result{}, core.WrapError(glyphing.ErrUnsupportedTypeface, core.EINTERNAL,
			"go-text shaper cannot use typeface %s", tf.Name())
	}
	face := src.AcquireFace()
	defer src.ReleaseFace(face)
	input := shaping.Input{
		Text:         req.Text,
		RunStart:     req.Start,
		RunEnd:       req.End,
		Direction:    direction(req.Direction),
		Face:         face,
		FontFeatures: features(req),
		Size:         floatToFixed(req.Size),
		Script:       detectScript(req.Text[req.Start:req.End]),
		Language:     lang(req.Language),
	}
	hb := s.shapers.Get().(*shaping.HarfbuzzShaper)
	out := hb.Shape(input)
	s.shapers.Put(hb)
	glyphs := make([]glyphing.ShapedGlyph, len(out.Glyphs))
	for i, g := range out.Glyphs {
		glyphs[i] = glyphing.ShapedGlyph{
			GID:      uint32(g.GlyphID),
			Cluster:  g.TextIndex(),
			XAdvance: fixedToFloat(g.Advance),
			XOffset:  fixedToFloat(g.XOffset),
			YOffset:  fixedToFloat(g.YOffset),
		}
	}
	return glyphing.Finish(req, glyphs, nil)
}

func direction(d glyphing.Direction) di.Direction {
	switch d {
	case glyphing.RightToLeft:
		return di.DirectionRTL
	case glyphing.TopToBottom:
		return di.DirectionTTB
	case glyphing.BottomToTop:
		return di.DirectionBTT
	}
	return di.DirectionLTR
}

// features selects the feature switches covering the complete range of a
// request. go-text applies features to the whole input only.
func features(req glyphing.Request) []shaping.FontFeature {
	var feats []shaping.FontFeature
	for _, f := range req.Features {
		if !f.Covers(req.Start, req.End) {
			tracer().Debugf("go-text shaper: skipping feature %s for partial range", f.Feature)
			continue
		}
		feats = append(feats, shaping.FontFeature{Tag: f.Feature, Value: f.Value()})
	}
	return feats
}

// detectScript returns the script of the first character which is neither
// of script Common nor Inherited.
func detectScript(runes []rune) gtlang.Script {
	for _, r := range runes {
		if s := gtlang.LookupScript(r); s != gtlang.Common && s != gtlang.Inherited {
			return s
		}
	}
	return gtlang.Latin
}

func lang(tag language.Tag) gtlang.Language {
	if tag == language.Und {
		return gtlang.NewLanguage("en")
	}
	return gtlang.NewLanguage(tag.String())
}

func floatToFixed(f float32) fixed.Int26_6 {
	return fixed.Int26_6(f * 64)
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
