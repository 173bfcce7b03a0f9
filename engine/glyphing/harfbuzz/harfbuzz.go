/*
Package harfbuzz shapes text with the HarfBuzz port of benoitkugler/textlayout.

It works with typefaces which expose their font binary, i.e. *font.OpenTypeface.
Parsed fonts are cached per font source. Glyph bounds are taken from
x/image/font/sfnt. Variable fonts are shaped in their default instance.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package harfbuzz

import (
	"bytes"
	"encoding/binary"
	"math"
	"sync"
	"unicode"

	hbtt "github.com/benoitkugler/textlayout/fonts/truetype"
	hb "github.com/benoitkugler/textlayout/harfbuzz"
	hblang "github.com/benoitkugler/textlayout/language"
	ot "github.com/go-text/typesetting/font/opentype"
	"github.com/npillmayer/parashape/core"
	pfont "github.com/npillmayer/parashape/core/font"
	"github.com/npillmayer/parashape/engine/glyphing"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"
)

// tracer traces with key 'parashape.shaping'.
func tracer() tracing.Trace {
	return tracing.Select("parashape.shaping")
}

// --- Type conversion -------------------------------------------------------

// Lang4HB returns a language tag as a HarfBuzz language.
func Lang4HB(l language.Tag) hblang.Language {
	return hblang.NewLanguage(l.String())
}

// Script4HB returns a script as a HarfBuzz script.
func Script4HB(s language.Script) hblang.Script {
	b := []byte(s.String())
	b[0] = byte(unicode.ToLower(rune(b[0])))
	h := binary.BigEndian.Uint32(b)
	return hblang.Script(h)
}

// Direction4HB translates a direction to a HarfBuzz direction.
func Direction4HB(d glyphing.Direction) hb.Direction {
	switch d {
	case glyphing.LeftToRight:
		return hb.LeftToRight
	case glyphing.RightToLeft:
		return hb.RightToLeft
	case glyphing.TopToBottom:
		return hb.TopToBottom
	case glyphing.BottomToTop:
		return hb.BottomToTop
	}
	return hb.LeftToRight
}

// Feature4HB makes a typecast from an OpenType feature tag to a HarfBuzz truetype tag.
func Feature4HB(t ot.Tag) hbtt.Tag {
	return hbtt.Tag(t)
}

// FeatureRange4HB converts a feature range struct to a HarfBuzz Feature switch.
// Feature ranges are given as indexes into a request's text; HarfBuzz
// counts clusters the same way.
func FeatureRange4HB(frng glyphing.FeatureRange) hb.Feature {
	f := hb.Feature{
		Tag:   Feature4HB(frng.Feature),
		Value: frng.Value(),
		Start: frng.Start,
		End:   frng.End,
	}
	if frng.End == 0 {
		f.Start, f.End = 0, math.MaxInt32
	}
	return f
}

// --- Shaper ----------------------------------------------------------------

// BinarySource is implemented by typefaces which expose their font file.
type BinarySource interface {
	Binary() []byte
}

type parsedFont struct {
	face *hbtt.Font
	sfnt *sfnt.Font
}

// Shaper is a glyphing.Shaper backed by textlayout's HarfBuzz port.
// It is safe for concurrent use.
type Shaper struct {
	mx    sync.Mutex
	fonts map[string]*parsedFont // by typeface source
}

var _ glyphing.Shaper = (*Shaper)(nil)

// New creates a shaper.
func New() *Shaper {
	return &Shaper{fonts: make(map[string]*parsedFont)}
}

func (s *Shaper) parsed(tf pfont.Typeface) (*parsedFont, error) {
	src, ok := tf.(BinarySource)
	if !ok || len(src.Binary()) == 0 {
		return nil, core.WrapError(glyphing.ErrUnsupportedTypeface, core.EINTERNAL,
			"HarfBuzz shaper needs font binary of typeface %s", tf.Name())
	}
	s.mx.Lock()
	defer s.mx.Unlock()
	if p, ok := s.fonts[tf.Source()]; ok {
		return p, nil
	}
	face, err := hbtt.Parse(bytes.NewReader(src.Binary()), true)
	if err != nil {
		return nil, core.WrapError(err, core.EINTERNAL, "HarfBuzz cannot parse typeface %s", tf.Name())
	}
	p := &parsedFont{face: face}
	if p.sfnt, err = sfnt.Parse(src.Binary()); err != nil {
		tracer().Infof("no sfnt glyph bounds for %s: %v", tf.Name(), err)
		p.sfnt = nil
	}
	s.fonts[tf.Source()] = p
	tracer().Debugf("HarfBuzz shaper parsed typeface %s", tf.Name())
	return p, nil
}

// Shape calls the HarfBuzz shaper.
//
// Shape shapes a sequence of code-points (runes), turning its Unicode characters to
// positioned glyphs. It will select a shape plan based on the request,
// including the selected font, and the properties of the input text.
//
// If `req.Features` is not empty, it will be used to control the
// features applied during shaping. If two features have the same tag but
// overlapping ranges the value of the feature with the higher index takes
// precedence.
func (s *Shaper) Shape(req glyphing.Request) (glyphing.Result, error) {
	if req.Len() <= 0 {
		return glyphing.Finish(req, nil, nil)
	}
	if !req.Font.IsValid() {
		return glyphing.Result{}, glyphing.ErrUnsupportedTypeface
	}
	p, err := s.parsed(req.Font.Typeface())
	if err != nil {
		return glyphing.Result{}, err
	}
	// HarfBuzz fonts carry the scale and are cheap to create
	hbFont := hb.NewFont(p.face)
	hbFont.XScale = int32(req.Size * 64)
	hbFont.YScale = hbFont.XScale
	var features []hb.Feature
	for _, feat := range req.Features {
		features = append(features, FeatureRange4HB(feat))
	}
	buf := hb.NewBuffer()
	buf.Props = segmentProperties(req)
	buf.AddRunes(req.Text, req.Start, req.Len())
	buf.Shape(hbFont, features)
	glyphs := make([]glyphing.ShapedGlyph, len(buf.Info))
	for i, ginfo := range buf.Info {
		gpos := &buf.Pos[i]
		glyphs[i] = glyphing.ShapedGlyph{
			GID:      pfont.GlyphID(ginfo.Glyph),
			Cluster:  ginfo.Cluster,
			XAdvance: float32(gpos.XAdvance) / 64,
			XOffset:  float32(gpos.XOffset) / 64,
			YOffset:  float32(gpos.YOffset) / 64,
		}
	}
	return glyphing.Finish(req, glyphs, p.boundsFunc(req))
}

// segmentProperties is a helper function to convert glyphing parameters to
// HarfBuzz's format.
func segmentProperties(req glyphing.Request) hb.SegmentProperties {
	var props hb.SegmentProperties
	if req.Language != language.Und {
		props.Language = Lang4HB(req.Language)
	}
	var none language.Script
	if req.Script != none {
		props.Script = Script4HB(req.Script)
	}
	props.Direction = Direction4HB(req.Direction)
	return props
}

// boundsFunc measures glyphs with x/image/font/sfnt. sfnt's y-axis grows
// downwards, as does ours. Fakery is not applied.
func (p *parsedFont) boundsFunc(req glyphing.Request) glyphing.BoundsFunc {
	if p.sfnt == nil {
		return nil
	}
	ppem := fixed.Int26_6(req.Size * 64)
	var sbuf sfnt.Buffer
	return func(gid pfont.GlyphID) pfont.Rect {
		bounds, _, err := p.sfnt.GlyphBounds(&sbuf, sfnt.GlyphIndex(gid), ppem, font.HintingNone)
		if err != nil {
			return pfont.Rect{}
		}
		return pfont.Rect{
			Left:   float32(bounds.Min.X) / 64,
			Top:    float32(bounds.Min.Y) / 64,
			Right:  float32(bounds.Max.X) / 64,
			Bottom: float32(bounds.Max.Y) / 64,
		}
	}
}
