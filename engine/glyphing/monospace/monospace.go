/*
Package monospace implements a simple shaper for monospace output.

Every grapheme is set as a single glyph, occupying one or more cells. The
number of cells is taken from UAX#11 (East Asian Width). Widths do not depend
on font metrics, making this shaper a deterministic choice for tests and for
terminal-like output.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package monospace

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/npillmayer/parashape/engine/glyphing"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/uax/grapheme"
	"github.com/npillmayer/uax/segment"
	"github.com/npillmayer/uax/uax11"
)

// tracer traces with key 'parashape.shaping'.
func tracer() tracing.Trace {
	return tracing.Select("parashape.shaping")
}

type msshape struct {
	cell    float32 // width of a cell in em
	context *uax11.Context
}

var setupClasses sync.Once

// Shaper creates a shaper for monospace typesetting.
// The width of a cell is given in em; if it is zero, it will be set to 0.5em.
// If context is nil, a Latin context is used.
func Shaper(cell float32, context *uax11.Context) glyphing.Shaper {
	if cell == 0 {
		cell = 0.5
	}
	sh := &msshape{
		cell:    cell,
		context: context,
	}
	if context == nil {
		sh.context = uax11.LatinContext
	}
	setupClasses.Do(grapheme.SetupGraphemeClasses)
	return sh
}

// Shape creates a glyph sequence from a text.
func (ms *msshape) Shape(req glyphing.Request) (glyphing.Result, error) {
	if req.Len() <= 0 {
		return glyphing.Finish(req, nil, nil)
	}
	if !req.Font.IsValid() {
		return glyphing.Result{}, glyphing.ErrUnsupportedTypeface
	}
	tf := req.Font.Typeface()
	em := req.Size * ms.cell
	graphemes := segment.NewSegmenter(grapheme.NewBreaker(1))
	graphemes.Init(strings.NewReader(string(req.Text[req.Start:req.End])))
	glyphs := make([]glyphing.ShapedGlyph, 0, req.Len())
	pos := req.Start
	for graphemes.Next() {
		grphm := graphemes.Bytes()
		w := uax11.Width(grphm, ms.context)
		codepoint, _ := utf8.DecodeRune(grphm)
		gid, _ := tf.NominalGlyph(codepoint)
		glyphs = append(glyphs, glyphing.ShapedGlyph{
			GID:      gid,
			Cluster:  pos,
			XAdvance: float32(w) * em,
		})
		pos += utf8.RuneCount(grphm)
	}
	if pos != req.End {
		tracer().Errorf("monospace shaper: graphemes cover %d of %d code-points", pos-req.Start, req.Len())
	}
	if req.Direction == glyphing.RightToLeft {
		for i, j := 0, len(glyphs)-1; i < j; i, j = i+1, j-1 {
			glyphs[i], glyphs[j] = glyphs[j], glyphs[i]
		}
	}
	return glyphing.Finish(req, glyphs, nil)
}
