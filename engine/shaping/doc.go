/*
Package shaping turns runs of text into shaped pieces and memoizes them.

A piece is a short range of text, usually a word or a single space, which is
shaped as a unit. Shaping a piece resolves fonts from a fallback collection,
splits the piece into font and script runs and hands each of them to a
glyphing.Shaper. Results are kept in a Cache, keyed by the piece's
characters, its paint and the hyphen edits applied to it.

Pieces are immutable once they have been created and may be shared between
goroutines. The only exception is the bounding box, which a cache may add
later on request.

Layout collects the glyphs of consecutive pieces, i.e. the glyphs of a
(partial) line of text, ready for rendering.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package shaping

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'parashape.shaping'.
func tracer() tracing.Trace {
	return tracing.Select("parashape.shaping")
}
