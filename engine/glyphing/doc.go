/*
Package glyphing defines the interface to text shapers.

A shaper turns a run of code-points, all to be set in the same font and the
same direction, into positioned glyphs. Shapers are external collaborators
of the engine; this package holds the contract and helpers shared by the
adapters in sub-packages:

	gotext      go-text/typesetting HarfBuzz port, the default
	harfbuzz    benoitkugler/textlayout HarfBuzz port
	monospace   cell-based widths after UAX#11, deterministic

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package glyphing

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'parashape.shaping'.
func tracer() tracing.Trace {
	return tracing.Select("parashape.shaping")
}
