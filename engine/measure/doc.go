/*
Package measure measures the characters of a paragraph.

A paragraph is given as text plus a sequence of runs. A style run carries a
paint, a direction and line-breaking settings, a replacement run stands for
an object of fixed width, e.g. an inline image. Measuring shapes every
style run piece by piece, using a shaping.Cache, and records the advance of
every character. Characters which may paint outside of their advance box
are flagged, so that line breaking may take their ink bounds into account.

If hyphenation is requested, every word is handed to the hyphenator of the
run's locale, and the widths of the two parts at every hyphenation point
are computed, either by shaping the parts with hyphens attached or, if
kerning is ignored, by adding up character widths.

A measured Paragraph is immutable and answers questions about ranges of
its text: advance, ink bounds, vertical extent and glyph layout. Shaped
pieces may be recorded during measuring and are then re-used for layout
and by later measurements of the same text.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package measure

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'parashape.measure'.
func tracer() tracing.Trace {
	return tracing.Select("parashape.measure")
}
