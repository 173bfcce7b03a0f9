/*
Package paragraph drives a paragraph of text through the engine.

An Engine bundles a font collection, a shaped piece cache, a word breaker
and the hyphenators. Paragraphs pass through the stages

	Idle → Itemizing → Measuring → Breaking → Done

in this order. Itemization splits the text into runs of characters
rendered by the same font families, measuring computes the advance of every
character, and line breaking finds the break points for a given paragraph
shape. Measuring and line breaking may be repeated, e.g. with other style
runs or for another line width. Calling an operation out of order results
in an error with code core.ESTATE.

Shaping failures do not abort a paragraph: the affected text is measured as
zero width, and the failure is logged.

Paragraph input may be assembled from styled text, where runs of text carry
a TextStyle (see NewTextBuilder).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package paragraph

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'parashape.paragraph'.
func tracer() tracing.Trace {
	return tracing.Select("parashape.paragraph")
}
