/*
Package linebreak breaks measured paragraphs into lines.

Two strategies are offered. The greedy breaker fills every line with as
many words as fit, then moves on; it supports tab stops. The optimal
breaker considers the paragraph as a whole and minimizes the sum of the
squared free space of all lines plus penalties for hyphenation, similar to
the algorithm of Knuth and Plass, but without the box/glue/penalty model.

Break candidates are word breaks, as found by the word breaker, hyphenation
points within words (if the hyphenation frequency allows for them) and
"desperate" breaks between any two grapheme clusters of words which are
too wide for a line. Desperate breaks score so badly that they are used
only if nothing else helps.

Lines which cannot be made to fit are not an error: they are returned as
overfull lines.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package linebreak

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'parashape.linebreak'.
func tracer() tracing.Trace {
	return tracing.Select("parashape.linebreak")
}
