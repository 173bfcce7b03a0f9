/*
Package segment splits paragraph text for shaping and line breaking.

The engine does not implement Unicode segmentation algorithms itself; it
delegates to external libraries and adapts their results to rune positions
within a paragraph:

	BidiRuns            directional runs (golang.org/x/text/unicode/bidi)
	WordBreaker         line-break opportunities (npillmayer/uax UAX#14 or go-text)
	IsGraphemeBoundary  grapheme clusters (go-text segmenter)
	ScriptRuns          script runs (go-text language)

On top of these, the package knows about pieces of text which are shaped
independently of each other (see Pieces), and it recognizes e-mail
addresses and URLs, which are broken after the rules of the Chicago Manual
of Style.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package segment

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'parashape.segment'.
func tracer() tracing.Trace {
	return tracing.Select("parashape.segment")
}
