/*
Package hyphenation finds hyphenation points in words.

Words are hyphenated with Liang's algorithm, i.e. with TeX-style hyphenation
patterns. Pattern files contain whitespace-separated patterns and an
optional list of exceptions:

	% comment
	.ach4 .ad4der .af1t ...
	\hyphenation{ as-so-ciate ta-ble }

The result of hyphenating a word is a Type for every position, telling if a
line may be broken before the character at that position, and what happens
to the text around the break. Some scripts do not use hyphens, others use
their own hyphen character (Armenian, Hebrew, Canadian syllabics). A Type
translates to hyphen edits of the two lines adjacent to the break, see
EditForThisLine and EditForNextLine.

Hyphenators are kept in a Registry per language. Patterns are loaded lazily
on first use.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package hyphenation

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'parashape.measure'.
func tracer() tracing.Trace {
	return tracing.Select("parashape.measure")
}
