/*
Package fallback implements font collections with font fallback.

A collection is an ordered list of font families. Text is itemized into runs
of characters, each run being assigned the families best suited to render it.
"Best" is decided by a score per family and character, combining coverage
(including variation sequences), the match of locales and the family
variant. The first family of a collection is special: whenever it covers a
character, it wins.

	collection, err := fallback.NewCollection(families)
	runs := collection.Itemize(text, style, localeListID, font.VariantDefault, 0)
	for _, run := range runs {
	    ff := collection.BestFont(text, run, style)
	    …
	}

For fast lookup, a collection keeps an index of families per 256-character
page, holding only the families covering at least one character of the page.

Collections are immutable and safe for concurrent use.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package fallback

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'parashape.fonts'
func tracer() tracing.Trace {
	return tracing.Select("parashape.fonts")
}
