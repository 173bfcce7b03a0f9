/*
Package resources locates the data files the engine depends on: fonts and
hyphenation patterns.

Fonts are searched for in this order: the Go fonts packaged with
golang.org/x/image, the system font folders, and the font list of
fontconfig, if the global configuration names an fc-list binary (key
'fontconfig'). As loading fonts may take some time, ResolveTypeface works
in an async/await fashion by returning a promise. The client calls the
promise later to receive the typeface, blocking until loading has
completed.

Hyphenation patterns are read from files configured per language, e.g.

	hyphenation-patterns.en = /usr/share/hyphen/hyph-en-us.tex

Patterns may be given by URL as well; they are downloaded once into the
user's cache folder.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package resources

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'parashape.resources'.
func tracer() tracing.Trace {
	return tracing.Select("parashape.resources")
}
