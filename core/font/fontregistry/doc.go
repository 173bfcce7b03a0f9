/*
Package fontregistry manages registries for loaded fonts.

There are two kinds of registries:

* A Registry holds loaded typefaces by a key made of name and style, e.g.
"gentium-italic-bold", and serves as a cache for font resolving.

* An Arena owns fonts and families and hands out integer handles for them.
Collections refer to families by handle, and arenas are the unit of
serialization: fonts and families are written once, no matter how many
collections refer to them.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package fontregistry

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'parashape.fonts'
func tracer() tracing.Trace {
	return tracing.Select("parashape.fonts")
}
