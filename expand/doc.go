/*
Package expand implements the global macro transformation driver.

The driver performs one recursive pass over each compilation unit's syntax
tree: it walks the tree depth-first, offers every call node to the matcher,
invokes the matched macro implementation, substitutes the result (or deletes
the call site on an empty result), and re-scans newly introduced syntax so
that macros may emit calls to other macros. An explicit depth counter bounds
recursive re-expansion.

The pass is a pure function over (syntax tree, frozen registry): the registry
is passed explicitly to all collaborators and read-only throughout, so
independent compilation units may be expanded in parallel. A fatal error in
one unit excludes that unit from later phases; sibling units continue, and
diagnostics are collected in aggregate through a serialized sink.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2024 Janek Kallfass <janek@kallfass.io>

*/
package expand

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mex.expand'.
func tracer() tracing.Trace {
	return tracing.Select("mex.expand")
}
