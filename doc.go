/*
Package mex implements a compile-time macro expansion engine.

Library authors register functions tagged as macros, together with a
signature describing the structural shape of the arguments they accept.
During a dedicated compiler pass, unresolved call sites are matched
against the registered signatures by syntactic shape. A matching macro
implementation is executed against the raw, unevaluated syntax trees of
the call-site arguments; its result replaces the call site in the
program before semantic analysis and code generation run. Newly
introduced syntax is re-scanned, so macros may emit calls to other
macros.

The base package contains the homogenous syntax-node model shared by
all collaborators: a closed enumeration of node kinds, source spans and
locations, and structural operations (cloning, comparison, location
stamping). Package structure is as follows:

■ lang: a scanner and expression parser producing mex syntax trees from
source text.

■ template: quasiquote skeletons with named substitution holes.

■ macro: the frozen macro registry, the structural call-site matcher
and the expansion invoker.

■ expand: the transformation driver, walking compilation units and
substituting expansion results.

Macro implementations run synchronously and are never handed runtime
values, only syntax. Hygiene is not guaranteed; the engine propagates
source locations onto macro-generated nodes and nothing more.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2024 Janek Kallfass <janek@kallfass.io>

*/
package mex

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mex.syntax'.
func tracer() tracing.Trace {
	return tracing.Select("mex.syntax")
}
