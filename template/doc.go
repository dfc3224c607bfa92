/*
Package template implements quasiquoted code templates for macro
implementations.

A template is parsed once from code-shaped source into a reusable skeleton
with named substitution holes, and materialized any number of times into
concrete syntax by filling the holes. Two hole kinds exist: '$name' embeds a
previously captured subtree verbatim (an expression splice), '%name' converts
a computed scalar or string into the corresponding literal node (a value
splice). Materialization is pure structural substitution, without evaluation
or type checking; those are deferred to later compilation phases.

Template skeletons carry no source locations. Materialized trees are
synthetic until the expansion driver stamps them with the call-site location.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2024 Janek Kallfass <janek@kallfass.io>

*/
package template

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mex.template'.
func tracer() tracing.Trace {
	return tracing.Select("mex.template")
}
