/*
Package lang provides a scanner and parser for the expression language the
macro engine operates on. It is the stand-in for the host compiler's parser:
it turns source text into mex syntax trees, assigning a source location to
every node. Call sites, macro arguments and template skeletons all originate
here.

The scanner is an adapter for lexmachine
(https://github.com/timtadh/lexmachine); the parser is a straightforward
precedence-climbing expression parser.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2024 Janek Kallfass <janek@kallfass.io>

*/
package lang

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mex.lang'.
func tracer() tracing.Trace {
	return tracing.Select("mex.lang")
}
