/*
Package macro holds the macro registry, the structural call-site matcher and
the expansion invoker.

Macros are registered once, at startup, as a signature (name plus ordered
parameter shapes) together with an implementation. The registry is frozen
before the expansion pass starts and is read-only from then on, so unrelated
compilation units may be expanded in parallel without locking.

Matching is structural, not nominal: a call site matches a signature when the
name is equal, the argument count is exactly the declared parameter count,
and every argument's node kind satisfies the declared shape at its position.
Among several structurally matching overloads, the earliest-registered one
wins, mirroring ordinary overload shadowing. A call site matching nothing is
not an error; it is left untouched for later compilation phases,
indistinguishable from a call that never was a macro.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2024 Janek Kallfass <janek@kallfass.io>

*/
package macro

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mex.macro'.
func tracer() tracing.Trace {
	return tracing.Select("mex.macro")
}
