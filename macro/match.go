package macro

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2024 Janek Kallfass <janek@kallfass.io>

*/

import (
	"github.com/kallfass/mex"
)

// Match tests an unresolved call site against candidate definitions and
// selects the macro to expand, if any:
//
//  1. candidates must carry the call's name,
//  2. the argument count must equal the declared arity exactly; there is
//     no optional or variadic matching,
//  3. per position, the argument's node kind must satisfy the declared
//     parameter shape,
//  4. among multiple matches the earliest-registered candidate wins.
//
// Zero matches is not an error; the second return value is false and the
// call site is to be left alone for later compilation phases.
func Match(callSite *mex.Node, candidates []*Definition) (*Definition, bool) {
	if callSite == nil || callSite.Kind != mex.CallKind {
		return nil, false
	}
	for _, def := range candidates {
		if def.Sig.Name != callSite.Name {
			continue
		}
		if matches(callSite, def.Sig) {
			tracer().Debugf("call site %s matches %s (#%d)", callSite, def.Sig, def.serial)
			return def, true
		}
	}
	tracer().Debugf("no macro matches call site %s", callSite)
	return nil, false
}

func matches(callSite *mex.Node, sig Signature) bool {
	if len(callSite.Children) != sig.Arity() {
		return false
	}
	for i, arg := range callSite.Children {
		if !sig.Params[i].Matches(arg.Kind) {
			return false
		}
	}
	return true
}
