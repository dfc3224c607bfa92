package macro

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2024 Janek Kallfass <janek@kallfass.io>

*/

import (
	"fmt"

	"github.com/kallfass/mex"
)

// Replacement is the result of a macro invocation: either a concrete syntax
// node taking the call site's place, or the explicit empty result causing
// deletion of the call site.
type Replacement struct {
	node  *mex.Node
	empty bool
}

// Replace wraps a replacement node for the call site.
func Replace(n *mex.Node) Replacement {
	if n == nil {
		return Delete()
	}
	return Replacement{node: n}
}

// Delete is the explicit empty result: the call site compiles to nothing.
func Delete() Replacement {
	return Replacement{empty: true}
}

// IsEmpty tells whether the replacement deletes the call site.
func (r Replacement) IsEmpty() bool {
	return r.empty
}

// Node returns the replacement node, nil for the empty result.
func (r Replacement) Node() *mex.Node {
	return r.node
}

// ExecutionError reports a fault inside a macro implementation. It is fatal
// for the compilation unit containing the call site.
type ExecutionError struct {
	Macro string
	Loc   mex.Location
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Loc, e.Macro, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Invoke executes a matched macro definition against a call site. It builds
// the per-invocation context from the call site's location and the enclosing
// scope, and passes the raw argument syntax trees to the implementation,
// never their runtime values. A failing implementation (error return or
// panic) yields an ExecutionError carrying the macro name and the call-site
// location.
func Invoke(def *Definition, callSite *mex.Node, scope Scope, cfg *Config) (rep Replacement, err error) {
	ctx := &Context{
		loc:   callSite.Location(),
		scope: scope,
		cfg:   cfg,
	}
	defer func() {
		if p := recover(); p != nil {
			tracer().Errorf("macro %s panicked: %v", def.Sig.Name, p)
			err = &ExecutionError{
				Macro: def.Sig.Name,
				Loc:   ctx.loc,
				Err:   fmt.Errorf("macro implementation panicked: %v", p),
			}
		}
	}()
	tracer().Debugf("invoking %s at %s", def.Sig, ctx.loc)
	rep, ierr := def.Impl(ctx, callSite.Children)
	if ierr != nil {
		return Replacement{}, &ExecutionError{Macro: def.Sig.Name, Loc: ctx.loc, Err: ierr}
	}
	return rep, nil
}
