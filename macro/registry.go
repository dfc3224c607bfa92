package macro

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2024 Janek Kallfass <janek@kallfass.io>

*/

import (
	"fmt"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/kallfass/mex"
)

// Implementation is the compile-time function body of a macro. It receives a
// per-invocation context and the raw, unevaluated argument syntax trees of
// the call site (never runtime values) and produces a replacement for the
// call site. Implementations must be pure with respect to the syntax they
// receive and must terminate on their own; they run synchronously inside the
// expansion pass.
type Implementation func(ctx *Context, args []*mex.Node) (Replacement, error)

// Definition couples a signature with its implementation. Definitions are
// owned by the registry for the lifetime of a compilation run and are
// immutable after registration.
type Definition struct {
	Sig    Signature
	Impl   Implementation
	serial int // registration order, the overload tie-breaker
}

// DuplicateSignatureError reports registration of an identical
// (name, shape-sequence) pair, regardless of which library registers it.
// Registration errors are fatal for the whole run.
type DuplicateSignatureError struct {
	Sig Signature
}

func (e *DuplicateSignatureError) Error() string {
	return fmt.Sprintf("duplicate macro signature: %s", e.Sig)
}

// Registry holds the set of macro definitions for a compilation run. It is
// populated at startup and frozen before any compilation unit is expanded;
// from then on it is read-only and safe to share across units without
// locking.
type Registry struct {
	byName *linkedhashmap.Map  // macro name → *arraylist.List of *Definition
	seen   map[string]struct{} // signature identity hashes
	frozen bool
	count  int
}

// NewRegistry creates an empty, unfrozen registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: linkedhashmap.New(),
		seen:   make(map[string]struct{}),
	}
}

// Register adds a macro definition. It fails with DuplicateSignatureError
// when an identical (name, shape-sequence) pair is already present, and with
// a plain error when the registry has been frozen. Overload resolution among
// same-name candidates is deferred to the matcher.
func (r *Registry) Register(sig Signature, impl Implementation) error {
	if r.frozen {
		return fmt.Errorf("registry is frozen, cannot register macro %s", sig)
	}
	if impl == nil {
		return fmt.Errorf("macro %s has no implementation", sig)
	}
	h, err := sig.hash()
	if err != nil {
		return fmt.Errorf("cannot hash signature %s: %v", sig, err)
	}
	if _, dup := r.seen[h]; dup {
		return &DuplicateSignatureError{Sig: sig}
	}
	r.seen[h] = struct{}{}
	def := &Definition{Sig: sig, Impl: impl, serial: r.count}
	r.count++
	var overloads *arraylist.List
	if l, ok := r.byName.Get(sig.Name); ok {
		overloads = l.(*arraylist.List)
	} else {
		overloads = arraylist.New()
		r.byName.Put(sig.Name, overloads)
	}
	overloads.Add(def)
	tracer().Infof("registered macro %s (#%d)", sig, def.serial)
	return nil
}

// Freeze marks population as complete. Subsequent Register calls fail. The
// expansion pass requires a frozen registry.
func (r *Registry) Freeze() {
	r.frozen = true
	tracer().Infof("registry frozen with %d definition(s)", r.count)
}

// IsFrozen tells whether population has completed.
func (r *Registry) IsFrozen() bool {
	return r.frozen
}

// Size returns the number of registered definitions.
func (r *Registry) Size() int {
	return r.count
}

// Lookup returns all definitions registered under a name, in registration
// order. The returned slice is a copy; the registry stays immutable.
func (r *Registry) Lookup(name string) []*Definition {
	l, ok := r.byName.Get(name)
	if !ok {
		return nil
	}
	overloads := l.(*arraylist.List)
	defs := make([]*Definition, 0, overloads.Size())
	it := overloads.Iterator()
	for it.Next() {
		defs = append(defs, it.Value().(*Definition))
	}
	return defs
}

// Names returns all registered macro names in first-registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, r.byName.Size())
	it := r.byName.Iterator()
	for it.Next() {
		names = append(names, it.Key().(string))
	}
	return names
}
