package expand

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2024 Janek Kallfass <janek@kallfass.io>

*/

import (
	"fmt"
	"sync"

	"github.com/kallfass/mex"
	"github.com/kallfass/mex/macro"
)

// Unit is one compilation unit handed to the expansion pass.
type Unit struct {
	Name string
	Root *mex.Node
}

// Result is the outcome of expanding one unit. A unit with a non-nil Err is
// excluded from later compilation phases; its Root is unusable.
type Result struct {
	Unit Unit
	Root *mex.Node
	Err  error
}

// DefaultMaxDepth is the expansion depth limit used when none is configured.
const DefaultMaxDepth = 64

// RecursionLimitError reports runaway recursive expansion: substituted
// syntax kept introducing macro calls past the configured depth limit.
// Fatal for the containing compilation unit.
type RecursionLimitError struct {
	Macro string
	Loc   mex.Location
	Limit int
}

func (e *RecursionLimitError) Error() string {
	return fmt.Sprintf("%s: %s: recursive expansion exceeds depth limit %d", e.Loc, e.Macro, e.Limit)
}

// --- Pass configuration --------------------------------------------------

// Option configures an expansion pass.
type Option func(*settings)

type settings struct {
	maxDepth int
	config   map[string]string
	diags    *Diagnostics
}

// MaxDepth sets the recursion guard for re-expansion of substituted syntax.
func MaxDepth(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxDepth = n
		}
	}
}

// WithConfig provides the compile-time configuration values readable by
// macro implementations during the pass. The driver wraps them in a
// capability and revokes it when the pass ends.
func WithConfig(values map[string]string) Option {
	return func(s *settings) {
		s.config = values
	}
}

// WithDiagnostics directs collected errors into a shared sink.
func WithDiagnostics(d *Diagnostics) Option {
	return func(s *settings) {
		s.diags = d
	}
}

func makeSettings(opts []Option) settings {
	s := settings{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&s)
	}
	if s.diags == nil {
		s.diags = NewDiagnostics()
	}
	return s
}

// --- Driver ----------------------------------------------------------------

// The driver state for a subtree under expansion.
type state int8

const (
	scanning state = iota
	matchedState
	invoking
	substituting
	rescanning
	doneState
	failedState
)

func (st state) String() string {
	return [...]string{"Scanning", "Matched", "Invoking", "Substituting",
		"Rescanning", "Done", "Error"}[st]
}

// Expand runs one expansion pass over a compilation unit, against a frozen
// registry. On success it returns the fully macro-expanded syntax tree; the
// input tree must not be used afterwards. On failure the unit is excluded
// from later phases; the error tells why and is also reported to the
// configured diagnostics sink.
//
// Expand is a pure function of (tree, registry, configuration); it keeps no
// state between calls and may run concurrently for independent units.
func Expand(unit Unit, reg *macro.Registry, opts ...Option) (*mex.Node, error) {
	s := makeSettings(opts)
	if reg == nil || !reg.IsFrozen() {
		err := fmt.Errorf("expansion requires a frozen macro registry")
		s.diags.report(unit.Name, err)
		return nil, err
	}
	cfg := macro.NewConfig(s.config)
	defer cfg.Revoke() // no later phase can read compile-time configuration
	p := &pass{
		unit:     unit.Name,
		reg:      reg,
		cfg:      cfg,
		maxDepth: s.maxDepth,
	}
	root, err := p.walk(unit.Root, 0)
	if err != nil {
		s.diags.report(unit.Name, err)
		return nil, err
	}
	return root, nil
}

// Run expands several compilation units against one frozen registry,
// collecting diagnostics across all of them. Units are independent and are
// expanded concurrently; the diagnostics sink serializes error reporting. A
// fatal error in one unit does not stop its siblings. The second return
// value is false if any unit failed; callers should then abort code
// generation and exit non-zero.
func Run(units []Unit, reg *macro.Registry, opts ...Option) ([]Result, bool) {
	s := makeSettings(opts)
	opts = append(opts, WithDiagnostics(s.diags))
	results := make([]Result, len(units))
	var wg sync.WaitGroup
	for i, unit := range units {
		wg.Add(1)
		go func(i int, unit Unit) {
			defer wg.Done()
			root, err := Expand(unit, reg, opts...)
			results[i] = Result{Unit: unit, Root: root, Err: err}
		}(i, unit)
	}
	wg.Wait()
	ok := true
	for _, r := range results {
		if r.Err != nil {
			ok = false
		}
	}
	return results, ok
}

// pass carries the per-unit expansion state: the enclosing-lambda chain for
// scope lookups and the configuration capability for this run.
type pass struct {
	unit     string
	reg      *macro.Registry
	cfg      *macro.Config
	maxDepth int
	lambdas  []*mex.Node // enclosing lambda nodes, outermost first
}

// walk scans a subtree depth-first. Call nodes are offered to the matcher
// before their arguments are descended into, so macros receive the raw,
// unexpanded call-site syntax. depth counts expansions along the current
// path; it increments when substituted syntax is re-scanned.
//
// A nil return node (without error) means the subtree was deleted by an
// empty replacement.
func (p *pass) walk(n *mex.Node, depth int) (*mex.Node, error) {
	if n == nil {
		return nil, nil
	}
	if n.Kind == mex.CallKind {
		if def, ok := macro.Match(n, p.reg.Lookup(n.Name)); ok {
			tracer().Debugf("%s: %s at %s", matchedState, def.Sig, n.Location())
			if depth >= p.maxDepth {
				return nil, &RecursionLimitError{Macro: n.Name, Loc: n.Location(), Limit: p.maxDepth}
			}
			tracer().Debugf("%s: %s", invoking, def.Sig)
			rep, err := macro.Invoke(def, n, p.scope(), p.cfg)
			if err != nil {
				tracer().Debugf("%s: %s", failedState, err)
				return nil, err
			}
			if rep.IsEmpty() {
				tracer().Debugf("%s: deleting call site %s", substituting, n)
				return nil, nil
			}
			out := rep.Node()
			mex.Stamp(out, n.Location()) // diagnostics keep pointing at the call site
			tracer().Debugf("%s: %s", rescanning, out)
			return p.walk(out, depth+1)
		}
	}
	// no match (or not a call): scan children; NoMatch is not an error
	if n.Kind == mex.LambdaKind {
		p.lambdas = append(p.lambdas, n)
		defer func() { p.lambdas = p.lambdas[:len(p.lambdas)-1] }()
	}
	if err := p.walkChildren(n, depth); err != nil {
		return nil, err
	}
	tracer().Debugf("%s: %s", doneState, n.Kind)
	return n, nil
}

func (p *pass) walkChildren(n *mex.Node, depth int) error {
	if len(n.Children) == 0 {
		return nil
	}
	kept := n.Children[:0]
	for _, ch := range n.Children {
		out, err := p.walk(ch, depth)
		if err != nil {
			return err
		}
		if out != nil { // empty replacements delete the child
			kept = append(kept, out)
		}
	}
	n.Children = kept
	return nil
}

// scope returns a lookup-only snapshot of the enclosing syntactic scope for
// the call site currently being expanded.
func (p *pass) scope() macro.Scope {
	if len(p.lambdas) == 0 {
		return macro.EmptyScope
	}
	return &lexicalScope{lambdas: append([]*mex.Node{}, p.lambdas...)}
}

// lexicalScope resolves names against the parameters of enclosing lambdas,
// innermost first. It is lookup-only.
type lexicalScope struct {
	lambdas []*mex.Node
}

func (s *lexicalScope) Lookup(name string) (*mex.Node, bool) {
	for i := len(s.lambdas) - 1; i >= 0; i-- {
		for _, param := range s.lambdas[i].Params {
			if param == name {
				return s.lambdas[i], true
			}
		}
	}
	return nil, false
}

var _ macro.Scope = (*lexicalScope)(nil)
