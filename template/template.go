package template

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2024 Janek Kallfass <janek@kallfass.io>

*/

import (
	"fmt"

	"github.com/kallfass/mex"
	"github.com/kallfass/mex/lang"
)

// Template is a parsed quasiquote skeleton with named substitution holes.
// Templates are immutable once parsed and may be materialized repeatedly;
// macros whose templates do not depend on captured call-site syntax typically
// build them once with Must and keep them for the lifetime of the run.
type Template struct {
	source   string
	skeleton *mex.Node
	holes    map[string]mex.NodeKind // hole name → ExprHole or ValueHole
}

// Parse parses quasiquoted template source into a reusable skeleton. A hole
// name may occur several times, but always with one splice kind.
func Parse(source string) (*Template, error) {
	skeleton, err := lang.ParseTemplate(source)
	if err != nil {
		return nil, err
	}
	t := &Template{
		source:   source,
		skeleton: skeleton,
		holes:    make(map[string]mex.NodeKind),
	}
	if err := t.collectHoles(skeleton); err != nil {
		return nil, err
	}
	tracer().Debugf("parsed template %s with %d hole(s)", skeleton, len(t.holes))
	return t, nil
}

// Must is Parse for templates known to be well-formed; it panics on parse
// errors. Intended for building templates at macro-registration time.
func Must(source string) *Template {
	t, err := Parse(source)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Template) collectHoles(n *mex.Node) error {
	if n == nil {
		return nil
	}
	if n.Kind == mex.ExprHole || n.Kind == mex.ValueHole {
		if kind, seen := t.holes[n.Name]; seen && kind != n.Kind {
			return fmt.Errorf("template hole %q used both as expression and as value splice", n.Name)
		}
		t.holes[n.Name] = n.Kind
	}
	for _, ch := range n.Children {
		if err := t.collectHoles(ch); err != nil {
			return err
		}
	}
	return nil
}

// Holes returns the names of the template's substitution holes.
func (t *Template) Holes() []string {
	names := make([]string, 0, len(t.holes))
	for name := range t.holes {
		names = append(names, name)
	}
	return names
}

func (t *Template) String() string {
	return t.source
}

// UnresolvedHoleError reports materialization with an unbound hole. Template
// misuse is fatal for the compilation unit being expanded.
type UnresolvedHoleError struct {
	Hole string
	Kind mex.NodeKind
}

func (e *UnresolvedHoleError) Error() string {
	sigil := "$"
	if e.Kind == mex.ValueHole {
		sigil = "%"
	}
	return fmt.Sprintf("unresolved template hole %s%s", sigil, e.Hole)
}

// Materialize fills every hole of the skeleton and returns the resulting
// syntax tree. Expression holes embed the bound subtree unchanged: captured
// call-site syntax is not re-parsed, its internal structure is preserved.
// Value holes convert the bound scalar or string into a literal node.
//
// Every hole must be bound; a missing binding fails with
// UnresolvedHoleError before any substitution takes place. Materializing
// twice with identical bindings yields structurally identical trees.
func (t *Template) Materialize(exprs map[string]*mex.Node, values map[string]interface{}) (*mex.Node, error) {
	for name, kind := range t.holes {
		switch kind {
		case mex.ExprHole:
			if _, ok := exprs[name]; !ok {
				return nil, &UnresolvedHoleError{Hole: name, Kind: kind}
			}
		case mex.ValueHole:
			if _, ok := values[name]; !ok {
				return nil, &UnresolvedHoleError{Hole: name, Kind: kind}
			}
		}
	}
	return t.substitute(t.skeleton, exprs, values)
}

func (t *Template) substitute(n *mex.Node, exprs map[string]*mex.Node,
	values map[string]interface{}) (*mex.Node, error) {
	//
	switch n.Kind {
	case mex.ExprHole:
		// clone, so that materializing twice never aliases subtrees
		return exprs[n.Name].Clone(), nil
	case mex.ValueHole:
		lit, err := mex.LiteralFor(values[n.Name])
		if err != nil {
			return nil, fmt.Errorf("template hole %%%s: %v", n.Name, err)
		}
		return lit, nil
	}
	nn := n.Clone()
	for i, ch := range n.Children {
		sub, err := t.substitute(ch, exprs, values)
		if err != nil {
			return nil, err
		}
		nn.Children[i] = sub
	}
	return nn, nil
}
