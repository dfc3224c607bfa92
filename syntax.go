package mex

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2024 Janek Kallfass <janek@kallfass.io>

*/

import (
	"fmt"
	"strconv"
	"strings"
)

// NodeKind is the structural classification of a syntax node, independent of
// any nominal type system. It is a closed enumeration: extend it by adding
// variants here, never by open-ended type hierarchies. Shape matching in
// package macro switches over these variants.
type NodeKind int8

// The node kinds of the expression language.
const (
	NoKind      NodeKind = iota
	LiteralKind          // number, string or boolean constant
	IdentKind            // plain identifier
	UnaryKind            // operator with a single operand
	BinaryKind           // operator with two operands
	CallKind             // callee name with ordered arguments
	LambdaKind           // parameter list plus a body expression
	ExprHole             // template hole, to be filled with a captured subtree
	ValueHole            // template hole, to be filled with a computed literal
)

func (k NodeKind) String() string {
	switch k {
	case NoKind:
		return "none"
	case LiteralKind:
		return "literal"
	case IdentKind:
		return "ident"
	case UnaryKind:
		return "unary"
	case BinaryKind:
		return "binary"
	case CallKind:
		return "call"
	case LambdaKind:
		return "lambda"
	case ExprHole:
		return "expr-hole"
	case ValueHole:
		return "value-hole"
	}
	return "<unknown kind>"
}

// Node is a homogenous syntax-tree node. All collaborators of the expansion
// pass (parser, matcher, templates, driver) share this one node type, which
// makes tree walking and tree restructuring uniform.
//
// The payload fields are used depending on Kind:
//
//	LiteralKind   Value (float64, string or bool)
//	IdentKind     Name
//	UnaryKind     Name = operator lexeme, Children = [operand]
//	BinaryKind    Name = operator lexeme, Children = [left, right]
//	CallKind      Name = callee, Children = arguments
//	LambdaKind    Params = parameter names, Children = [body] (or empty)
//	ExprHole      Name = hole name
//	ValueHole     Name = hole name
//
// A node's location is assigned once, by the parser, and is immutable
// thereafter. Nodes built programmatically (by macro implementations or
// template materialization) are synthetic until the driver stamps them with
// the call-site location.
type Node struct {
	Kind     NodeKind
	Name     string
	Value    interface{}
	Params   []string
	Children []*Node
	loc      Location
}

// --- Constructors ----------------------------------------------------------

// Lit creates a literal node. The value should be a float64, string or bool;
// integer values are widened to float64.
func Lit(value interface{}) *Node {
	n, err := LiteralFor(value)
	if err != nil {
		tracer().Errorf(err.Error())
		return &Node{Kind: LiteralKind, Value: value}
	}
	return n
}

// LiteralFor converts a computed scalar or string into the corresponding
// literal node. This is the conversion ValueSplice holes rely on.
func LiteralFor(value interface{}) (*Node, error) {
	switch v := value.(type) {
	case float64:
		return &Node{Kind: LiteralKind, Value: v}, nil
	case string, bool:
		return &Node{Kind: LiteralKind, Value: v}, nil
	case int:
		return &Node{Kind: LiteralKind, Value: float64(v)}, nil
	case int32:
		return &Node{Kind: LiteralKind, Value: float64(v)}, nil
	case int64:
		return &Node{Kind: LiteralKind, Value: float64(v)}, nil
	case float32:
		return &Node{Kind: LiteralKind, Value: float64(v)}, nil
	}
	return nil, fmt.Errorf("no literal representation for value of type %T", value)
}

// Id creates an identifier node.
func Id(name string) *Node {
	return &Node{Kind: IdentKind, Name: name}
}

// Unary creates an operator node with a single operand.
func Unary(op string, operand *Node) *Node {
	return &Node{Kind: UnaryKind, Name: op, Children: []*Node{operand}}
}

// Binary creates an operator node with two operands.
func Binary(op string, left, right *Node) *Node {
	return &Node{Kind: BinaryKind, Name: op, Children: []*Node{left, right}}
}

// Call creates a call node for a callee name and ordered arguments.
func Call(callee string, args ...*Node) *Node {
	return &Node{Kind: CallKind, Name: callee, Children: args}
}

// Lambda creates a lambda node. body may be nil for the empty lambda `{}`.
func Lambda(params []string, body *Node) *Node {
	n := &Node{Kind: LambdaKind, Params: params}
	if body != nil {
		n.Children = []*Node{body}
	}
	return n
}

// Hole creates a template hole node of the given kind (ExprHole or ValueHole).
func Hole(kind NodeKind, name string) *Node {
	if kind != ExprHole && kind != ValueHole {
		panic(fmt.Sprintf("node kind %s is not a hole kind", kind))
	}
	return &Node{Kind: kind, Name: name}
}

// --- Locations on nodes ------------------------------------------------

// At assigns a source location to a node and returns the node. The location
// is set once; subsequent calls on a located node are ignored.
func (n *Node) At(loc Location) *Node {
	if n.loc.IsSynthetic() {
		n.loc = loc
	}
	return n
}

// Location returns the source location of a node. Synthetic nodes return the
// zero Location.
func (n *Node) Location() Location {
	return n.loc
}

// IsSynthetic is true for nodes which no parser has assigned a location to.
func (n *Node) IsSynthetic() bool {
	return n.loc.IsSynthetic()
}

// --- Structural operations ---------------------------------------------

// Clone returns a deep copy of a subtree, locations included.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	nn := &Node{
		Kind:  n.Kind,
		Name:  n.Name,
		Value: n.Value,
		loc:   n.loc,
	}
	if n.Params != nil {
		nn.Params = append([]string{}, n.Params...)
	}
	for _, ch := range n.Children {
		nn.Children = append(nn.Children, ch.Clone())
	}
	return nn
}

// Equal compares two subtrees structurally. Locations do not participate in
// the comparison: a macro-generated tree equals its parsed counterpart.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == nil && other == nil
	}
	if n.Kind != other.Kind || n.Name != other.Name || n.Value != other.Value {
		return false
	}
	if len(n.Params) != len(other.Params) || len(n.Children) != len(other.Children) {
		return false
	}
	for i, p := range n.Params {
		if p != other.Params[i] {
			return false
		}
	}
	for i, ch := range n.Children {
		if !ch.Equal(other.Children[i]) {
			return false
		}
	}
	return true
}

// String returns a compact, Lisp-ish notation of a subtree, convenient for
// tracing and for structural assertions in tests.
//
//	warn(age >= 18, "x")   ⇒   (warn (>= age 18) "x")
//	{ x -> x + 1 }         ⇒   (lambda (x) (+ x 1))
func (n *Node) String() string {
	if n == nil {
		return "nil"
	}
	switch n.Kind {
	case LiteralKind:
		switch v := n.Value.(type) {
		case string:
			return strconv.Quote(v)
		case float64:
			return strconv.FormatFloat(v, 'g', -1, 64)
		case bool:
			return strconv.FormatBool(v)
		}
		return fmt.Sprintf("%v", n.Value)
	case IdentKind:
		return n.Name
	case UnaryKind, BinaryKind, CallKind:
		var b strings.Builder
		b.WriteByte('(')
		b.WriteString(n.Name)
		for _, ch := range n.Children {
			b.WriteByte(' ')
			b.WriteString(ch.String())
		}
		b.WriteByte(')')
		return b.String()
	case LambdaKind:
		var b strings.Builder
		b.WriteString("(lambda (")
		b.WriteString(strings.Join(n.Params, " "))
		b.WriteByte(')')
		for _, ch := range n.Children {
			b.WriteByte(' ')
			b.WriteString(ch.String())
		}
		b.WriteByte(')')
		return b.String()
	case ExprHole:
		return "$" + n.Name
	case ValueHole:
		return "%" + n.Name
	}
	return "<" + n.Kind.String() + ">"
}
