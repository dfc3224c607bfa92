package macro

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2024 Janek Kallfass <janek@kallfass.io>

*/

import (
	"fmt"
	"strings"

	"github.com/cnf/structhash"
	"github.com/kallfass/mex"
)

// ParameterShape declares the structural kind of syntax a macro parameter
// accepts. Shapes classify call-site arguments by node kind only; no nominal
// type information is involved.
type ParameterShape int8

// The parameter shapes. Any matches every node kind; all other shapes
// require exact kind equality, with no widening.
const (
	Any ParameterShape = iota
	Literal
	Identifier
	Lambda
	Call
	BinaryOp
)

func (s ParameterShape) String() string {
	switch s {
	case Any:
		return "Any"
	case Literal:
		return "Literal"
	case Identifier:
		return "Identifier"
	case Lambda:
		return "Lambda"
	case Call:
		return "Call"
	case BinaryOp:
		return "BinaryOp"
	}
	return "<unknown shape>"
}

// Matches tests a call-site argument's node kind against the shape.
func (s ParameterShape) Matches(kind mex.NodeKind) bool {
	switch s {
	case Any:
		return true
	case Literal:
		return kind == mex.LiteralKind
	case Identifier:
		return kind == mex.IdentKind
	case Lambda:
		return kind == mex.LambdaKind
	case Call:
		return kind == mex.CallKind
	case BinaryOp:
		return kind == mex.BinaryKind
	}
	return false
}

// Signature identifies a macro: its name and the ordered shapes of its
// parameters. The implicit leading context parameter of a macro declaration
// is not part of the signature and is never matched against call-site
// arguments.
type Signature struct {
	Name   string
	Params []ParameterShape
}

// NewSignature assembles a signature from a name and parameter shapes.
func NewSignature(name string, shapes ...ParameterShape) Signature {
	return Signature{Name: name, Params: shapes}
}

// declaredShapes is the fixed table mapping declared parameter type names of
// the macro declaration surface onto parameter shapes.
var declaredShapes = map[string]ParameterShape{
	"Expr":  Any,      // generic expression supertype
	"Lit":   Literal,  // literal/constant expression type
	"Ident": Identifier,
	"Fn":    Lambda,   // lambda/closure expression type
	"Call":  Call,     // call expression type
	"BinOp": BinaryOp,
}

// ContextType is the declared type name of the leading context parameter.
const ContextType = "Ctx"

// DeclaredSignature builds a signature from a macro declaration: a function
// whose first parameter denotes the context slot, with the remaining declared
// parameter types translated through the fixed shape table.
func DeclaredSignature(name string, paramTypes ...string) (Signature, error) {
	if len(paramTypes) == 0 || paramTypes[0] != ContextType {
		return Signature{}, fmt.Errorf("macro %s: first parameter must be the context parameter (%s)",
			name, ContextType)
	}
	shapes := make([]ParameterShape, 0, len(paramTypes)-1)
	for _, t := range paramTypes[1:] {
		shape, ok := declaredShapes[t]
		if !ok {
			return Signature{}, fmt.Errorf("macro %s: declared parameter type %q has no parameter shape",
				name, t)
		}
		shapes = append(shapes, shape)
	}
	return Signature{Name: name, Params: shapes}, nil
}

// Arity returns the declared parameter count, excluding the context
// parameter.
func (sig Signature) Arity() int {
	return len(sig.Params)
}

func (sig Signature) String() string {
	shapes := make([]string, len(sig.Params))
	for i, s := range sig.Params {
		shapes[i] = s.String()
	}
	return sig.Name + "(" + strings.Join(shapes, ", ") + ")"
}

// hash returns an identity hash over (name, shape sequence), used by the
// registry to detect duplicate registrations.
func (sig Signature) hash() (string, error) {
	return structhash.Hash(sig, 1)
}
