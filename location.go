package mex

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2024 Janek Kallfass <janek@kallfass.io>

*/

import "fmt"

// Location identifies a region of a source file, for diagnostics. The parser
// assigns a location to every node it produces; locations are immutable
// thereafter. Lines and columns count from 1.
type Location struct {
	File        string
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
}

// Synthetic is the no-location value carried by nodes a macro constructed
// programmatically.
var Synthetic = Location{}

// IsSynthetic is true for the zero location.
func (loc Location) IsSynthetic() bool {
	return loc == Location{}
}

// Extend returns the smallest location covering both loc and other, for
// composite nodes spanning several tokens. Synthetic inputs are ignored.
func (loc Location) Extend(other Location) Location {
	if loc.IsSynthetic() {
		return other
	}
	if other.IsSynthetic() {
		return loc
	}
	if other.StartLine < loc.StartLine ||
		(other.StartLine == loc.StartLine && other.StartColumn < loc.StartColumn) {
		loc.StartLine, loc.StartColumn = other.StartLine, other.StartColumn
	}
	if other.EndLine > loc.EndLine ||
		(other.EndLine == loc.EndLine && other.EndColumn > loc.EndColumn) {
		loc.EndLine, loc.EndColumn = other.EndLine, other.EndColumn
	}
	return loc
}

// String formats a location as "file:line:column", the prefix of every
// diagnostic message.
func (loc Location) String() string {
	if loc.IsSynthetic() {
		return "<synthetic>"
	}
	return fmt.Sprintf("%s:%d:%d", loc.File, loc.StartLine, loc.StartColumn)
}

// Locate returns the source location of a node. It is the read side of the
// location tracker; the write side is Node.At, used by the parser only.
func Locate(n *Node) Location {
	if n == nil {
		return Synthetic
	}
	return n.loc
}

// Stamp walks a subtree and assigns loc to every synthetic node. Nodes with
// parser-assigned locations are left unchanged, so syntax captured from the
// call site keeps pointing at its original source region. The driver stamps
// every expansion result with the call-site location; a macro deliberately
// constructing a node with a synthetic span must do so outside of the
// replacement it returns.
func Stamp(n *Node, loc Location) {
	if n == nil || loc.IsSynthetic() {
		return
	}
	if n.loc.IsSynthetic() {
		n.loc = loc
	}
	for _, ch := range n.Children {
		Stamp(ch, loc)
	}
}
