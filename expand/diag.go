package expand

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2024 Janek Kallfass <janek@kallfass.io>

*/

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/kallfass/mex"
	"github.com/kallfass/mex/macro"
)

// Diagnostic is one collected expansion error, formatted as
//
//	<file>:<line>:<column>: <macroName>: <message>
//
type Diagnostic struct {
	Unit    string
	Macro   string
	Loc     mex.Location
	Message string
}

func (d Diagnostic) String() string {
	if d.Macro == "" {
		return fmt.Sprintf("%s: %s", d.Loc, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Loc, d.Macro, d.Message)
}

// Diagnostics is a sink for expansion errors. Writes are serialized, so
// concurrently expanding compilation units may share one sink without
// interleaving.
type Diagnostics struct {
	mu      sync.Mutex
	entries []Diagnostic
}

// NewDiagnostics creates an empty diagnostics sink.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{}
}

// report classifies an expansion error and appends it to the sink.
func (d *Diagnostics) report(unit string, err error) {
	diag := Diagnostic{Unit: unit, Message: err.Error()}
	var exec *macro.ExecutionError
	var limit *RecursionLimitError
	switch {
	case errors.As(err, &exec):
		diag.Macro = exec.Macro
		diag.Loc = exec.Loc
		diag.Message = exec.Err.Error()
	case errors.As(err, &limit):
		diag.Macro = limit.Macro
		diag.Loc = limit.Loc
		diag.Message = fmt.Sprintf("recursive expansion exceeds depth limit %d", limit.Limit)
	}
	d.mu.Lock()
	d.entries = append(d.entries, diag)
	d.mu.Unlock()
	tracer().Errorf("unit %s: %s", unit, diag)
}

// Count returns the number of collected diagnostics.
func (d *Diagnostics) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

// Entries returns a copy of all collected diagnostics, in reporting order.
func (d *Diagnostics) Entries() []Diagnostic {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Diagnostic{}, d.entries...)
}

// WriteTo prints all collected diagnostics, one per line.
func (d *Diagnostics) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	for _, diag := range d.Entries() {
		b.WriteString(diag.String())
		b.WriteByte('\n')
	}
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}
