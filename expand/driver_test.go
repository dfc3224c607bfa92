package expand

import (
	"errors"
	"fmt"
	"testing"

	"github.com/kallfass/mex"
	"github.com/kallfass/mex/lang"
	"github.com/kallfass/mex/macro"
	"github.com/kallfass/mex/template"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// warnRegistry builds a frozen registry holding a compile-time assertion
// macro: warn(cond, msg) compiles to nothing unless the 'assertions.enabled'
// flag is set, in which case it expands to a guarded println.
func warnRegistry(t *testing.T) *macro.Registry {
	tmpl := template.Must(`!($cond) && println(%loc + ": " + $msg)`)
	sig, err := macro.DeclaredSignature("warn", macro.ContextType, "Expr", "Expr")
	if err != nil {
		t.Fatal(err)
	}
	reg := macro.NewRegistry()
	err = reg.Register(sig, func(ctx *macro.Context, args []*mex.Node) (macro.Replacement, error) {
		if !ctx.Config().Bool("assertions.enabled") {
			return macro.Delete(), nil
		}
		result, err := tmpl.Materialize(
			map[string]*mex.Node{"cond": args[0], "msg": args[1]},
			map[string]interface{}{"loc": ctx.Location().String()},
		)
		if err != nil {
			return macro.Replacement{}, err
		}
		return macro.Replace(result), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	reg.Freeze()
	return reg
}

func parseUnit(t *testing.T, name, input string) Unit {
	root, err := lang.Parse(name, input)
	if err != nil {
		t.Fatal(err)
	}
	return Unit{Name: name, Root: root}
}

func TestExpandDeletesDisabledAssertion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mex.expand")
	defer teardown()
	//
	reg := warnRegistry(t)
	unit := parseUnit(t, "unit.mx", `warn(age >= 18, "legal age")`)
	// 'assertions.enabled' not set: the call site compiles to nothing
	root, err := Expand(unit, reg)
	if err != nil {
		t.Fatal(err)
	}
	if root != nil {
		t.Errorf("expected the call site to be deleted, got %s", root)
	}
}

func TestExpandDeletesNestedCallSite(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mex.expand")
	defer teardown()
	//
	reg := warnRegistry(t)
	unit := parseUnit(t, "unit.mx", `run(warn(ok, "msg"), cleanup)`)
	root, err := Expand(unit, reg)
	if err != nil {
		t.Fatal(err)
	}
	if root.String() != "(run cleanup)" {
		t.Errorf("expected deleted argument to vanish from the call, got %s", root)
	}
}

func TestExpandEnabledAssertion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mex.expand")
	defer teardown()
	//
	reg := warnRegistry(t)
	unit := parseUnit(t, "unit.mx", `warn(age >= 18, "legal age")`)
	callLoc := unit.Root.Location()
	root, err := Expand(unit, reg, WithConfig(map[string]string{"assertions.enabled": "true"}))
	if err != nil {
		t.Fatal(err)
	}
	expected, err := lang.Parse("expected.mx", `!(age >= 18) && println("unit.mx:1:1" + ": " + "legal age")`)
	if err != nil {
		t.Fatal(err)
	}
	if !root.Equal(expected) {
		t.Errorf("expansion produced %s, expected %s", root, expected)
	}
	if root.Location() != callLoc {
		t.Errorf("expansion result should carry the call-site location, has %s", root.Location())
	}
	// captured call-site syntax keeps its original location
	captured := root.Children[0].Children[0] // the (>= age 18) subtree
	if captured.Location().StartColumn != 6 {
		t.Errorf("captured syntax lost its parsed location: %s", captured.Location())
	}
}

func TestExpandLeavesUnmatchedCallsAlone(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mex.expand")
	defer teardown()
	//
	reg := warnRegistry(t)
	// wrong name and wrong arity: both fall through silently
	unit := parseUnit(t, "unit.mx", `log(warn(a), x + 1)`)
	root, err := Expand(unit, reg)
	if err != nil {
		t.Fatal(err)
	}
	if root.String() != "(log (warn a) (+ x 1))" {
		t.Errorf("unmatched calls must be left for later phases, got %s", root)
	}
}

func TestExpandRescansEmittedMacroCalls(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mex.expand")
	defer teardown()
	//
	reg := macro.NewRegistry()
	outer, _ := macro.DeclaredSignature("outer", macro.ContextType)
	reg.Register(outer, func(ctx *macro.Context, args []*mex.Node) (macro.Replacement, error) {
		return macro.Replace(mex.Binary("+", mex.Call("inner"), mex.Call("inner"))), nil
	})
	inner, _ := macro.DeclaredSignature("inner", macro.ContextType)
	reg.Register(inner, func(ctx *macro.Context, args []*mex.Node) (macro.Replacement, error) {
		return macro.Replace(mex.Lit(1)), nil
	})
	reg.Freeze()
	//
	unit := parseUnit(t, "unit.mx", "outer()")
	root, err := Expand(unit, reg)
	if err != nil {
		t.Fatal(err)
	}
	if root.String() != "(+ 1 1)" {
		t.Errorf("emitted macro calls must be expanded too, got %s", root)
	}
}

func TestExpandRecursionLimit(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mex.expand")
	defer teardown()
	//
	reg := macro.NewRegistry()
	sig, _ := macro.DeclaredSignature("loop", macro.ContextType)
	reg.Register(sig, func(ctx *macro.Context, args []*mex.Node) (macro.Replacement, error) {
		return macro.Replace(mex.Call("loop")), nil
	})
	reg.Freeze()
	//
	diags := NewDiagnostics()
	unit := parseUnit(t, "unit.mx", "loop()")
	_, err := Expand(unit, reg, MaxDepth(8), WithDiagnostics(diags))
	var limit *RecursionLimitError
	if !errors.As(err, &limit) {
		t.Fatalf("expected RecursionLimitError, got %v", err)
	}
	if limit.Macro != "loop" || limit.Limit != 8 {
		t.Errorf("unexpected limit error: %v", limit)
	}
	if limit.Loc.String() != "unit.mx:1:1" {
		t.Errorf("limit error should point at the originating call site, points at %s", limit.Loc)
	}
	if diags.Count() != 1 {
		t.Errorf("expected 1 diagnostic, got %d", diags.Count())
	}
}

func TestExpandReportsExecutionErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mex.expand")
	defer teardown()
	//
	reg := macro.NewRegistry()
	sig, _ := macro.DeclaredSignature("check", macro.ContextType, "Expr")
	reg.Register(sig, func(ctx *macro.Context, args []*mex.Node) (macro.Replacement, error) {
		return macro.Replacement{}, fmt.Errorf("threshold must be constant")
	})
	reg.Freeze()
	//
	diags := NewDiagnostics()
	unit := parseUnit(t, "unit.mx", "check(limit)")
	_, err := Expand(unit, reg, WithDiagnostics(diags))
	if err == nil {
		t.Fatal("expected the failing macro to fail the unit")
	}
	entries := diags.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(entries))
	}
	if entries[0].String() != "unit.mx:1:1: check: threshold must be constant" {
		t.Errorf("unexpected diagnostic format: %s", entries[0])
	}
}

func TestExpandRequiresFrozenRegistry(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mex.expand")
	defer teardown()
	//
	reg := macro.NewRegistry()
	unit := parseUnit(t, "unit.mx", "x + 1")
	if _, err := Expand(unit, reg); err == nil {
		t.Errorf("expected expansion against an unfrozen registry to fail")
	}
}

func TestExpandScopeLookup(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mex.expand")
	defer teardown()
	//
	reg := macro.NewRegistry()
	sig, _ := macro.DeclaredSignature("probe", macro.ContextType, "Ident")
	reg.Register(sig, func(ctx *macro.Context, args []*mex.Node) (macro.Replacement, error) {
		if _, bound := ctx.Scope().Lookup(args[0].Name); !bound {
			return macro.Replacement{}, fmt.Errorf("%s is not in scope", args[0].Name)
		}
		return macro.Replace(mex.Lit(true)), nil
	})
	reg.Freeze()
	//
	unit := parseUnit(t, "unit.mx", "apply { x -> probe(x) }")
	root, err := Expand(unit, reg)
	if err != nil {
		t.Fatal(err)
	}
	if root.String() != "(apply (lambda (x) true))" {
		t.Errorf("unexpected tree: %s", root)
	}
	// outside any lambda, nothing is bound
	unit = parseUnit(t, "unit.mx", "probe(x)")
	if _, err := Expand(unit, reg); err == nil {
		t.Errorf("expected lookup of unbound name to fail the macro")
	}
}

func TestExpandIsDeterministic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mex.expand")
	defer teardown()
	//
	reg := warnRegistry(t)
	cfg := WithConfig(map[string]string{"assertions.enabled": "true"})
	first, err := Expand(parseUnit(t, "unit.mx", `warn(a, "m") && f(b)`), reg, cfg)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Expand(parseUnit(t, "unit.mx", `warn(a, "m") && f(b)`), reg, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !first.Equal(second) {
		t.Errorf("same input and registry must expand identically: %s vs %s", first, second)
	}
}

func TestRunExpandsUnitsIndependently(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mex.expand")
	defer teardown()
	//
	reg := macro.NewRegistry()
	sig, _ := macro.DeclaredSignature("fail", macro.ContextType)
	reg.Register(sig, func(ctx *macro.Context, args []*mex.Node) (macro.Replacement, error) {
		return macro.Replacement{}, fmt.Errorf("refusing")
	})
	reg.Freeze()
	//
	units := []Unit{
		parseUnit(t, "a.mx", "x + 1"),
		parseUnit(t, "b.mx", "fail()"),
		parseUnit(t, "c.mx", "g(y)"),
	}
	diags := NewDiagnostics()
	results, ok := Run(units, reg, WithDiagnostics(diags))
	if ok {
		t.Errorf("expected the run to report failure")
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("a failing unit must not affect its siblings")
	}
	if results[1].Err == nil {
		t.Errorf("expected unit b.mx to fail")
	}
	if diags.Count() != 1 {
		t.Errorf("expected 1 diagnostic across the run, got %d", diags.Count())
	}
}
