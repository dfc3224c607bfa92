package template

import (
	"errors"
	"testing"

	"github.com/kallfass/mex"
	"github.com/kallfass/mex/lang"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestParseCollectsHoles(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mex.template")
	defer teardown()
	//
	tmpl, err := Parse(`!($cond) && println(%loc + ": " + $msg)`)
	if err != nil {
		t.Fatal(err)
	}
	if len(tmpl.Holes()) != 3 {
		t.Errorf("expected 3 holes, got %v", tmpl.Holes())
	}
}

func TestParseRejectsConflictingHoleKinds(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mex.template")
	defer teardown()
	//
	if _, err := Parse(`$x + %x`); err == nil {
		t.Errorf("expected a hole name used with both splice kinds to fail")
	}
}

func TestMaterialize(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mex.template")
	defer teardown()
	//
	tmpl := Must(`!($cond) && println(%loc + ": " + $msg)`)
	cond, err := lang.Parse("unit.mx", "age >= 18")
	if err != nil {
		t.Fatal(err)
	}
	msg, err := lang.Parse("unit.mx", `"legal age"`)
	if err != nil {
		t.Fatal(err)
	}
	result, err := tmpl.Materialize(
		map[string]*mex.Node{"cond": cond, "msg": msg},
		map[string]interface{}{"loc": "unit.mx:1:1"},
	)
	if err != nil {
		t.Fatal(err)
	}
	expected := `(&& (! (>= age 18)) (println (+ (+ "unit.mx:1:1" ": ") "legal age")))`
	if result.String() != expected {
		t.Errorf("materialized to %s, expected %s", result, expected)
	}
}

// Captured subtrees are embedded, never re-parsed: internal structure of the
// bound expression survives materialization unchanged.
func TestMaterializePreservesCapturedStructure(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mex.template")
	defer teardown()
	//
	tmpl := Must(`guard($e)`)
	captured, err := lang.Parse("unit.mx", "(1 + 2) * f(x)")
	if err != nil {
		t.Fatal(err)
	}
	result, err := tmpl.Materialize(map[string]*mex.Node{"e": captured}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Children[0].Equal(captured) {
		t.Errorf("captured syntax was restructured: %s", result.Children[0])
	}
}

// Templates nest: a materialization result may be spliced into another
// template.
func TestMaterializeNesting(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mex.template")
	defer teardown()
	//
	inner, err := Must(`$x > 0`).Materialize(map[string]*mex.Node{"x": mex.Id("n")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	outer, err := Must(`check($cond)`).Materialize(map[string]*mex.Node{"cond": inner}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if outer.String() != "(check (> n 0))" {
		t.Errorf("unexpected tree: %s", outer)
	}
}

func TestMaterializeIsRepeatable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mex.template")
	defer teardown()
	//
	tmpl := Must(`$a + $a`)
	bound := map[string]*mex.Node{"a": mex.Id("x")}
	first, err := tmpl.Materialize(bound, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := tmpl.Materialize(bound, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !first.Equal(second) {
		t.Errorf("materializing twice with identical bindings differed: %s vs %s", first, second)
	}
	// no aliasing between materializations or with the binding
	first.Children[0].Name = "y"
	if second.Children[0].Name != "x" || bound["a"].Name != "x" {
		t.Errorf("materialized trees alias each other or the binding")
	}
}

func TestMaterializeUnresolvedHole(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mex.template")
	defer teardown()
	//
	tmpl := Must(`$a + %b`)
	_, err := tmpl.Materialize(map[string]*mex.Node{"a": mex.Id("x")}, nil)
	var unresolved *UnresolvedHoleError
	if !errors.As(err, &unresolved) {
		t.Fatalf("expected UnresolvedHoleError, got %v", err)
	}
	if unresolved.Hole != "b" {
		t.Errorf("expected hole b to be reported, got %q", unresolved.Hole)
	}
	if unresolved.Error() != "unresolved template hole %b" {
		t.Errorf("unexpected message: %s", unresolved.Error())
	}
}

func TestMaterializeValueSplice(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mex.template")
	defer teardown()
	//
	tmpl := Must(`limit(%n)`)
	result, err := tmpl.Materialize(nil, map[string]interface{}{"n": 42})
	if err != nil {
		t.Fatal(err)
	}
	arg := result.Children[0]
	if arg.Kind != mex.LiteralKind {
		t.Fatalf("value splice should produce a literal node, got %s", arg.Kind)
	}
	if v, ok := arg.Value.(float64); !ok || v != 42 {
		t.Errorf("expected numeric literal 42, got %v", arg.Value)
	}
	// a value without literal representation fails materialization
	if _, err := tmpl.Materialize(nil, map[string]interface{}{"n": struct{}{}}); err == nil {
		t.Errorf("expected a non-representable value to fail")
	}
}

func TestMaterializedTreesAreSynthetic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mex.template")
	defer teardown()
	//
	tmpl := Must(`f(%v)`)
	result, err := tmpl.Materialize(nil, map[string]interface{}{"v": true})
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsSynthetic() || !result.Children[0].IsSynthetic() {
		t.Errorf("materialized nodes must be synthetic until the driver stamps them")
	}
}
