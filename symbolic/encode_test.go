package symbolic

import (
	stderrors "errors"
	"testing"

	"github.com/odelang/odebridge/errors"
	"github.com/odelang/odebridge/ir"
)

func TestEncodeLeaves(t *testing.T) {
	tests := []struct {
		ex     Ex
		want   ir.Node
		name   string
		policy ir.Normalize
	}{
		{Num{Val: 2.5}, ir.Const{Val: 2.5}, "number", ir.NormalizeFull},
		{Sym{Name: "x(t)"}, ir.Var{Name: "x"}, "annotated_symbol", ir.NormalizeFull},
		{Sym{Name: "sys₊x(t)"}, ir.Var{Name: "x"}, "qualified_full", ir.NormalizeFull},
		{Sym{Name: "sys₊x(t)"}, ir.Var{Name: "sys₊x"}, "qualified_partial", ir.NormalizePartial},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Encode(tc.ex, tc.policy)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if !ir.Equal(got, tc.want) {
				t.Errorf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestEncodeCall(t *testing.T) {
	ex := Apply("*", Num{Val: -0.1}, Sym{Name: "x(t)"})
	got, err := Encode(ex, ir.NormalizeFull)
	if err != nil {
		t.Fatal(err)
	}
	want := ir.Tree{Op: "times", Args: []ir.Node{ir.Const{Val: -0.1}, ir.Var{Name: "x"}}}
	if !ir.Equal(got, want) {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestEncodeCanonicalizesNested(t *testing.T) {
	// sqrt(log10(x)) -> root(log(x))
	ex := Apply("sqrt", Apply("log10", Sym{Name: "x(t)"}))
	got, err := Encode(ex, ir.NormalizeFull)
	if err != nil {
		t.Fatal(err)
	}
	want := ir.Tree{Op: "root", Args: []ir.Node{
		ir.Tree{Op: "log", Args: []ir.Node{ir.Var{Name: "x"}}},
	}}
	if !ir.Equal(got, want) {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestEncodeBareVariableWrapping(t *testing.T) {
	// The algebra layer wraps a bare variable as a zero-argument
	// operation whose operator is the symbol itself.
	ex := Call{Op: Sym{Name: "cell₊V(t)"}}
	got, err := Encode(ex, ir.NormalizeFull)
	if err != nil {
		t.Fatal(err)
	}
	if !ir.Equal(got, ir.Var{Name: "V"}) {
		t.Errorf("got %s, want Var V", got)
	}
}

func TestEncodeUnrecognized(t *testing.T) {
	tests := []struct {
		ex   Ex
		name string
	}{
		{Tok{Name: "+"}, "bare_token"},
		{Call{Op: Num{Val: 3}, Args: []Ex{Num{Val: 1}}}, "numeric_operator"},
		{nil, "nil"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Encode(tc.ex, ir.NormalizeFull)
			if err == nil {
				t.Fatal("expected unrecognized-node error")
			}
			if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseEncode, Kind: errors.KindUnrecognizedNode}) {
				t.Errorf("wrong error classification: %v", err)
			}
		})
	}
}

func TestEncodeUnrecognizedAbortsEquation(t *testing.T) {
	eq := Equation{
		LHS: Sym{Name: "y(t)"},
		RHS: Apply("+", Sym{Name: "x(t)"}, Tok{Name: "?"}),
	}
	if _, err := EncodeEquation(eq, ir.NormalizeFull); err == nil {
		t.Fatal("expected nested failure to abort the equation encode")
	}
}

func twoStateSource() *System {
	x := Sym{Name: "x(t)"}
	y := Sym{Name: "y(t)"}
	return &System{
		IV:  Variable{Name: "t"},
		Sts: []Variable{{Name: "x(t)", Val: 1.0}, {Name: "y(t)", Val: 0.0}},
		ODEs: []Equation{
			{LHS: D(x), RHS: Apply("*", Num{Val: -0.1}, x)},
			{LHS: D(y), RHS: Apply("-", x, y)},
		},
	}
}

func TestEncodeModelTwoState(t *testing.T) {
	doc, err := EncodeModel(twoStateSource(), ir.NormalizeFull)
	if err != nil {
		t.Fatal(err)
	}

	if doc.IV.Name != "t" {
		t.Errorf("iv = %q", doc.IV.Name)
	}
	if len(doc.Params) != 0 {
		t.Errorf("params = %+v, want empty", doc.Params)
	}
	if len(doc.States) != 2 || doc.States[0].Name != "x" || doc.States[1].Name != "y" {
		t.Fatalf("states = %+v", doc.States)
	}

	wantRHS := []ir.Node{
		ir.Tree{Op: "times", Args: []ir.Node{ir.Const{Val: -0.1}, ir.Var{Name: "x"}}},
		ir.Tree{Op: "minus", Args: []ir.Node{ir.Var{Name: "x"}, ir.Var{Name: "y"}}},
	}
	if len(doc.ODEs) != 2 {
		t.Fatalf("odes = %d", len(doc.ODEs))
	}
	for i, want := range wantRHS {
		if !ir.Equal(doc.ODEs[i].RHS, want) {
			t.Errorf("ode %d rhs = %s, want %s", i, doc.ODEs[i].RHS, want)
		}
		if doc.ODEs[i].DiffVar() != doc.States[i].Name {
			t.Errorf("ode %d lhs does not match state %q", i, doc.States[i].Name)
		}
	}
}

func TestEncodeModelParamDedup(t *testing.T) {
	// Two parameter occurrences sharing a normalized name collapse to
	// one entry, first-seen value retained.
	src := &System{
		IV: Variable{Name: "t"},
		Params: []Variable{
			{Name: "a₊k", Val: 3.0},
			{Name: "b₊k", Val: 9.0},
			{Name: "g", Val: 1.0},
		},
	}
	doc, err := EncodeModel(src, ir.NormalizeFull)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Params) != 2 {
		t.Fatalf("params = %+v, want 2 entries", doc.Params)
	}
	if doc.Params[0].Name != "k" || doc.Params[0].Val != 3.0 {
		t.Errorf("first param = %+v, want k=3 (first seen)", doc.Params[0])
	}
	if doc.Params[1].Name != "g" {
		t.Errorf("second param = %+v", doc.Params[1])
	}
}

func TestEncodeModelFromModelSource(t *testing.T) {
	m := &Model{Name: "decay", Doc: "exponential decay", Sys: *twoStateSource()}
	doc, err := EncodeModel(m, ir.NormalizeFull)
	if err != nil {
		t.Fatal(err)
	}
	bare, err := EncodeModel(twoStateSource(), ir.NormalizeFull)
	if err != nil {
		t.Fatal(err)
	}

	a, _ := doc.Encode()
	b, _ := bare.Encode()
	if string(a) != string(b) {
		t.Error("model metadata leaked into the wire document")
	}
}
