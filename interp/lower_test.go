package interp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	odebridge "github.com/odelang/odebridge"
	"github.com/odelang/odebridge/ir"
)

// evalObserved compiles a single observed definition over state x and
// returns its value for the given x.
func evalObserved(t *testing.T, rhs ir.Node, x float64) float64 {
	t.Helper()
	doc := &ir.Document{
		IV:     ir.Variable{Name: "t"},
		States: []ir.Variable{{Name: "x", Val: x}},
		Obs: []ir.Equation{
			{LHS: ir.Var{Name: "w"}, RHS: rhs},
		},
	}
	prog, err := compile(doc)
	require.NoError(t, err)

	mem := append([]float64(nil), prog.mem...)
	prog.exec(mem)

	r, ok := prog.frame.find(odebridge.KindObserved, "w")
	require.True(t, ok)
	return mem[r]
}

func TestLowerOperators(t *testing.T) {
	v := func() ir.Node { return ir.Var{Name: "x"} }
	c := func(val float64) ir.Node { return ir.Const{Val: val} }

	cases := []struct {
		name string
		rhs  ir.Node
		x    float64
		want float64
	}{
		{"negate", neg(v()), 2.5, -2.5},
		{"power", bin("power", v(), c(3)), 2, 8},
		{"rem", bin("rem", v(), c(3)), 7, 1},
		{"divide", bin("divide", c(1), v()), 4, 0.25},
		{"root", ir.Tree{Op: "root", Args: []ir.Node{v()}}, 9, 3},
		{"ln", ir.Tree{Op: "ln", Args: []ir.Node{v()}}, math.E, 1},
		{"log base 10", ir.Tree{Op: "log", Args: []ir.Node{v()}}, 100, 2},
		{"ceiling", ir.Tree{Op: "ceiling", Args: []ir.Node{v()}}, 1.2, 2},
		{"gt true is plus one", bin("gt", v(), c(0)), 5, 1},
		{"gt false is minus one", bin("gt", v(), c(0)), -5, -1},
		{"eq", bin("eq", v(), c(3)), 3, 1},
		{"and over signs", bin("and", bin("gt", v(), c(0)), bin("lt", v(), c(10))), 5, 1},
		{"xor over signs", bin("xor", bin("gt", v(), c(0)), bin("gt", v(), c(-10))), 5, -1},
		{"nary plus", ir.Tree{Op: "plus", Args: []ir.Node{v(), v(), c(1), c(2)}}, 3, 9},
		{"nary times", ir.Tree{Op: "times", Args: []ir.Node{v(), c(2), c(3)}}, 4, 24},
		{"ifelse positive arm", ir.Tree{Op: "ifelse", Args: []ir.Node{bin("gt", v(), c(0)), c(10), c(20)}}, 1, 10},
		{"ifelse negative arm", ir.Tree{Op: "ifelse", Args: []ir.Node{bin("gt", v(), c(0)), c(10), c(20)}}, -1, 20},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := evalObserved(t, tc.rhs, tc.x)
			assert.InDelta(t, tc.want, got, 1e-12)
		})
	}
}

func TestTempRecycling(t *testing.T) {
	// A deep left-leaning sum should reuse scratch registers instead of
	// allocating one per interior node.
	expr := ir.Node(ir.Var{Name: "x"})
	for i := 0; i < 50; i++ {
		expr = bin("plus", expr, ir.Const{Val: 1})
	}
	doc := &ir.Document{
		IV:     ir.Variable{Name: "t"},
		States: []ir.Variable{{Name: "x", Val: 0}},
		Obs:    []ir.Equation{{LHS: ir.Var{Name: "w"}, RHS: expr}},
	}
	prog, err := compile(doc)
	require.NoError(t, err)

	temps := prog.frame.count(odebridge.KindTemp)
	assert.LessOrEqual(t, temps, 4, "temps = %d", temps)

	mem := append([]float64(nil), prog.mem...)
	prog.exec(mem)
	r, _ := prog.frame.find(odebridge.KindObserved, "w")
	assert.Equal(t, 50.0, mem[r])
}

func TestConstPool(t *testing.T) {
	// 0, 1 and -1 resolve to the fixed prefix without new const slots.
	doc := &ir.Document{
		IV:     ir.Variable{Name: "t"},
		States: []ir.Variable{{Name: "x", Val: 0}},
		Obs: []ir.Equation{
			{LHS: ir.Var{Name: "w"}, RHS: ir.Tree{Op: "plus", Args: []ir.Node{
				ir.Const{Val: 0}, ir.Const{Val: 1}, ir.Const{Val: -1},
			}}},
		},
	}
	prog, err := compile(doc)
	require.NoError(t, err)
	assert.Equal(t, 4, prog.frame.count(odebridge.KindConst))
}

func TestBadEquationShapes(t *testing.T) {
	t.Run("ode lhs not a derivative", func(t *testing.T) {
		doc := &ir.Document{
			IV:     ir.Variable{Name: "t"},
			States: []ir.Variable{{Name: "x", Val: 0}},
			ODEs:   []ir.Equation{{LHS: ir.Var{Name: "x"}, RHS: ir.Const{Val: 1}}},
		}
		_, err := compile(doc)
		require.Error(t, err)
	})

	t.Run("derivative of unknown state", func(t *testing.T) {
		doc := &ir.Document{
			IV:   ir.Variable{Name: "t"},
			ODEs: []ir.Equation{{LHS: d("x"), RHS: ir.Const{Val: 1}}},
		}
		_, err := compile(doc)
		require.Error(t, err)
	})

	t.Run("observed lhs not a variable", func(t *testing.T) {
		doc := &ir.Document{
			IV:  ir.Variable{Name: "t"},
			Obs: []ir.Equation{{LHS: ir.Const{Val: 2}, RHS: ir.Const{Val: 1}}},
		}
		_, err := compile(doc)
		require.Error(t, err)
	})
}
