package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is one node of an expression tree in the engine's intermediate
// representation. The variant set is closed: Const, Var, Tree.
type Node interface {
	fmt.Stringer
	isNode()
}

// Const is a numeric literal.
type Const struct {
	Val float64
}

// Var is a reference to a register by normalized identifier.
type Var struct {
	Name string
}

// Tree is an operator applied to an ordered argument list. Op is the
// engine's canonical operator name. Arity is not validated here; the
// engine rejects malformed arity at compile time.
type Tree struct {
	Op   string
	Args []Node
}

func (Const) isNode() {}
func (Var) isNode()   {}
func (Tree) isNode()  {}

func (c Const) String() string {
	return strconv.FormatFloat(c.Val, 'g', -1, 64)
}

func (v Var) String() string {
	return v.Name
}

func (t Tree) String() string {
	var b strings.Builder
	b.WriteString(t.Op)
	b.WriteByte('(')
	for i, a := range t.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Equal reports structural equality of two expression trees: same variant
// tags, same operator strings, same argument order, bit-identical
// constants.
func Equal(a, b Node) bool {
	switch x := a.(type) {
	case Const:
		y, ok := b.(Const)
		return ok && x.Val == y.Val
	case Var:
		y, ok := b.(Var)
		return ok && x.Name == y.Name
	case Tree:
		y, ok := b.(Tree)
		if !ok || x.Op != y.Op || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Equation pairs a left-hand side with a right-hand side. Differential
// equations put the state's derivative placeholder on the left; observed
// equations put the defined variable there.
type Equation struct {
	LHS Node `json:"lhs"`
	RHS Node `json:"rhs"`
}

// DiffVar extracts the differentiated state name from the left-hand side
// of a differential equation, or "" if the side is not a derivative
// placeholder.
func (eq Equation) DiffVar() string {
	t, ok := eq.LHS.(Tree)
	if !ok || t.Op != "Differential" || len(t.Args) == 0 {
		return ""
	}
	if v, ok := t.Args[0].(Var); ok {
		return v.Name
	}
	return ""
}

// DefVar extracts the defined variable name from the left-hand side of an
// algebraic or observed equation, or "" if the side is not a bare
// variable.
func (eq Equation) DefVar() string {
	if v, ok := eq.LHS.(Var); ok {
		return v.Name
	}
	return ""
}

// Variable is a named value in the model's variable tables.
type Variable struct {
	Name string  `json:"name"`
	Val  float64 `json:"val"`
}

// Document is the serializable model form consumed by the engine.
//
// Params is deduplicated by identifier. States is ordered: register
// offsets discovered after compilation depend on this order, so it must
// never be re-sorted.
type Document struct {
	IV     Variable   `json:"iv"`
	Params []Variable `json:"params"`
	States []Variable `json:"states"`
	Algs   []Equation `json:"algs"`
	ODEs   []Equation `json:"odes"`
	Obs    []Equation `json:"obs"`
}
