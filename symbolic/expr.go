package symbolic

import (
	"strconv"
	"strings"
)

// Ex is a node of a source-side symbolic expression tree, as handed over
// by the algebra layer. The bridge never mutates these trees.
type Ex interface {
	String() string
	isEx()
}

// Sym is a leaf symbolic identifier. The name is the raw qualified form,
// annotations included, e.g. "cell₊V(t)".
type Sym struct {
	Name string
}

// Num is a numeric literal.
type Num struct {
	Val float64
}

// Tok is a primitive operator or function token, e.g. "+" or "sqrt".
type Tok struct {
	Name string
}

// Call is an operation application. Op is usually a Tok; the algebra
// layer also produces calls whose operator is itself a Sym, which is how
// it wraps a bare time-dependent variable as a zero-argument operation.
type Call struct {
	Op   Ex
	Args []Ex
}

func (Sym) isEx()  {}
func (Num) isEx()  {}
func (Tok) isEx()  {}
func (Call) isEx() {}

func (s Sym) String() string { return s.Name }
func (t Tok) String() string { return t.Name }

func (n Num) String() string {
	return strconv.FormatFloat(n.Val, 'g', -1, 64)
}

func (c Call) String() string {
	var b strings.Builder
	if c.Op != nil {
		b.WriteString(c.Op.String())
	}
	b.WriteByte('(')
	for i, a := range c.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Apply builds a Call of a primitive token over args. Convenience for
// constructing equations in code and tests.
func Apply(op string, args ...Ex) Call {
	return Call{Op: Tok{Name: op}, Args: args}
}

// D builds the derivative placeholder d(state)/d(iv) used on the left of
// a differential equation.
func D(state Ex) Call {
	return Call{Op: Tok{Name: "Differential"}, Args: []Ex{state}}
}
