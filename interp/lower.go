package interp

import (
	"fmt"

	odebridge "github.com/odelang/odebridge"
	"github.com/odelang/odebridge/ir"
)

// instr is one three-address instruction: dst = fn(mem[x], mem[y]).
type instr struct {
	fn  opFunc
	op  string
	x   reg
	y   reg
	dst reg
}

// lowerer turns a model document into straight-line code over a frame.
type lowerer struct {
	frame *frame
	code  []instr
}

func (l *lowerer) emit(op string, fn opFunc, x, y, dst reg) {
	l.code = append(l.code, instr{fn: fn, op: op, x: x, y: y, dst: dst})
}

// mov copies a register. There is no dedicated move opcode; x + 0 does it.
func (l *lowerer) mov(src, dst reg) {
	if src == dst {
		return
	}
	l.emit("plus", binaryOps["plus"], src, regZero, dst)
}

const (
	regZero   reg = 0
	regOne    reg = 1
	regNegOne reg = 2
)

// lower compiles node and returns the register holding its value. Leaf
// nodes resolve to existing registers; interior nodes allocate temps,
// which the caller releases.
func (l *lowerer) lower(node ir.Node) (reg, error) {
	switch n := node.(type) {
	case ir.Const:
		switch n.Val {
		case 0:
			return regZero, nil
		case 1:
			return regOne, nil
		case -1:
			return regNegOne, nil
		}
		return l.frame.alloc(odebridge.KindConst, "", ptr(n.Val)), nil
	case ir.Var:
		r, ok := l.frame.findValue(n.Name)
		if !ok {
			return 0, fmt.Errorf("cannot find reg by name: %s", n.Name)
		}
		return r, nil
	case ir.Tree:
		return l.lowerTree(n)
	}
	return 0, fmt.Errorf("unrecognized node: %s", node)
}

func (l *lowerer) lowerTree(t ir.Tree) (reg, error) {
	switch len(t.Args) {
	case 1:
		return l.lowerUnary(t.Op, t.Args[0])
	case 2:
		if t.Op == "plus" || t.Op == "times" {
			return l.lowerChain(t.Op, t.Args)
		}
		return l.lowerBinary(t.Op, t.Args[0], t.Args[1])
	case 3:
		if t.Op == "ifelse" {
			return l.lowerIfElse(t.Args[0], t.Args[1], t.Args[2])
		}
		fallthrough
	default:
		if len(t.Args) > 0 && (t.Op == "plus" || t.Op == "times") {
			return l.lowerChain(t.Op, t.Args)
		}
		return 0, fmt.Errorf("missing op: %s/%d", t.Op, len(t.Args))
	}
}

func (l *lowerer) lowerUnary(op string, arg ir.Node) (reg, error) {
	// Unary minus is negation; every other name hits the table directly.
	name := op
	if op == "minus" {
		name = "neg"
	}
	fn, ok := unaryOps[name]
	if !ok {
		return 0, fmt.Errorf("missing op: %s/1", op)
	}

	x, err := l.lower(arg)
	if err != nil {
		return 0, err
	}
	l.frame.free(x)
	dst := l.frame.alloc(odebridge.KindTemp, "", nil)
	l.emit(name, fn, x, regZero, dst)
	return dst, nil
}

func (l *lowerer) lowerBinary(op string, a, b ir.Node) (reg, error) {
	fn, ok := binaryOps[op]
	if !ok {
		return 0, fmt.Errorf("missing op: %s/2", op)
	}

	x, err := l.lower(a)
	if err != nil {
		return 0, err
	}
	y, err := l.lower(b)
	if err != nil {
		return 0, err
	}
	l.frame.free(x)
	l.frame.free(y)
	dst := l.frame.alloc(odebridge.KindTemp, "", nil)
	l.emit(op, fn, x, y, dst)
	return dst, nil
}

// lowerChain folds an n-ary plus or times left to right.
func (l *lowerer) lowerChain(op string, args []ir.Node) (reg, error) {
	fn := binaryOps[op]

	acc, err := l.lower(args[0])
	if err != nil {
		return 0, err
	}
	for _, a := range args[1:] {
		y, err := l.lower(a)
		if err != nil {
			return 0, err
		}
		l.frame.free(acc)
		l.frame.free(y)
		dst := l.frame.alloc(odebridge.KindTemp, "", nil)
		l.emit(op, fn, acc, y, dst)
		acc = dst
	}
	return acc, nil
}

// lowerIfElse compiles ifelse(cond, a, b) without branches:
// if_pos(cond, a) + if_neg(cond, b). Both arms evaluate eagerly.
func (l *lowerer) lowerIfElse(cond, a, b ir.Node) (reg, error) {
	c, err := l.lower(cond)
	if err != nil {
		return 0, err
	}
	x, err := l.lower(a)
	if err != nil {
		return 0, err
	}
	y, err := l.lower(b)
	if err != nil {
		return 0, err
	}

	l.frame.free(x)
	pos := l.frame.alloc(odebridge.KindTemp, "", nil)
	l.emit("if_pos", binaryOps["if_pos"], c, x, pos)

	l.frame.free(y)
	l.frame.free(c)
	neg := l.frame.alloc(odebridge.KindTemp, "", nil)
	l.emit("if_neg", binaryOps["if_neg"], c, y, neg)

	l.frame.free(pos)
	l.frame.free(neg)
	dst := l.frame.alloc(odebridge.KindTemp, "", nil)
	l.emit("plus", binaryOps["plus"], pos, neg, dst)
	return dst, nil
}

// lowerInto compiles an expression and lands the result in dst.
func (l *lowerer) lowerInto(rhs ir.Node, dst reg) error {
	r, err := l.lower(rhs)
	if err != nil {
		return err
	}
	l.mov(r, dst)
	l.frame.free(r)
	return nil
}

// compile builds the full program for a document.
//
// Register layout follows the fixed order the descriptor protocol
// promises: constants, independent variable, states, derivatives,
// parameters, then definition and scratch registers. Algebraic
// definitions lower first so later equations can reference them, then
// observed, then the differential equations.
func compile(doc *ir.Document) (*program, error) {
	f := newFrame()
	l := &lowerer{frame: f}

	f.alloc(odebridge.KindIndependent, doc.IV.Name, ptr(doc.IV.Val))
	for _, s := range doc.States {
		f.alloc(odebridge.KindState, s.Name, ptr(s.Val))
	}
	diffs := make(map[string]reg, len(doc.States))
	for _, s := range doc.States {
		diffs[s.Name] = f.alloc(odebridge.KindDiff, s.Name, nil)
	}
	for _, p := range doc.Params {
		f.alloc(odebridge.KindParam, p.Name, ptr(p.Val))
	}

	for _, eq := range doc.Algs {
		name := eq.DefVar()
		if name == "" {
			return nil, fmt.Errorf("algebraic lhs is not a variable: %s", eq.LHS)
		}
		dst := f.alloc(odebridge.KindAlgebraic, name, nil)
		if err := l.lowerInto(eq.RHS, dst); err != nil {
			return nil, err
		}
	}

	for _, eq := range doc.Obs {
		name := eq.DefVar()
		if name == "" {
			return nil, fmt.Errorf("observed lhs is not a variable: %s", eq.LHS)
		}
		dst := f.alloc(odebridge.KindObserved, name, nil)
		if err := l.lowerInto(eq.RHS, dst); err != nil {
			return nil, err
		}
	}

	for _, eq := range doc.ODEs {
		name := eq.DiffVar()
		if name == "" {
			return nil, fmt.Errorf("differential lhs is not a derivative: %s", eq.LHS)
		}
		dst, ok := diffs[name]
		if !ok {
			return nil, fmt.Errorf("cannot find reg by name: %s", name)
		}
		if err := l.lowerInto(eq.RHS, dst); err != nil {
			return nil, err
		}
	}

	return &program{frame: f, code: l.code, mem: f.image()}, nil
}
