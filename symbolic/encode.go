package symbolic

import (
	"github.com/odelang/odebridge/errors"
	"github.com/odelang/odebridge/ir"
)

// Encode converts a symbolic expression tree into IR under the given
// normalization policy. The input is not mutated. An expression shape
// outside the known variants aborts the whole encode with an
// unrecognized-node error carrying the node's textual representation.
func Encode(ex Ex, policy ir.Normalize) (ir.Node, error) {
	switch n := ex.(type) {
	case Call:
		switch op := n.Op.(type) {
		case Sym:
			// A call whose operator is a symbolic identifier is the
			// algebra layer wrapping a bare variable as a
			// zero-argument operation. The operator is the value.
			return Encode(op, policy)
		case Tok:
			args := make([]ir.Node, len(n.Args))
			for i, a := range n.Args {
				enc, err := Encode(a, policy)
				if err != nil {
					return nil, err
				}
				args[i] = enc
			}
			return ir.Tree{
				Op:   ir.CanonicalOp(policy.Apply(op.Name)),
				Args: args,
			}, nil
		default:
			return nil, errors.UnrecognizedNode(n.String())
		}
	case Sym:
		return ir.Var{Name: policy.Apply(n.Name)}, nil
	case Num:
		return ir.Const{Val: n.Val}, nil
	case Tok:
		// A bare token outside call position has no value meaning.
		return nil, errors.UnrecognizedNode(n.String())
	default:
		repr := "<nil>"
		if ex != nil {
			repr = ex.String()
		}
		return nil, errors.UnrecognizedNode(repr)
	}
}

// EncodeEquation encodes both sides of an equation.
func EncodeEquation(eq Equation, policy ir.Normalize) (ir.Equation, error) {
	lhs, err := Encode(eq.LHS, policy)
	if err != nil {
		return ir.Equation{}, err
	}
	rhs, err := Encode(eq.RHS, policy)
	if err != nil {
		return ir.Equation{}, err
	}
	return ir.Equation{LHS: lhs, RHS: rhs}, nil
}

// EncodeModel assembles the wire document from a model source: the
// independent variable, the deduplicated parameter table, the ordered
// state table, and the three equation sequences.
//
// Parameters sharing a normalized name collapse to one entry keeping the
// first-seen value. States keep their input order untouched; downstream
// register offsets depend on it.
func EncodeModel(src ModelSource, policy ir.Normalize) (*ir.Document, error) {
	iv := src.IndependentVariable()

	doc := &ir.Document{
		IV: ir.Variable{Name: policy.Apply(iv.Name), Val: iv.Val},
	}

	seen := make(map[string]struct{})
	params := src.Parameters()
	doc.Params = make([]ir.Variable, 0, len(params))
	for _, p := range params {
		name := policy.Apply(p.Name)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		doc.Params = append(doc.Params, ir.Variable{Name: name, Val: p.Val})
	}

	states := src.States()
	doc.States = make([]ir.Variable, 0, len(states))
	for _, s := range states {
		doc.States = append(doc.States, ir.Variable{Name: policy.Apply(s.Name), Val: s.Val})
	}

	var err error
	if doc.Algs, err = encodeEquations(src.AlgebraicEquations(), policy); err != nil {
		return nil, err
	}
	if doc.ODEs, err = encodeEquations(src.DifferentialEquations(), policy); err != nil {
		return nil, err
	}
	if doc.Obs, err = encodeEquations(src.ObservedEquations(), policy); err != nil {
		return nil, err
	}

	return doc, nil
}

func encodeEquations(eqs []Equation, policy ir.Normalize) ([]ir.Equation, error) {
	out := make([]ir.Equation, 0, len(eqs))
	for _, eq := range eqs {
		enc, err := EncodeEquation(eq, policy)
		if err != nil {
			return nil, err
		}
		out = append(out, enc)
	}
	return out, nil
}
