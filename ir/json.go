package ir

import (
	"encoding/json"

	"github.com/odelang/odebridge/errors"
)

// Wire tags for the node variants. Keys and tag values are fixed by the
// engine's schema.
const (
	tagConst = "Const"
	tagVar   = "Var"
	tagTree  = "Tree"
)

type constWire struct {
	Type string  `json:"type"`
	Val  float64 `json:"val"`
}

type varWire struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type treeWire struct {
	Type string            `json:"type"`
	Op   string            `json:"op"`
	Args []json.RawMessage `json:"args"`
}

// MarshalJSON emits {type:"Const", val: number}.
func (c Const) MarshalJSON() ([]byte, error) {
	return json.Marshal(constWire{Type: tagConst, Val: c.Val})
}

// MarshalJSON emits {type:"Var", name: string}.
func (v Var) MarshalJSON() ([]byte, error) {
	return json.Marshal(varWire{Type: tagVar, Name: v.Name})
}

// MarshalJSON emits {type:"Tree", op: string, args: [...]}.
func (t Tree) MarshalJSON() ([]byte, error) {
	args := make([]json.RawMessage, len(t.Args))
	for i, a := range t.Args {
		raw, err := json.Marshal(a)
		if err != nil {
			return nil, err
		}
		args[i] = raw
	}
	return json.Marshal(treeWire{Type: tagTree, Op: t.Op, Args: args})
}

// DecodeNode is the inverse of the node wire form. Unknown type tags are
// an error.
func DecodeNode(data []byte) (Node, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, errors.ParseFailed("expression node", err)
	}

	switch probe.Type {
	case tagConst:
		var w constWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, errors.ParseFailed("Const node", err)
		}
		return Const{Val: w.Val}, nil
	case tagVar:
		var w varWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, errors.ParseFailed("Var node", err)
		}
		return Var{Name: w.Name}, nil
	case tagTree:
		var w treeWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, errors.ParseFailed("Tree node", err)
		}
		args := make([]Node, len(w.Args))
		for i, raw := range w.Args {
			n, err := DecodeNode(raw)
			if err != nil {
				return nil, err
			}
			args[i] = n
		}
		return Tree{Op: w.Op, Args: args}, nil
	default:
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidData).
			Detail("unknown node type tag %q", probe.Type).
			Build()
	}
}

type equationWire struct {
	LHS json.RawMessage `json:"lhs"`
	RHS json.RawMessage `json:"rhs"`
}

// UnmarshalJSON decodes both sides of an equation.
func (eq *Equation) UnmarshalJSON(data []byte) error {
	var w equationWire
	if err := json.Unmarshal(data, &w); err != nil {
		return errors.ParseFailed("equation", err)
	}
	lhs, err := DecodeNode(w.LHS)
	if err != nil {
		return err
	}
	rhs, err := DecodeNode(w.RHS)
	if err != nil {
		return err
	}
	eq.LHS, eq.RHS = lhs, rhs
	return nil
}

// Encode serializes the document to its wire JSON form. The variable
// tables always encode as arrays, never null, so engines that require
// the full key set accept models with empty blocks.
func (d *Document) Encode() ([]byte, error) {
	type alias Document
	c := alias(*d)
	if c.Params == nil {
		c.Params = []Variable{}
	}
	if c.States == nil {
		c.States = []Variable{}
	}
	if c.Algs == nil {
		c.Algs = []Equation{}
	}
	if c.ODEs == nil {
		c.ODEs = []Equation{}
	}
	if c.Obs == nil {
		c.Obs = []Equation{}
	}
	return json.Marshal(&c)
}

// DecodeDocument parses a wire document. It is used by in-process engines
// and by tests; the bridge itself only ever serializes.
func DecodeDocument(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.ParseFailed("model document", err)
	}
	return &d, nil
}
