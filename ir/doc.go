// Package ir defines the expression intermediate representation and its
// wire encoding.
//
// An expression is a closed tagged tree of Const, Var and Tree nodes,
// independent of the symbolic-algebra objects it was built from. A whole
// model serializes to a JSON Document:
//
//	{ "iv":     {"name": "t", "val": 0},
//	  "params": [{"name": "a", "val": 1.5}],
//	  "states": [{"name": "x", "val": 1}],
//	  "algs":   [], "odes": [...], "obs": [] }
//
// with nodes encoded as
//
//	{"type": "Const", "val": -0.1}
//	{"type": "Var",   "name": "x"}
//	{"type": "Tree",  "op": "times", "args": [...]}
//
// Params is deduplicated by name. States order is load-bearing: register
// offsets discovered after compilation follow it, so the document is
// never re-sorted.
//
// The package also owns the two identifier normalization policies and the
// operator canonicalization table (sqrt -> root, log -> ln, log10 -> log,
// and so on); both are pure string rewrites that cannot fail.
package ir
