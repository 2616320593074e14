package ir

// canonicalOps maps source-level operator and function tokens to the
// engine's canonical vocabulary. The table is total in the sense that
// lookup never fails: tokens without an entry pass through unchanged.
// Built once at load time and never mutated.
var canonicalOps = map[string]string{
	"+": "plus",
	"-": "minus",
	"*": "times",
	"/": "divide",
	"%": "rem",
	"^": "power",

	"sqrt": "root",

	"==": "eq",
	"!=": "neq",
	">":  "gt",
	">=": "geq",
	"<":  "lt",
	"<=": "leq",

	"&":   "and",
	"|":   "or",
	"xor": "xor",

	"asin": "arcsin",
	"acos": "arccos",
	"atan": "arctan",
	"acsc": "arccsc",
	"asec": "arcsec",
	"acot": "arccot",

	"asinh": "arcsinh",
	"acosh": "arccosh",
	"atanh": "arctanh",
	"acsch": "arccsch",
	"asech": "arcsech",
	"acoth": "arccoth",

	"log":   "ln",
	"log10": "log",
	"ceil":  "ceiling",
}

// CanonicalOp rewrites a source operator token to the name expected by
// the engine. Unknown tokens are returned unchanged; canonicalization
// never fails.
func CanonicalOp(op string) string {
	if c, ok := canonicalOps[op]; ok {
		return c
	}
	return op
}

// CanonicalTable returns a copy of the canonicalization table. Intended
// for tooling and tests; mutating the copy has no effect on lookup.
func CanonicalTable() map[string]string {
	out := make(map[string]string, len(canonicalOps))
	for k, v := range canonicalOps {
		out[k] = v
	}
	return out
}
