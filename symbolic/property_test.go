package symbolic

import (
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/odelang/odebridge/ir"
)

var identGen = gen.RegexMatch(`[a-z][a-z0-9_]{0,8}`)

// exprFromSeed builds a deterministic expression tree over the given
// leaves. Structure varies with the seed so shrinking stays meaningful.
func exprFromSeed(seed uint64, leaves []Ex, depth int) Ex {
	if depth == 0 || len(leaves) == 0 {
		if len(leaves) == 0 {
			return Num{Val: float64(seed % 97)}
		}
		return leaves[seed%uint64(len(leaves))]
	}
	ops := []string{"+", "-", "*", "/", "^", "sqrt", "log", "sin"}
	op := ops[seed%uint64(len(ops))]
	switch op {
	case "sqrt", "log", "sin":
		return Apply(op, exprFromSeed(seed/8, leaves, depth-1))
	default:
		return Apply(op,
			exprFromSeed(seed/8, leaves, depth-1),
			exprFromSeed(seed/16+1, leaves, depth-1),
		)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("wire round trip is structurally lossless", prop.ForAll(
		func(seed uint64, names []string, vals []float64) bool {
			leaves := make([]Ex, 0, len(names)+len(vals))
			for _, n := range names {
				leaves = append(leaves, Sym{Name: n + "(t)"})
			}
			for _, v := range vals {
				leaves = append(leaves, Num{Val: v})
			}

			node, err := Encode(exprFromSeed(seed, leaves, 4), ir.NormalizeFull)
			if err != nil {
				return false
			}
			raw, err := json.Marshal(node)
			if err != nil {
				return false
			}
			back, err := ir.DecodeNode(raw)
			if err != nil {
				return false
			}
			return ir.Equal(node, back)
		},
		gen.UInt64(),
		gen.SliceOf(identGen),
		gen.SliceOf(gen.Float64Range(-1e6, 1e6)),
	))

	properties.TestingRun(t)
}

func TestStateOrderPreservedProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("states keep input order for any permutation", prop.ForAll(
		func(names []string) bool {
			sts := make([]Variable, len(names))
			for i, n := range names {
				sts[i] = Variable{Name: n + "(t)", Val: float64(i)}
			}
			doc, err := EncodeModel(&System{IV: Variable{Name: "t"}, Sts: sts}, ir.NormalizePartial)
			if err != nil {
				return false
			}
			if len(doc.States) != len(names) {
				return false
			}
			for i, n := range names {
				if doc.States[i].Name != n || doc.States[i].Val != float64(i) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(identGen),
	))

	properties.TestingRun(t)
}

func TestNormalizeIdempotenceProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	nameGen := gen.RegexMatch(`([a-z]{1,6}₊){0,2}[a-z]{1,6}(\(t\))?`)

	properties.Property("partial twice equals partial once", prop.ForAll(
		func(name string) bool {
			once := ir.NormalizePartial.Apply(name)
			return ir.NormalizePartial.Apply(once) == once
		},
		nameGen,
	))

	properties.Property("full then partial equals full", prop.ForAll(
		func(name string) bool {
			full := ir.NormalizeFull.Apply(name)
			return ir.NormalizePartial.Apply(full) == full
		},
		nameGen,
	))

	properties.TestingRun(t)
}
