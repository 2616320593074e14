package interp

import "math"

// opFunc evaluates one instruction. Unary operators ignore y.
type opFunc func(x, y float64) float64

func boolToF(b bool) float64 {
	if b {
		return 1.0
	}
	return -1.0
}

// Comparisons yield ±1 and logical connectives read truth off the sign,
// so the whole boolean layer stays inside plain f64 arithmetic.
var binaryOps = map[string]opFunc{
	"plus":   func(x, y float64) float64 { return x + y },
	"minus":  func(x, y float64) float64 { return x - y },
	"times":  func(x, y float64) float64 { return x * y },
	"divide": func(x, y float64) float64 { return x / y },
	"rem":    math.Mod,
	"power":  math.Pow,

	"gt":  func(x, y float64) float64 { return boolToF(x > y) },
	"geq": func(x, y float64) float64 { return boolToF(x >= y) },
	"lt":  func(x, y float64) float64 { return boolToF(x < y) },
	"leq": func(x, y float64) float64 { return boolToF(x <= y) },
	"eq":  func(x, y float64) float64 { return boolToF(x == y) },
	"neq": func(x, y float64) float64 { return boolToF(x != y) },

	"and": func(x, y float64) float64 { return boolToF(x > 0 && y > 0) },
	"or":  func(x, y float64) float64 { return boolToF(x > 0 || y > 0) },
	"xor": func(x, y float64) float64 { return boolToF((x > 0) != (y > 0)) },

	// if_pos and if_neg are the two halves of a lowered conditional:
	// one of them passes its value through, the other contributes 0.
	"if_pos": func(x, y float64) float64 {
		if x > 0 {
			return y
		}
		return 0
	},
	"if_neg": func(x, y float64) float64 {
		if x <= 0 {
			return y
		}
		return 0
	},
}

var unaryOps = map[string]opFunc{
	"neg":  func(x, _ float64) float64 { return -x },
	"abs":  func(x, _ float64) float64 { return math.Abs(x) },
	"root": func(x, _ float64) float64 { return math.Sqrt(x) },
	"cbrt": func(x, _ float64) float64 { return math.Cbrt(x) },
	"exp":  func(x, _ float64) float64 { return math.Exp(x) },
	"ln":   func(x, _ float64) float64 { return math.Log(x) },
	"log":  func(x, _ float64) float64 { return math.Log10(x) },
	"log2": func(x, _ float64) float64 { return math.Log2(x) },

	"sin": func(x, _ float64) float64 { return math.Sin(x) },
	"cos": func(x, _ float64) float64 { return math.Cos(x) },
	"tan": func(x, _ float64) float64 { return math.Tan(x) },
	"csc": func(x, _ float64) float64 { return 1 / math.Sin(x) },
	"sec": func(x, _ float64) float64 { return 1 / math.Cos(x) },
	"cot": func(x, _ float64) float64 { return 1 / math.Tan(x) },

	"arcsin": func(x, _ float64) float64 { return math.Asin(x) },
	"arccos": func(x, _ float64) float64 { return math.Acos(x) },
	"arctan": func(x, _ float64) float64 { return math.Atan(x) },
	"arccsc": func(x, _ float64) float64 { return math.Asin(1 / x) },
	"arcsec": func(x, _ float64) float64 { return math.Acos(1 / x) },
	"arccot": func(x, _ float64) float64 { return math.Atan(1 / x) },

	"sinh": func(x, _ float64) float64 { return math.Sinh(x) },
	"cosh": func(x, _ float64) float64 { return math.Cosh(x) },
	"tanh": func(x, _ float64) float64 { return math.Tanh(x) },
	"csch": func(x, _ float64) float64 { return 1 / math.Sinh(x) },
	"sech": func(x, _ float64) float64 { return 1 / math.Cosh(x) },
	"coth": func(x, _ float64) float64 { return 1 / math.Tanh(x) },

	"arcsinh": func(x, _ float64) float64 { return math.Asinh(x) },
	"arccosh": func(x, _ float64) float64 { return math.Acosh(x) },
	"arctanh": func(x, _ float64) float64 { return math.Atanh(x) },
	"arccsch": func(x, _ float64) float64 { return math.Asinh(1 / x) },
	"arcsech": func(x, _ float64) float64 { return math.Acosh(1 / x) },
	"arccoth": func(x, _ float64) float64 { return math.Atanh(1 / x) },

	"ceiling": func(x, _ float64) float64 { return math.Ceil(x) },
	"floor":   func(x, _ float64) float64 { return math.Floor(x) },
	"round":   func(x, _ float64) float64 { return math.Round(x) },
	"sign":    func(x, _ float64) float64 { return boolToF(x > 0) },
}
