package enginewasm

import (
	"regexp"
	"strings"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/odelang/odebridge/errors"
)

// WIT descriptions of the engine's C-ABI export surface, one per
// protocol generation. Pointers and handles travel as s32. The run
// export is where the generations diverge: the legacy build takes one
// shared buffer, the discrete build takes separate vectors.
const (
	witShared = `
		export compile: func(document: s32, backend: s32) -> s32;
		export check_status: func(handle: s32) -> s32;
		export define_regs: func(handle: s32) -> s32;
		export run: func(handle: s32, mem: s32, len: s32);
		export finalize: func(handle: s32);
	`

	witDiscrete = `
		export compile: func(document: s32, backend: s32) -> s32;
		export check_status: func(handle: s32) -> s32;
		export count_states: func(handle: s32) -> s32;
		export count_params: func(handle: s32) -> s32;
		export fill_u0: func(handle: s32, u0: s32, len: s32) -> s32;
		export fill_p: func(handle: s32, p: s32, len: s32) -> s32;
		export run: func(handle: s32, du: s32, nd: s32, u: s32, ns: s32, p: s32, np: s32, t: f64) -> s32;
		export finalize: func(handle: s32);
	`
)

type funcSignature struct {
	params  []wit.Type
	results []wit.Type
}

var funcPattern = regexp.MustCompile(`(?:export\s+)?([a-zA-Z_][a-zA-Z0-9_-]*)\s*:\s*func\s*\(([^)]*)\)(?:\s*->\s*([^;]+))?`)

// parseWitFunctions extracts function signatures from WIT text.
// Pattern: [export] name: func(params) -> result;
func parseWitFunctions(witText string) (map[string]*funcSignature, error) {
	funcs := make(map[string]*funcSignature)

	for _, match := range funcPattern.FindAllStringSubmatch(witText, -1) {
		name := match[1]
		paramsStr := strings.TrimSpace(match[2])
		resultStr := ""
		if len(match) > 3 {
			resultStr = strings.TrimSpace(match[3])
		}

		sig := &funcSignature{}

		if paramsStr != "" {
			for _, p := range strings.Split(paramsStr, ",") {
				typStr := p
				if idx := strings.LastIndex(p, ":"); idx != -1 {
					typStr = p[idx+1:]
				}
				t, err := wit.ParseType(strings.TrimSpace(typStr))
				if err != nil {
					return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, "parse param type "+typStr)
				}
				sig.params = append(sig.params, t)
			}
		}

		if resultStr != "" && resultStr != "()" {
			t, err := wit.ParseType(resultStr)
			if err != nil {
				return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, "parse result type "+resultStr)
			}
			sig.results = []wit.Type{t}
		}

		funcs[name] = sig
	}

	if len(funcs) == 0 {
		return nil, errors.InvalidInput(errors.PhaseParse, "no functions found in WIT text")
	}
	return funcs, nil
}

// coreType flattens a WIT scalar onto its core wasm value type, as
// wazero reports it.
func coreType(t wit.Type) api.ValueType {
	switch t.(type) {
	case wit.U64, wit.S64:
		return api.ValueTypeI64
	case wit.F32:
		return api.ValueTypeF32
	case wit.F64:
		return api.ValueTypeF64
	default:
		return api.ValueTypeI32
	}
}
