package enginewasm

import (
	"context"
	"encoding/json"

	odebridge "github.com/odelang/odebridge"
	"github.com/odelang/odebridge/errors"
)

// SharedEngine is a legacy-generation guest: register descriptors plus
// one flat evaluation buffer imaging the whole register file.
type SharedEngine struct {
	*engineModule
}

var _ odebridge.SharedEngine = (*SharedEngine)(nil)

// wireDescriptor is the guest's JSON rendering of one register slot.
type wireDescriptor struct {
	Kind string   `json:"kind"`
	Name string   `json:"name"`
	Val  *float64 `json:"val"`
}

var kindNames = map[string]odebridge.RegisterKind{
	"Const":       odebridge.KindConst,
	"Independent": odebridge.KindIndependent,
	"State":       odebridge.KindState,
	"Diff":        odebridge.KindDiff,
	"Param":       odebridge.KindParam,
	"Algebraic":   odebridge.KindAlgebraic,
	"Observed":    odebridge.KindObserved,
	"Temp":        odebridge.KindTemp,
}

// DefineRegs reads the guest's register descriptor dump: a JSON array,
// one entry per slot, in slot order.
func (e *SharedEngine) DefineRegs(ctx context.Context, h odebridge.Handle) ([]odebridge.RegisterDescriptor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	results, err := e.fns[expDefineRegs].Call(ctx, uint64(h))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLayout, errors.KindInvalidData, err, "guest define_regs trapped")
	}
	raw, err := readCString(e.mem, uint32(results[0]))
	if err != nil {
		return nil, err
	}
	return parseDescriptors(raw)
}

func parseDescriptors(raw string) ([]odebridge.RegisterDescriptor, error) {
	var wire []wireDescriptor
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, errors.ParseFailed("register descriptor dump", err)
	}

	regs := make([]odebridge.RegisterDescriptor, len(wire))
	for i, w := range wire {
		kind, ok := kindNames[w.Kind]
		if !ok {
			return nil, errors.InvalidInput(errors.PhaseLayout, "unknown register kind "+w.Kind)
		}
		regs[i] = odebridge.RegisterDescriptor{Kind: kind, Name: w.Name, Initial: w.Val}
	}
	return regs, nil
}

// RunShared copies the caller's flat buffer into guest memory, runs one
// step and copies the whole register file back out.
func (e *SharedEngine) RunShared(ctx context.Context, h odebridge.Handle, mem []float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	size := uint32(8 * len(mem))
	ptr, err := e.alloc.alloc(ctx, size)
	if err != nil {
		return err
	}
	defer e.alloc.free(ctx, ptr, size)

	if err := writeF64s(e.mem, ptr, mem); err != nil {
		return err
	}
	// Legacy run returns nothing; a trap is the only failure signal.
	if _, err := e.fns[expRun].Call(ctx, uint64(h), uint64(ptr), uint64(uint32(len(mem)))); err != nil {
		return errors.Wrap(errors.PhaseEval, errors.KindFault, err, "guest run trapped")
	}
	return readF64s(e.mem, ptr, mem)
}
