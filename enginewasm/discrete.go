package enginewasm

import (
	"context"
	"math"

	odebridge "github.com/odelang/odebridge"
	"github.com/odelang/odebridge/errors"
)

// DiscreteEngine is a later-generation guest: the caller never sees the
// register file, only counted state and parameter vectors.
type DiscreteEngine struct {
	*engineModule
}

var _ odebridge.DiscreteEngine = (*DiscreteEngine)(nil)

func (e *DiscreteEngine) CountStates(ctx context.Context, h odebridge.Handle) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, err := e.callI32(ctx, expCountStates, h)
	return int(n), err
}

func (e *DiscreteEngine) CountParams(ctx context.Context, h odebridge.Handle) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, err := e.callI32(ctx, expCountParams, h)
	return int(n), err
}

func (e *DiscreteEngine) InitialStates(ctx context.Context, h odebridge.Handle, dst []float64) error {
	return e.fill(ctx, expFillU0, h, dst)
}

func (e *DiscreteEngine) InitialParams(ctx context.Context, h odebridge.Handle, dst []float64) error {
	return e.fill(ctx, expFillP, h, dst)
}

// fill asks the guest to write an initial vector into a scratch window,
// then copies it out into dst.
func (e *DiscreteEngine) fill(ctx context.Context, name string, h odebridge.Handle, dst []float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	size := uint32(8 * len(dst))
	ptr := uint32(0)
	if len(dst) > 0 {
		var err error
		if ptr, err = e.alloc.alloc(ctx, size); err != nil {
			return err
		}
		defer e.alloc.free(ctx, ptr, size)
	}

	results, err := e.fns[name].Call(ctx, uint64(h), uint64(ptr), uint64(uint32(len(dst))))
	if err != nil {
		return errors.Wrap(errors.PhaseLayout, errors.KindInvalidData, err, "guest "+name+" trapped")
	}
	if uint32(results[0]) != 0 {
		return errors.InvalidInput(errors.PhaseLayout, "guest rejected "+name+" vector length")
	}
	return readF64s(e.mem, ptr, dst)
}

// Run stages u and p in guest memory, invokes one step and harvests du.
// A nonzero guest status is a recoverable per-call fault.
func (e *DiscreteEngine) Run(ctx context.Context, h odebridge.Handle, du, u, p []float64, t float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	duPtr, err := e.stage(ctx, du)
	if err != nil {
		return err
	}
	defer e.alloc.free(ctx, duPtr, uint32(8*len(du)))

	uPtr, err := e.stage(ctx, u)
	if err != nil {
		return err
	}
	defer e.alloc.free(ctx, uPtr, uint32(8*len(u)))

	pPtr, err := e.stage(ctx, p)
	if err != nil {
		return err
	}
	defer e.alloc.free(ctx, pPtr, uint32(8*len(p)))

	results, err := e.fns[expRun].Call(ctx,
		uint64(h),
		uint64(duPtr), uint64(uint32(len(du))),
		uint64(uPtr), uint64(uint32(len(u))),
		uint64(pPtr), uint64(uint32(len(p))),
		math.Float64bits(t),
	)
	if err != nil {
		return errors.Wrap(errors.PhaseEval, errors.KindFault, err, "guest run trapped")
	}
	if uint32(results[0]) != 0 {
		return errors.EvaluationFault("engine reported status %d", uint32(results[0]))
	}
	return readF64s(e.mem, duPtr, du)
}

// stage allocates a guest window for vals and writes them in. A nil or
// empty vector stages as the null pointer.
func (e *DiscreteEngine) stage(ctx context.Context, vals []float64) (uint32, error) {
	if len(vals) == 0 {
		return 0, nil
	}
	ptr, err := e.alloc.alloc(ctx, uint32(8*len(vals)))
	if err != nil {
		return 0, err
	}
	if err := writeF64s(e.mem, ptr, vals); err != nil {
		e.alloc.free(ctx, ptr, uint32(8*len(vals)))
		return 0, err
	}
	return ptr, nil
}
