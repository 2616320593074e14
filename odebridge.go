package odebridge

import "context"

// Backend selects the execution strategy an engine compiles a model to.
type Backend string

const (
	BackendNative   Backend = "native"
	BackendBytecode Backend = "bytecode"
	BackendWasm     Backend = "wasm"
)

// StatusSuccess is the sentinel status string an engine reports after a
// successful compilation. Anything else is a diagnostic message.
const StatusSuccess = "Success"

// Handle is an opaque reference to an engine-side compiled model.
// Handle 0 is reserved and always invalid.
type Handle uint32

// RegisterKind tags one slot of an engine register file.
type RegisterKind uint8

const (
	KindConst RegisterKind = iota
	KindIndependent
	KindState
	KindDiff
	KindParam
	KindAlgebraic
	KindObserved
	KindTemp
)

func (k RegisterKind) String() string {
	switch k {
	case KindConst:
		return "Const"
	case KindIndependent:
		return "Independent"
	case KindState:
		return "State"
	case KindDiff:
		return "Diff"
	case KindParam:
		return "Param"
	case KindAlgebraic:
		return "Algebraic"
	case KindObserved:
		return "Observed"
	case KindTemp:
		return "Temp"
	}
	return "Unknown"
}

// RegisterDescriptor describes one slot of a compiled model's register
// file, as reported by a legacy-generation engine after compilation.
// Initial is nil for slots without a defined initial value.
type RegisterDescriptor struct {
	Initial *float64
	Name    string
	Kind    RegisterKind
}

// Engine is the entry-point surface shared by both engine generations.
// All calls are blocking and synchronous; an Engine is safe for use from
// multiple goroutines only if its implementation says so.
type Engine interface {
	// Compile submits a serialized model document plus a backend
	// selector and returns an opaque handle. A handle is returned even
	// when compilation fails; callers must check Status before use.
	Compile(ctx context.Context, document []byte, backend Backend) (Handle, error)

	// Status reports the compilation status for a handle. The sentinel
	// success value is StatusSuccess; anything else is the engine's
	// diagnostic text.
	Status(ctx context.Context, h Handle) (string, error)

	// Finalize releases the engine-side resources behind a handle.
	// Calling it more than once for the same handle is an error.
	Finalize(ctx context.Context, h Handle) error
}

// SharedEngine is the legacy engine generation: layout is discovered from
// the full register descriptor sequence, and evaluation runs over a single
// caller-owned flat buffer that images the whole register file.
type SharedEngine interface {
	Engine

	// DefineRegs returns the compiled model's register file layout,
	// one descriptor per slot, in slot order.
	DefineRegs(ctx context.Context, h Handle) ([]RegisterDescriptor, error)

	// RunShared recomputes every register in place. The buffer length
	// must equal the register file size.
	RunShared(ctx context.Context, h Handle, mem []float64) error
}

// DiscreteEngine is the later engine generation: the caller passes state,
// parameter, time and derivative buffers separately and never sees the
// register file. A nonzero engine status surfaces as an evaluation fault.
type DiscreteEngine interface {
	Engine

	CountStates(ctx context.Context, h Handle) (int, error)
	CountParams(ctx context.Context, h Handle) (int, error)

	// InitialStates copies the model's initial state vector into dst,
	// which must have length CountStates.
	InitialStates(ctx context.Context, h Handle, dst []float64) error

	// InitialParams copies the model's parameter vector into dst,
	// which must have length CountParams.
	InitialParams(ctx context.Context, h Handle, dst []float64) error

	// Run evaluates the right-hand side at (t, u, p) and writes the
	// derivatives into du. u and du must have length CountStates and p
	// length CountParams.
	Run(ctx context.Context, h Handle, du, u, p []float64, t float64) error
}

// Evaluator is the integrator-facing capability: one right-hand-side
// evaluation per call. Implementations are not safe for concurrent use;
// drive one Evaluator from one goroutine.
type Evaluator interface {
	Evaluate(ctx context.Context, du, u, p []float64, t float64) error
}
