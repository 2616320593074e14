package bridge

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	odebridge "github.com/odelang/odebridge"
	"github.com/odelang/odebridge/errors"
	"github.com/odelang/odebridge/ir"
)

// Protocol selects the invocation generation used to talk to an engine.
type Protocol int

const (
	// ProtocolAuto picks discrete buffers when the engine supports them
	// and falls back to the shared flat buffer otherwise.
	ProtocolAuto Protocol = iota
	ProtocolShared
	ProtocolDiscrete
)

// Options configures a compilation.
type Options struct {
	Backend  odebridge.Backend
	Protocol Protocol
}

// Model is a compiled model bound to an engine handle. It owns the
// handle: Close releases it exactly once, and evaluation after Close is
// an error.
//
// A Model is not safe for concurrent evaluation. Compile one model per
// goroutine; engines keep per-handle state disjoint.
type Model struct {
	eng       odebridge.Engine
	eval      odebridge.Evaluator
	id        string
	handle    odebridge.Handle
	states    int
	params    int
	initU     []float64
	initP     []float64
	layout    *layout
	closeOnce sync.Once
	closed    bool
	mu        sync.Mutex
}

// Compile serializes a model document, submits it to the engine and
// performs the post-compile handshake: the status check against the
// success sentinel, then layout discovery for the protocol in use. Any
// failure after the engine issued a handle releases that handle before
// returning.
func Compile(ctx context.Context, eng odebridge.Engine, doc *ir.Document, opts Options) (*Model, error) {
	raw, err := doc.Encode()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseCompile, errors.KindInvalidData, err, "serialize model document")
	}

	h, err := eng.Compile(ctx, raw, opts.Backend)
	if err != nil {
		return nil, err
	}

	m := &Model{eng: eng, handle: h, id: uuid.NewString()}

	status, err := eng.Status(ctx, h)
	if err != nil {
		m.release(ctx)
		return nil, err
	}
	if status != odebridge.StatusSuccess {
		m.release(ctx)
		return nil, errors.Compilation(status)
	}

	if err := m.bind(ctx, doc, opts.Protocol); err != nil {
		m.release(ctx)
		return nil, err
	}

	Logger().Debug("model compiled",
		zap.String("instance", m.id),
		zap.String("backend", string(opts.Backend)),
		zap.Int("states", m.states),
		zap.Int("params", m.params),
	)
	return m, nil
}

// bind discovers the model's shape through whichever protocol the engine
// speaks and installs the matching evaluator.
func (m *Model) bind(ctx context.Context, doc *ir.Document, proto Protocol) error {
	discrete, hasDiscrete := m.eng.(odebridge.DiscreteEngine)
	shared, hasShared := m.eng.(odebridge.SharedEngine)

	useDiscrete := false
	switch proto {
	case ProtocolAuto:
		useDiscrete = hasDiscrete
	case ProtocolDiscrete:
		useDiscrete = true
	}

	if useDiscrete {
		if !hasDiscrete {
			return errors.Unsupported(errors.PhaseLayout, "engine does not implement the discrete-buffer protocol")
		}
		return m.bindDiscrete(ctx, discrete)
	}
	if !hasShared {
		return errors.Unsupported(errors.PhaseLayout, "engine does not implement the shared-buffer protocol")
	}
	return m.bindShared(ctx, shared, doc)
}

func (m *Model) bindDiscrete(ctx context.Context, eng odebridge.DiscreteEngine) error {
	ns, err := eng.CountStates(ctx, m.handle)
	if err != nil {
		return err
	}
	np, err := eng.CountParams(ctx, m.handle)
	if err != nil {
		return err
	}

	m.states, m.params = ns, np
	m.initU = make([]float64, ns)
	m.initP = make([]float64, np)
	if err := eng.InitialStates(ctx, m.handle, m.initU); err != nil {
		return err
	}
	if err := eng.InitialParams(ctx, m.handle, m.initP); err != nil {
		return err
	}

	m.eval = &discreteEval{eng: eng, model: m}
	return nil
}

func (m *Model) bindShared(ctx context.Context, eng odebridge.SharedEngine, doc *ir.Document) error {
	regs, err := eng.DefineRegs(ctx, m.handle)
	if err != nil {
		return err
	}
	lay, err := discoverLayout(regs, len(doc.States), len(doc.Params))
	if err != nil {
		return err
	}

	m.layout = lay
	m.states, m.params = lay.states, lay.params
	m.initU = append([]float64(nil), lay.buf[lay.firstState:lay.firstState+lay.states]...)
	m.initP = append([]float64(nil), lay.buf[lay.firstParam:lay.firstParam+lay.params]...)

	m.eval = &sharedEval{eng: eng, model: m, lay: lay}
	return nil
}

// Evaluate computes derivatives at (t, u, p) into du.
func (m *Model) Evaluate(ctx context.Context, du, u, p []float64, t float64) error {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return errors.Finalized("model")
	}
	if len(u) != m.states || len(du) != m.states {
		return errors.EvaluationFault("state vector length %d/%d does not match model state count %d", len(u), len(du), m.states)
	}
	if len(p) != m.params {
		return errors.EvaluationFault("parameter vector length %d does not match model parameter count %d", len(p), m.params)
	}
	return m.eval.Evaluate(ctx, du, u, p, t)
}

// StateCount returns the number of states in the compiled model.
func (m *Model) StateCount() int { return m.states }

// ParamCount returns the number of parameters in the compiled model.
func (m *Model) ParamCount() int { return m.params }

// InitialStates returns a copy of the model's initial state vector.
func (m *Model) InitialStates() []float64 {
	return append([]float64(nil), m.initU...)
}

// InitialParams returns a copy of the model's default parameter vector.
func (m *Model) InitialParams() []float64 {
	return append([]float64(nil), m.initP...)
}

// ID returns the model's bridge-side instance id, as used in log fields.
func (m *Model) ID() string { return m.id }

// Layout returns the discovered register layout, or nil when the model
// was bound through the discrete-buffer protocol.
func (m *Model) Layout() *Layout {
	if m.layout == nil {
		return nil
	}
	l := m.layout.public()
	return &l
}

// Close releases the engine handle. Safe to call more than once; only
// the first call reaches the engine.
func (m *Model) Close() error {
	var err error
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		m.mu.Unlock()
		err = m.eng.Finalize(context.Background(), m.handle)
		Logger().Debug("model finalized", zap.String("instance", m.id))
	})
	return err
}

// release tears the handle down on a failed compile path, before the
// model was ever handed to the caller.
func (m *Model) release(ctx context.Context) {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.closeOnce.Do(func() {
		if err := m.eng.Finalize(ctx, m.handle); err != nil {
			Logger().Warn("finalize after failed compile",
				zap.String("instance", m.id), zap.Error(err))
		}
	})
}

// sharedEval drives the legacy protocol over one persistent flat buffer:
// stage t and the input vectors, run, harvest the derivative block. No
// allocation per call.
type sharedEval struct {
	eng   odebridge.SharedEngine
	model *Model
	lay   *layout
}

func (e *sharedEval) Evaluate(ctx context.Context, du, u, p []float64, t float64) error {
	lay := e.lay
	lay.buf[lay.iv] = t
	copy(lay.buf[lay.firstState:lay.firstState+lay.states], u)
	copy(lay.buf[lay.firstParam:lay.firstParam+lay.params], p)

	if err := e.eng.RunShared(ctx, e.model.handle, lay.buf); err != nil {
		return err
	}

	copy(du, lay.buf[lay.firstDiff:lay.firstDiff+lay.states])
	return nil
}

// discreteEval passes the caller's buffers straight through; the engine
// reports per-call faults as recoverable errors.
type discreteEval struct {
	eng   odebridge.DiscreteEngine
	model *Model
}

func (e *discreteEval) Evaluate(ctx context.Context, du, u, p []float64, t float64) error {
	return e.eng.Run(ctx, e.model.handle, du, u, p, t)
}
