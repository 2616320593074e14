package interp

import (
	"context"
	"fmt"
	"unicode/utf8"

	odebridge "github.com/odelang/odebridge"
	"github.com/odelang/odebridge/errors"
	"github.com/odelang/odebridge/ir"
	"github.com/odelang/odebridge/resource"
)

// program is one compiled model: straight-line code plus its private
// memory, seeded from the frame's initial image.
type program struct {
	frame *frame
	code  []instr
	mem   []float64
}

// exec runs the code over mem. mem length is the caller's problem.
func (p *program) exec(mem []float64) {
	for _, in := range p.code {
		mem[in.dst] = in.fn(mem[in.x], mem[in.y])
	}
}

// compiled is one table entry. A failed compilation still occupies a
// handle; its diagnostic surfaces through Status.
type compiled struct {
	prog   *program
	status string
}

func (c *compiled) Drop() {
	c.prog = nil
}

// Engine compiles model documents to threaded bytecode and evaluates
// them in process. It serves both protocol generations: descriptor
// discovery with a caller-owned flat buffer, and counted discrete
// buffers over program-private memory.
type Engine struct {
	table *resource.Table[*compiled]
}

var (
	_ odebridge.SharedEngine   = (*Engine)(nil)
	_ odebridge.DiscreteEngine = (*Engine)(nil)
)

func New() *Engine {
	return &Engine{table: resource.NewTable[*compiled]()}
}

// Compile always yields a handle; the outcome of compilation is read
// back through Status. This mirrors the external engines, which report
// diagnostics out of band so the call surface stays uniform.
func (e *Engine) Compile(ctx context.Context, document []byte, backend odebridge.Backend) (odebridge.Handle, error) {
	c := &compiled{status: odebridge.StatusSuccess}

	switch backend {
	case "", odebridge.BackendBytecode:
		c.prog, c.status = tryCompile(document)
	default:
		c.status = fmt.Sprintf("Compiler type not found: %s", backend)
	}

	h := e.table.Insert(c)
	if h == 0 {
		return 0, errors.Finalized("engine")
	}
	return odebridge.Handle(h), nil
}

func tryCompile(document []byte) (*program, string) {
	if !utf8.Valid(document) {
		return nil, "The input string is not valid UTF8"
	}
	doc, err := ir.DecodeDocument(document)
	if err != nil {
		return nil, fmt.Sprintf("Parse error: %s", err)
	}
	prog, err := compile(doc)
	if err != nil {
		return nil, err.Error()
	}
	return prog, odebridge.StatusSuccess
}

// Status returns the engine diagnostic for a handle. A healthy model
// reports the success sentinel.
func (e *Engine) Status(ctx context.Context, h odebridge.Handle) (string, error) {
	c, err := e.get(h)
	if err != nil {
		return "", err
	}
	return c.status, nil
}

// Finalize releases a handle. Exactly the first call wins; later calls
// report the handle as already finalized.
func (e *Engine) Finalize(ctx context.Context, h odebridge.Handle) error {
	if _, ok := e.table.Remove(resource.Handle(h)); !ok {
		return errors.Finalized("model handle")
	}
	return nil
}

// DefineRegs reports the register descriptor sequence in slot order.
func (e *Engine) DefineRegs(ctx context.Context, h odebridge.Handle) ([]odebridge.RegisterDescriptor, error) {
	p, err := e.prog(h)
	if err != nil {
		return nil, err
	}
	return p.frame.descriptors(), nil
}

// RunShared evaluates one step over a caller-owned flat buffer laid out
// exactly like the descriptor sequence. The caller stages inputs before
// the call and harvests derivatives after it.
func (e *Engine) RunShared(ctx context.Context, h odebridge.Handle, mem []float64) error {
	p, err := e.prog(h)
	if err != nil {
		return err
	}
	if len(mem) != p.frame.size() {
		return errors.InvalidInput(errors.PhaseEval,
			fmt.Sprintf("buffer length %d does not match register file size %d", len(mem), p.frame.size()))
	}
	p.exec(mem)
	return nil
}

func (e *Engine) CountStates(ctx context.Context, h odebridge.Handle) (int, error) {
	p, err := e.prog(h)
	if err != nil {
		return 0, err
	}
	return p.frame.count(odebridge.KindState), nil
}

func (e *Engine) CountParams(ctx context.Context, h odebridge.Handle) (int, error) {
	p, err := e.prog(h)
	if err != nil {
		return 0, err
	}
	return p.frame.count(odebridge.KindParam), nil
}

// InitialStates copies the model's initial state vector into dst.
func (e *Engine) InitialStates(ctx context.Context, h odebridge.Handle, dst []float64) error {
	return e.fill(h, odebridge.KindState, dst)
}

// InitialParams copies the model's default parameter vector into dst.
func (e *Engine) InitialParams(ctx context.Context, h odebridge.Handle, dst []float64) error {
	return e.fill(h, odebridge.KindParam, dst)
}

func (e *Engine) fill(h odebridge.Handle, kind odebridge.RegisterKind, dst []float64) error {
	p, err := e.prog(h)
	if err != nil {
		return err
	}
	n := p.frame.count(kind)
	if len(dst) != n {
		return errors.InvalidInput(errors.PhaseLayout,
			fmt.Sprintf("destination length %d does not match %s count %d", len(dst), kind, n))
	}
	if n == 0 {
		return nil
	}
	base, _ := p.frame.first(kind)
	copy(dst, p.mem[base:base+n])
	return nil
}

// Run evaluates one step through the discrete-buffer protocol: t and the
// state vector u go in, derivatives come out in du, p overrides the
// parameter block. Vector length mismatches fault before any memory is
// touched, so the program's buffer stays coherent for later calls.
func (e *Engine) Run(ctx context.Context, h odebridge.Handle, du, u, p []float64, t float64) error {
	prog, err := e.prog(h)
	if err != nil {
		return err
	}

	f := prog.frame
	ns := f.count(odebridge.KindState)
	np := f.count(odebridge.KindParam)
	if len(u) != ns || len(du) != ns {
		return errors.EvaluationFault("state vector length %d/%d does not match model state count %d", len(u), len(du), ns)
	}
	if len(p) != np {
		return errors.EvaluationFault("parameter vector length %d does not match model parameter count %d", len(p), np)
	}

	if iv, ok := f.first(odebridge.KindIndependent); ok {
		prog.mem[iv] = t
	}
	if ns > 0 {
		su, _ := f.first(odebridge.KindState)
		copy(prog.mem[su:su+ns], u)
	}
	if np > 0 {
		sp, _ := f.first(odebridge.KindParam)
		copy(prog.mem[sp:sp+np], p)
	}

	prog.exec(prog.mem)

	if ns > 0 {
		sd, _ := f.first(odebridge.KindDiff)
		copy(du, prog.mem[sd:sd+ns])
	}
	return nil
}

// Close finalizes every live handle and shuts the engine down.
func (e *Engine) Close() error {
	return e.table.Close()
}

func (e *Engine) get(h odebridge.Handle) (*compiled, error) {
	c, ok := e.table.Get(resource.Handle(h))
	if !ok {
		return nil, errors.Finalized("model handle")
	}
	return c, nil
}

func (e *Engine) prog(h odebridge.Handle) (*program, error) {
	c, err := e.get(h)
	if err != nil {
		return nil, err
	}
	if c.prog == nil {
		return nil, errors.Compilation(c.status)
	}
	return c.prog, nil
}
