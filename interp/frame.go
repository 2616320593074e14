package interp

import (
	odebridge "github.com/odelang/odebridge"
)

// reg indexes one slot of the register file.
type reg int

type slotKey struct {
	kind odebridge.RegisterKind
	name string
}

type slot struct {
	initial *float64
	name    string
	kind    odebridge.RegisterKind
}

// frame is the register file under construction: slot metadata, a name
// lookup, and a recycling list for temp registers.
//
// The first four slots are fixed constants 0, 1, -1 and -0; the negative
// zero slot exists so native backends can negate by sign-bit xor. The
// independent variable comes right after, then states, the derivative
// block (same length, immediately following), and parameters. Everything
// downstream that scans descriptors depends on this order.
type frame struct {
	lookup map[slotKey]reg
	slots  []slot
	freed  []reg
}

func newFrame() *frame {
	f := &frame{lookup: make(map[slotKey]reg)}

	f.alloc(odebridge.KindConst, "", ptr(0.0))
	f.alloc(odebridge.KindConst, "", ptr(1.0))
	f.alloc(odebridge.KindConst, "", ptr(-1.0))
	negZero := 0.0
	f.alloc(odebridge.KindConst, "", ptr(-negZero))

	return f
}

func ptr(v float64) *float64 { return &v }

func (f *frame) alloc(kind odebridge.RegisterKind, name string, initial *float64) reg {
	if kind == odebridge.KindTemp && len(f.freed) > 0 {
		r := f.freed[len(f.freed)-1]
		f.freed = f.freed[:len(f.freed)-1]
		return r
	}

	r := reg(len(f.slots))
	if name != "" {
		f.lookup[slotKey{kind: kind, name: name}] = r
	}
	f.slots = append(f.slots, slot{kind: kind, name: name, initial: initial})
	return r
}

// free recycles a register. Only temps are recyclable; named registers
// and constants keep their slots.
func (f *frame) free(r reg) {
	if f.slots[r].kind == odebridge.KindTemp {
		f.freed = append(f.freed, r)
	}
}

func (f *frame) find(kind odebridge.RegisterKind, name string) (reg, bool) {
	r, ok := f.lookup[slotKey{kind: kind, name: name}]
	return r, ok
}

// findValue resolves an identifier reference in expression position.
// States shadow parameters, which shadow algebraic and observed
// definitions and finally the independent variable.
func (f *frame) findValue(name string) (reg, bool) {
	for _, kind := range []odebridge.RegisterKind{
		odebridge.KindState,
		odebridge.KindParam,
		odebridge.KindAlgebraic,
		odebridge.KindObserved,
		odebridge.KindIndependent,
	} {
		if r, ok := f.find(kind, name); ok {
			return r, true
		}
	}
	return 0, false
}

func (f *frame) size() int {
	return len(f.slots)
}

func (f *frame) count(kind odebridge.RegisterKind) int {
	n := 0
	for _, s := range f.slots {
		if s.kind == kind {
			n++
		}
	}
	return n
}

func (f *frame) first(kind odebridge.RegisterKind) (int, bool) {
	for i, s := range f.slots {
		if s.kind == kind {
			return i, true
		}
	}
	return 0, false
}

// image materializes the initial memory for one compiled instance.
// Slots without a defined initial value start at zero.
func (f *frame) image() []float64 {
	mem := make([]float64, len(f.slots))
	for i, s := range f.slots {
		if s.initial != nil {
			mem[i] = *s.initial
		}
	}
	return mem
}

// descriptors renders the frame as the register descriptor sequence
// reported to legacy-protocol callers.
func (f *frame) descriptors() []odebridge.RegisterDescriptor {
	out := make([]odebridge.RegisterDescriptor, len(f.slots))
	for i, s := range f.slots {
		out[i] = odebridge.RegisterDescriptor{
			Kind:    s.kind,
			Name:    s.name,
			Initial: s.initial,
		}
	}
	return out
}
