package bridge

import (
	odebridge "github.com/odelang/odebridge"
	"github.com/odelang/odebridge/errors"
)

// layout is the discovered shape of a legacy engine's register file,
// plus the persistent evaluation buffer seeded from register initials.
type layout struct {
	buf        []float64
	size       int
	iv         int
	firstState int
	states     int
	firstDiff  int
	firstParam int
	params     int
}

// Layout is the externally visible register layout of a legacy model.
type Layout struct {
	Size       int
	IV         int
	FirstState int
	States     int
	FirstDiff  int
	FirstParam int
	Params     int
}

func (l *layout) public() Layout {
	return Layout{
		Size:       l.size,
		IV:         l.iv,
		FirstState: l.firstState,
		States:     l.states,
		FirstDiff:  l.firstDiff,
		FirstParam: l.firstParam,
		Params:     l.params,
	}
}

// discoverLayout scans the descriptor sequence for the state, derivative
// and parameter blocks and the independent-variable slot.
//
// wantStates and wantParams are the counts the submitted document
// declared; a document that declares a block the descriptors do not
// show is a discovery anomaly, not a silent zero.
//
// Engines that predate the independent-variable kind still place the
// slot directly before the state block, so that position is the
// fallback when no Independent descriptor exists.
func discoverLayout(regs []odebridge.RegisterDescriptor, wantStates, wantParams int) (*layout, error) {
	lay := &layout{
		size:       len(regs),
		iv:         -1,
		firstState: -1,
		firstDiff:  -1,
		firstParam: -1,
	}

	for i, r := range regs {
		switch r.Kind {
		case odebridge.KindIndependent:
			if lay.iv < 0 {
				lay.iv = i
			}
		case odebridge.KindState:
			if lay.firstState < 0 {
				lay.firstState = i
			}
			lay.states++
		case odebridge.KindDiff:
			if lay.firstDiff < 0 {
				lay.firstDiff = i
			}
		case odebridge.KindParam:
			if lay.firstParam < 0 {
				lay.firstParam = i
			}
			lay.params++
		}
	}

	if wantStates > 0 && lay.states == 0 {
		return nil, errors.MissingBlock("state")
	}
	if wantStates > 0 && lay.firstDiff < 0 {
		return nil, errors.MissingBlock("derivative")
	}
	if wantParams > 0 && lay.params == 0 {
		return nil, errors.MissingBlock("parameter")
	}

	if lay.iv < 0 {
		if lay.firstState > 0 {
			lay.iv = lay.firstState - 1
		} else {
			return nil, errors.MissingBlock("independent variable")
		}
	}
	if lay.firstState < 0 {
		lay.firstState = lay.iv + 1
	}
	if lay.firstDiff < 0 {
		lay.firstDiff = lay.firstState + lay.states
	}
	if lay.firstParam < 0 {
		lay.firstParam = lay.firstDiff + lay.states
	}

	lay.buf = make([]float64, len(regs))
	for i, r := range regs {
		if r.Initial != nil {
			lay.buf[i] = *r.Initial
		}
	}
	return lay, nil
}
