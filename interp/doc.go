// Package interp is the in-process model engine: it compiles wire
// documents into straight-line threaded bytecode over a flat f64
// register file and evaluates them without leaving the process.
//
// The register file starts with four fixed constants (0, 1, -1, -0),
// then the independent variable, the state block, the derivative block
// and the parameter block; algebraic and observed definitions and
// scratch registers follow. Temp registers are recycled during lowering
// so deep expressions stay compact.
//
// The engine serves both invocation protocols. Legacy callers discover
// the layout through DefineRegs and evaluate over a caller-owned flat
// buffer with RunShared. Later callers use the counted discrete-buffer
// protocol: CountStates, InitialStates and Run(du, u, p, t) against
// program-private memory.
package interp
