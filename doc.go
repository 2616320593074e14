// Package odebridge connects a symbolic description of an ODE system to an
// external evaluation engine that compiles the model and evaluates its
// right-hand side inside a numerical integration loop.
//
// The library owns the expression intermediate representation (IR), its
// JSON wire encoding, and the invocation protocol for compiled models; the
// code generators, the symbolic algebra layer that builds the equations,
// and the integrator driving the time steps are external collaborators.
//
// # Architecture Overview
//
//	odebridge/           Root package with Engine and Evaluator interfaces
//	├── ir/              Expression IR, wire codec, operator canonicalization
//	├── symbolic/        Source-side expression trees and the IR encoder
//	├── bridge/          Compile handshake, layout discovery, evaluators
//	├── interp/          In-process bytecode engine (both generations)
//	├── enginewasm/      wazero adapter for an engine built to WebAssembly
//	├── resource/        Handle tables with exactly-once release
//	└── errors/          Structured error types
//
// # Quick Start
//
// Encode a symbolic system and evaluate it with the in-process engine:
//
//	doc, err := symbolic.EncodeModel(src, ir.NormalizeFull)
//	eng := interp.New()
//	model, err := bridge.Compile(ctx, eng, doc, bridge.Options{Backend: odebridge.BackendBytecode})
//	defer model.Close()
//
//	du := make([]float64, model.StateCount())
//	err = model.Evaluate(ctx, du, u, p, t)
//
// # Protocol Generations
//
// Legacy engines (SharedEngine) expose the whole register file as one flat
// buffer and report its layout through register descriptors. Later engines
// (DiscreteEngine) take four independent buffers per call and report only
// scalar counts. The bridge hides the difference behind Evaluator.
//
// # Thread Safety
//
// A compiled model and its buffers belong to one goroutine. Run several
// independent model instances by compiling one handle per goroutine; no
// resource is shared between them.
package odebridge
