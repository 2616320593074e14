// Package bridge drives the compile handshake and the per-step
// invocation protocols against a model engine.
//
// Compile submits a wire document, checks the engine's status report
// against the success sentinel and binds the resulting handle to an
// evaluator. Engines speaking the discrete-buffer protocol are bound
// through state/parameter counts; legacy engines are bound by scanning
// the register descriptor sequence and evaluating over one persistent
// flat buffer.
//
// A Model owns its engine handle and releases it exactly once through
// Close, including on every failed compile path after the engine has
// issued the handle.
package bridge
