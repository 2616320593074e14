// Package errors provides structured error types for the bridge.
//
// Errors carry a Phase (where in processing the failure happened) and a
// Kind (what category of failure it is), plus an optional field path,
// detail text, and cause. The rendered form is stable and greppable:
//
//	[encode] unrecognized_node: unrecognized expression node Foo(x)
//	[compile] engine_rejected: Parse error
//	[eval] fault: engine reported status 1
//
// Two errors match under errors.Is when Phase and Kind agree, so callers
// can classify failures without string inspection:
//
//	if errors.Is(err, &errors.Error{Phase: errors.PhaseEval, Kind: errors.KindFault}) {
//	    // recoverable per-call fault: abort the step, not the run
//	}
//
// Encoding and compilation errors are fatal to the current model-build
// attempt. Evaluation faults are recoverable per call; the caller's
// buffers keep their contents from before the failed call.
package errors
