package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseEncode  Phase = "encode"  // symbolic tree to IR
	PhaseCompile Phase = "compile" // engine compilation handshake
	PhaseLayout  Phase = "layout"  // register layout discovery
	PhaseEval    Phase = "eval"    // per-step evaluation
	PhaseLoad    Phase = "load"    // engine/module loading
	PhaseParse   Phase = "parse"   // wire document parsing
	PhaseRuntime Phase = "runtime" // everything else
)

// Kind categorizes the error
type Kind string

const (
	KindUnrecognizedNode Kind = "unrecognized_node"
	KindEngineRejected   Kind = "engine_rejected"
	KindFault            Kind = "fault"
	KindMissingBlock     Kind = "missing_block"
	KindInvalidData      Kind = "invalid_data"
	KindInvalidInput     Kind = "invalid_input"
	KindNotFound         Kind = "not_found"
	KindUnsupported      Kind = "unsupported"
	KindOutOfBounds      Kind = "out_of_bounds"
	KindFinalized        Kind = "finalized"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// UnrecognizedNode creates an encoding error for a node shape the encoder
// cannot classify. repr is the node's textual representation.
func UnrecognizedNode(repr string) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindUnrecognizedNode,
		Detail: fmt.Sprintf("unrecognized expression node %s", repr),
		Value:  repr,
	}
}

// Compilation creates an error carrying the engine's diagnostic text
// verbatim.
func Compilation(diagnostic string) *Error {
	return &Error{
		Phase:  PhaseCompile,
		Kind:   KindEngineRejected,
		Detail: diagnostic,
	}
}

// EvaluationFault creates a recoverable per-call evaluation error.
func EvaluationFault(detail string, args ...any) *Error {
	return &Error{
		Phase:  PhaseEval,
		Kind:   KindFault,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// MissingBlock creates a layout discovery anomaly: a required register
// block was not found in the descriptor sequence.
func MissingBlock(block string) *Error {
	return &Error{
		Phase:  PhaseLayout,
		Kind:   KindMissingBlock,
		Detail: fmt.Sprintf("no %s registers in descriptor sequence", block),
	}
}

// Finalized creates an error for operations on a released handle.
func Finalized(what string) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindFinalized,
		Detail: fmt.Sprintf("%s already finalized", what),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// Load creates an engine loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
