package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestErrorFormat(t *testing.T) {
	tests := []struct {
		err  *Error
		name string
		want string
	}{
		{
			UnrecognizedNode("Foo(x)"),
			"unrecognized_node",
			`[encode] unrecognized_node: unrecognized expression node Foo(x)`,
		},
		{
			Compilation("Parse error"),
			"compilation",
			"[compile] engine_rejected: Parse error",
		},
		{
			EvaluationFault("engine reported status %d", 1),
			"fault",
			"[eval] fault: engine reported status 1",
		},
		{
			MissingBlock("State"),
			"missing_block",
			"[layout] missing_block: no State registers in descriptor sequence",
		},
		{
			OutOfBounds(PhaseEval, []string{"du"}, 5, 3),
			"out_of_bounds",
			"[eval] out_of_bounds at du: index 5 out of bounds (length 3)",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Error(); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestErrorIs(t *testing.T) {
	err := EvaluationFault("boom")
	if !stderrors.Is(err, &Error{Phase: PhaseEval, Kind: KindFault}) {
		t.Error("expected match on phase+kind")
	}
	if stderrors.Is(err, &Error{Phase: PhaseCompile, Kind: KindFault}) {
		t.Error("unexpected match with different phase")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := Load("open engine", cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected unwrap to reach the cause")
	}
	if !strings.Contains(err.Error(), "caused by: root cause") {
		t.Errorf("cause missing from rendering: %s", err.Error())
	}
}

func TestBuilder(t *testing.T) {
	err := New(PhaseParse, KindInvalidData).
		Path("odes", "1", "rhs").
		Detail("bad node tag %q", "Blob").
		Build()

	want := `[parse] invalid_data at odes.1.rhs: bad node tag "Blob"`
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}
