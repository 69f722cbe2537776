package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:   PhaseConvert,
				Kind:    KindTypeMismatch,
				Path:    []string{"ITM_P2P_TLS", "pfl[3]"},
				GoType:  "string",
				WitType: "f64",
				Detail:  "value is not numeric",
			},
			contains: []string{"[convert]", "type_mismatch", "ITM_P2P_TLS.pfl[3]", "string", "f64", "value is not numeric"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseAlloc,
				Kind:  KindAllocation,
			},
			contains: []string{"[alloc]", "allocation"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseEngine,
				Kind:   KindTrap,
				Detail: "engine call aborted",
				Cause:  stderrors.New("unreachable"),
			},
			contains: []string{"[engine]", "trap", "engine call aborted", "caused by", "unreachable"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := &Error{
		Phase: PhaseLoad,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseConvert,
		Kind:  KindTypeMismatch,
		Path:  []string{"pfl[0]"},
	}

	if !err.Is(ErrConversion) {
		t.Error("should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseBind, Kind: KindTypeMismatch}) {
		t.Error("should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseConvert, Kind: KindOutOfBounds}) {
		t.Error("should not match different kind")
	}

	wrapped := fmt.Errorf("call failed: %w", err)
	if !Is(wrapped, ErrConversion) {
		t.Error("Is should see through wrapping")
	}

	var target *Error
	if !As(wrapped, &target) || target != err {
		t.Error("As should extract the structured error")
	}
}

func TestBuilder(t *testing.T) {
	cause := stderrors.New("root")
	err := New(PhaseConvert, KindTypeMismatch).
		Path("ITM_AREA_CR", "mdvar").
		GoType("float64").
		WitType("s32").
		Value(1.5).
		Cause(cause).
		Detail("not an integral value in %s range", "s32").
		Build()

	if err.Phase != PhaseConvert {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseConvert)
	}
	if err.Kind != KindTypeMismatch {
		t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
	}
	if len(err.Path) != 2 || err.Path[1] != "mdvar" {
		t.Errorf("Path = %v", err.Path)
	}
	if err.GoType != "float64" || err.WitType != "s32" {
		t.Errorf("types = %q/%q", err.GoType, err.WitType)
	}
	if err.Value != 1.5 {
		t.Errorf("Value = %v", err.Value)
	}
	if err.Cause != cause {
		t.Error("Cause not set")
	}
	if err.Detail != "not an integral value in s32 range" {
		t.Errorf("Detail = %q", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		err   *Error
		name  string
		phase Phase
		kind  Kind
		text  string
	}{
		{TypeMismatch(PhaseConvert, []string{"f_mhz"}, "string", "f64"), "type_mismatch", PhaseConvert, KindTypeMismatch, "f_mhz"},
		{NotNumeric([]string{"pfl[2]"}, "bool", "f64", true), "not_numeric", PhaseConvert, KindTypeMismatch, "not numeric"},
		{AllocationFailed(PhaseAlloc, 1024, 8), "allocation", PhaseAlloc, KindAllocation, "1024 bytes"},
		{OutOfBounds(PhaseConvert, []string{"pfl"}, 10, 5), "out_of_bounds", PhaseConvert, KindOutOfBounds, "[10, 15)"},
		{Overflow(PhaseConvert, []string{"climate"}, 1 << 40, "s32"), "overflow", PhaseConvert, KindOverflow, "overflows s32"},
		{Arity("ITM_P2P_TLS", 14, 3), "arity", PhaseBind, KindArity, "expected 14 arguments, got 3"},
		{NotFound(PhaseBind, "function", "ITM_FOO"), "not_found", PhaseBind, KindNotFound, `"ITM_FOO"`},
		{NotInitialized(PhaseEngine, "engine"), "not_initialized", PhaseEngine, KindNotInitialized, "engine"},
		{InvalidInput(PhaseConfig, "bad level"), "invalid_input", PhaseConfig, KindInvalidInput, "bad level"},
		{Trap("ITM_AREA_TLS", stderrors.New("oom")), "trap", PhaseEngine, KindTrap, "oom"},
		{Load("compile module", stderrors.New("bad magic")), "load", PhaseLoad, KindInvalidData, "bad magic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Phase != tt.phase || tt.err.Kind != tt.kind {
				t.Errorf("got %s/%s, want %s/%s", tt.err.Phase, tt.err.Kind, tt.phase, tt.kind)
			}
			if !strings.Contains(tt.err.Error(), tt.text) {
				t.Errorf("message %q does not contain %q", tt.err.Error(), tt.text)
			}
		})
	}
}

func TestSentinels(t *testing.T) {
	if !Is(NotFound(PhaseBind, "function", "x"), ErrNotFound) {
		t.Error("NotFound should match ErrNotFound")
	}
	if !Is(Arity("f", 1, 2), ErrArity) {
		t.Error("Arity should match ErrArity")
	}
	if Is(NotFound(PhaseLoad, "export", "malloc"), ErrNotFound) {
		t.Error("load phase not_found should not match the bind sentinel")
	}
}
