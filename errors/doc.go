// Package errors provides structured error types for the ITM binding layer.
//
// Errors are categorized by Phase (where in the call the error occurred) and
// Kind (error category). Boundary failures such as a non-numeric terrain
// sample or an oversized profile buffer are reported through this type and
// never through the engine's status code, so callers can tell them apart:
//
//	[convert] type_mismatch at ITM_P2P_TLS.pfl.3: Go type string, WIT type f64 - value is not numeric
//	[alloc] allocation: failed to allocate 1073741832 bytes (align 8)
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
//		Path("ITM_AREA_TLS_r", "climate").
//		GoType("string").
//		WitType("s32").
//		Build()
//
// All errors implement the standard error interface and support errors.Is/As.
// Is compares Phase and Kind only, so the exported sentinels (ErrConversion,
// ErrAllocation, ErrNotFound, ErrArity) match any error of that category.
package errors
