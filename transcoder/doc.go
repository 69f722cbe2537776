// Package transcoder converts host values into the fixed-layout arguments of
// the ITM engine.
//
// # Terrain Profiles
//
// Profile accepts any ordered sequence of numbers ([]float64, []int,
// []any holding JSON numbers, arrays, ...) and returns a freshly allocated
// []float64 with the same length and order. A non-numeric element is a
// conversion error carrying its index:
//
//	[convert] type_mismatch at ITM_P2P_TLS.pfl[3]: Go type string, WIT type f64 - value is not numeric
//
// ReadProfile and WriteProfile do the same for WebAssembly linear memory,
// where a profile is (ptr, len) of little-endian f64 values.
//
// # Scalars
//
// Float64 and Int32 coerce the remaining parameters. Integral floats are
// accepted for s32 parameters, since JSON decodes every number as float64.
//
// # Layout
//
// LayoutCalculator computes Canonical ABI size, alignment and field offsets
// for WIT records; FlatTypes gives the core wasm signature of a parameter.
package transcoder
