// Package binding declares the ITM entry points and result records under
// their stable external names.
//
// The registry is built once per process. It declares two WIT records,
// ITMResult and ITMResultEx, whose field names are resolved against the `itm`
// struct tags of result.Compact and result.FlatExtended; a declared field
// with no matching Go field panics at init. Canonical ABI layouts for both
// records are computed from the declarations:
//
//	ITMResult    size 16, align 8: status@0 warnings@4 A_db@8
//	ITMResultEx  size 112, align 8: ... d__km@96 mode@104
//
// The eight functions keep a fixed parameter order. Point-to-point
// functions take a pfl: list<f64> after the two heights; area functions
// take site criteria, distance and irregularity in its place.
//
// Host is the dynamic calling surface:
//
//	host := binding.NewHost(dispatch.New(dispatch.Native{}))
//	rec, err := host.Call(ctx, "ITM_P2P_TLS", 10.0, 10.0, pfl, 5, 301.0, 100.0, 1, 15.0, 0.005, 0, 50.0, 50.0, 50.0)
//
// Unknown names and wrong argument counts fail with phase bind before any
// conversion happens.
package binding
