// Package itmbind exposes the ITM (Longley-Rice) radio propagation model to
// hosts that cannot call the numeric engine directly.
//
// The boundary converts dynamic host values (Go any values, JSON documents,
// or WebAssembly linear memory) into the fixed numeric arguments of one
// engine routine, invokes it synchronously, and projects its outputs into a
// compact or extended result record.
//
// # Architecture Overview
//
//	itmbind/             Root package with Memory and Allocator interfaces
//	├── itm/             Pure Go ITM engine (point-to-point and area modes)
//	├── transcoder/      Terrain profile adapter, scalar coercion, record layout
//	├── result/          Compact and extended result records
//	├── dispatch/        The eight entry points over a pluggable Engine
//	├── binding/         Process-wide record and function declarations, Host
//	├── runtime/         wazero host module "itm" for WebAssembly guests
//	├── engine/          Engine backed by a wasm32 build of the C library
//	├── errors/          Structured boundary errors
//	├── internal/        Environment config, logging, metrics and tracing
//	└── cmd/itm/         CLI and interactive TUI
//
// # Quick Start
//
//	host := binding.NewHost(dispatch.New(dispatch.Native{}))
//	out, err := host.Call(ctx, "ITM_AREA_TLS_r",
//	    10.0, 10.0, 0, 0, 10.0, 90.0, 5, 301.0, 100.0, 1, 15.0, 0.005, 3,
//	    50.0, 50.0, 50.0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(out["status"], out["A_db"])
//
// # Status Codes
//
// Status and warning values are owned by the engine and returned verbatim.
// Boundary failures (a non-numeric profile sample, an oversized profile, an
// unknown function name) are returned as *errors.Error and never folded
// into the status code.
//
// # Thread Safety
//
// Every call is synchronous and independent. The Host, Dispatcher and the
// native engine hold no mutable state and are safe for concurrent use. A
// WebAssembly-backed engine serializes calls into its single guest instance.
package itmbind
