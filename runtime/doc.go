// Package runtime hosts WebAssembly guests that call ITM through imports.
//
// # Quick Start
//
//	ctx := context.Background()
//	host := binding.NewHost(dispatch.New(dispatch.Native{}))
//	rt, err := runtime.New(ctx, host)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	mod, err := rt.LoadWASM(ctx, wasmBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	inst, err := mod.Instantiate(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer inst.Close(ctx)
//
//	_, err = inst.Call(ctx, "run")
//
// # Guest ABI
//
// The host module is named "itm" and exports the eight functions under
// their registry names. Parameters are flattened as in the Canonical ABI:
// f64 stays f64, s32 becomes i32, and the terrain profile list<f64> becomes
// (ptr i32, len i32) pointing at len little-endian f64 values in the
// guest's memory. A final i32 is the result pointer; the host writes the
// ITMResult (16 bytes) or ITMResultEx (112 bytes) record there, 8-byte
// aligned.
//
//	(import "itm" "ITM_P2P_TLS"
//	  (func (param f64 f64 i32 i32 i32 f64 f64 i32 f64 f64 i32 f64 f64 f64 i32)))
//
// A profile outside guest memory, or a result pointer that does not fit
// the record, traps the guest call. The trap carries the boundary error.
//
// # Thread Safety
//
// A Runtime may be shared. Instances are not safe for concurrent calls.
package runtime
