// Package engine runs a wasm32 build of the NTIA ITM C library under wazero
// and exposes it as a dispatch.Engine.
//
// The module must export memory, malloc, free and the eight C functions
// ITM_P2P_TLS, ITM_P2P_TLS_Ex, ITM_P2P_CR, ITM_P2P_CR_Ex, ITM_AREA_TLS,
// ITM_AREA_TLS_Ex, ITM_AREA_CR and ITM_AREA_CR_Ex, with or without a
// leading underscore. WASI preview1 imports are satisfied by wazero.
//
//	wasm, _ := os.ReadFile("libitm.wasm")
//	eng, err := engine.Load(ctx, wasm, engine.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close(ctx)
//	d := dispatch.New(eng)
//
// Each call mallocs a 112-byte output block (A_db, warnings and the
// IntermediateValues struct) and, for point-to-point calls, the profile
// buffer. The output block is zeroed before the call; both are freed on
// every exit path. Malloc returning null is an allocation error in phase
// engine; a trap is an engine trap. Neither is an ITM status code.
package engine
