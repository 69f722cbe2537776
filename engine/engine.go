package engine

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	"github.com/wippyai/itm-bind/dispatch"
	"github.com/wippyai/itm-bind/errors"
	"github.com/wippyai/itm-bind/transcoder"
)

// Config holds configuration for engine creation
type Config struct {
	// MemoryLimitPages sets the maximum guest memory in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	MemoryLimitPages uint32
}

// C entry points of the library. Extended variants add the "_Ex" suffix.
var entryPoints = []string{
	"ITM_P2P_TLS",
	"ITM_P2P_CR",
	"ITM_AREA_TLS",
	"ITM_AREA_CR",
}

// Engine runs a wasm32 build of the ITM C library. Calls are serialized:
// the library owns a single linear memory.
type Engine struct {
	runtime wazero.Runtime
	module  api.Module
	mem     transcoder.Memory
	alloc   *guestAllocator
	funcs   map[string]api.Function
	mu      sync.Mutex
}

var _ dispatch.Engine = (*Engine)(nil)

// Load compiles and instantiates the library. It must export the eight
// ITM functions, malloc and free, optionally with a leading underscore.
// A reactor's _initialize export runs once before first use.
func Load(ctx context.Context, wasm []byte, cfg Config) (*Engine, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	e, err := load(ctx, rt, wasm)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}
	return e, nil
}

func load(ctx context.Context, rt wazero.Runtime, wasm []byte) (*Engine, error) {
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		return nil, errors.Registration(errors.PhaseLoad, wasi_snapshot_preview1.ModuleName, err)
	}

	compiled, err := rt.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.Load("compile module", err)
	}

	modCfg := wazero.NewModuleConfig().
		WithName("libitm").
		WithStartFunctions()
	mod, err := rt.InstantiateModule(ctx, compiled, modCfg)
	if err != nil {
		return nil, errors.Instantiation(errors.PhaseLoad, err)
	}

	if init := exported(mod, "_initialize"); init != nil {
		if _, err := init.Call(ctx); err != nil {
			return nil, errors.Load("run _initialize", err)
		}
	}

	if mod.Memory() == nil {
		return nil, errors.NotFound(errors.PhaseLoad, "export", "memory")
	}

	malloc := exported(mod, "malloc")
	if malloc == nil {
		return nil, errors.NotFound(errors.PhaseLoad, "export", "malloc")
	}
	free := exported(mod, "free")
	if free == nil {
		return nil, errors.NotFound(errors.PhaseLoad, "export", "free")
	}

	funcs := make(map[string]api.Function, 2*len(entryPoints))
	for _, base := range entryPoints {
		for _, name := range []string{base, base + "_Ex"} {
			fn := exported(mod, name)
			if fn == nil {
				return nil, errors.NotFound(errors.PhaseLoad, "export", name)
			}
			funcs[name] = fn
		}
	}

	Logger().Debug("engine loaded",
		zap.Int("functions", len(funcs)),
		zap.Uint32("memory_bytes", mod.Memory().Size()))

	return &Engine{
		runtime: rt,
		module:  mod,
		mem:     transcoder.WrapMemory(mod.Memory()),
		alloc:   &guestAllocator{malloc: malloc, free: free},
		funcs:   funcs,
	}, nil
}

// exported finds a C symbol with or without the leading underscore some
// toolchains add.
func exported(mod api.Module, name string) api.Function {
	if fn := mod.ExportedFunction(name); fn != nil {
		return fn
	}
	return mod.ExportedFunction("_" + name)
}

// Close releases the runtime and the library instance.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runtime.Close(ctx)
}
