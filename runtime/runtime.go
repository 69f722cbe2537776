package runtime

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	"github.com/wippyai/itm-bind/binding"
	"github.com/wippyai/itm-bind/errors"
)

// HostModuleName is the import module guests use for the ITM functions.
const HostModuleName = "itm"

// Config holds runtime options.
type Config struct {
	// MemoryLimitPages caps guest memory in 64KB pages. 0 keeps wazero's
	// default of 65536 pages (4GB).
	MemoryLimitPages uint32

	// WASI instantiates wasi_snapshot_preview1 for guests built against a
	// libc.
	WASI bool
}

type Option func(*Config)

func WithMemoryLimitPages(pages uint32) Option {
	return func(c *Config) { c.MemoryLimitPages = pages }
}

func WithWASI() Option {
	return func(c *Config) { c.WASI = true }
}

// Runtime hosts WebAssembly guests that import the ITM entry points.
type Runtime struct {
	runtime wazero.Runtime
	host    *binding.Host
}

// New creates a wazero runtime and instantiates the "itm" host module
// backed by host.
func New(ctx context.Context, host *binding.Host, opts ...Option) (*Runtime, error) {
	if host == nil {
		return nil, errors.NotInitialized(errors.PhaseHost, "host")
	}

	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}

	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	if cfg.WASI {
		if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
			_ = rt.Close(ctx)
			return nil, errors.Registration(errors.PhaseHost, wasi_snapshot_preview1.ModuleName, err)
		}
	}

	if err := instantiateHostModule(ctx, rt, host); err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}

	Logger().Debug("runtime ready", zap.String("module", HostModuleName), zap.Bool("wasi", cfg.WASI))
	return &Runtime{runtime: rt, host: host}, nil
}

func (r *Runtime) Host() *binding.Host {
	return r.host
}

// Close releases all runtime resources, including every instance.
func (r *Runtime) Close(ctx context.Context) error {
	return r.runtime.Close(ctx)
}

// LoadWASM compiles a core WebAssembly module. Imports from the "itm"
// module must match the host signatures.
func (r *Runtime) LoadWASM(ctx context.Context, wasm []byte) (*Module, error) {
	compiled, err := r.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.Load("compile module", err)
	}
	return &Module{runtime: r, compiled: compiled}, nil
}
