package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/wippyai/itm-bind/binding"
	"github.com/wippyai/itm-bind/dispatch"
	"github.com/wippyai/itm-bind/engine"
	"github.com/wippyai/itm-bind/internal/config"
	"github.com/wippyai/itm-bind/internal/observability"
	"github.com/wippyai/itm-bind/runtime"
)

// app holds everything a command needs: the configured engine behind a
// binding host plus the ambient logger, metrics and tracing.
type app struct {
	cfg       config.Config
	log       *zap.Logger
	collector *observability.Collector
	host      *binding.Host
	closers   []func(context.Context) error
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	log, err := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	dispatch.SetLogger(log.Named("dispatch"))
	engine.SetLogger(log.Named("engine"))
	runtime.SetLogger(log.Named("runtime"))

	a := &app{cfg: cfg, log: log}

	tp, shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
		Exporter:    cfg.TraceExporter,
		SampleRatio: cfg.TraceSampleRatio,
	}, log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func(ctx context.Context) error {
		observability.ShutdownWithTimeout(ctx, shutdown, log)
		return nil
	})

	a.collector, err = observability.NewCollector(prometheus.NewRegistry())
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	eng, err := a.engine(ctx)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	d := dispatch.New(eng,
		dispatch.WithObserver(a.collector),
		dispatch.WithTracerProvider(tp),
		dispatch.WithLogger(log.Named("dispatch")))
	a.host = binding.NewHost(d, binding.WithBoundaryObserver(a.collector))

	log.Debug("app ready", zap.String("engine", cfg.Engine))
	return a, nil
}

func (a *app) engine(ctx context.Context) (dispatch.Engine, error) {
	if a.cfg.Engine != config.EngineWasm {
		return dispatch.Native{}, nil
	}
	wasm, err := os.ReadFile(a.cfg.WasmPath)
	if err != nil {
		return nil, fmt.Errorf("read engine module: %w", err)
	}
	eng, err := engine.Load(ctx, wasm, engine.Config{MemoryLimitPages: a.cfg.MemoryLimitPages})
	if err != nil {
		return nil, fmt.Errorf("load engine: %w", err)
	}
	a.closers = append(a.closers, eng.Close)
	return eng, nil
}

// runtime builds a guest runtime whose "itm" imports call this app's host.
func (a *app) runtime(ctx context.Context) (*runtime.Runtime, error) {
	opts := []runtime.Option{runtime.WithWASI()}
	if a.cfg.MemoryLimitPages > 0 {
		opts = append(opts, runtime.WithMemoryLimitPages(a.cfg.MemoryLimitPages))
	}
	return runtime.New(ctx, a.host, opts...)
}

func (a *app) dumpMetrics(w io.Writer) error {
	return a.collector.WriteText(w)
}

func (a *app) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.log.Warn("close failed", zap.Error(err))
		}
	}
	a.closers = nil
	_ = a.log.Sync()
}
