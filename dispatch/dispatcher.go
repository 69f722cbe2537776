package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/wippyai/itm-bind/errors"
	"github.com/wippyai/itm-bind/itm"
	"github.com/wippyai/itm-bind/result"
)

// External operation names.
const (
	OpP2PTLS    = "ITM_P2P_TLS"
	OpP2PCR     = "ITM_P2P_CR"
	OpP2PTLSEx  = "ITM_P2P_TLS_Ex"
	OpP2PCREx   = "ITM_P2P_CR_Ex"
	OpAreaTLS   = "ITM_AREA_TLS_r"
	OpAreaCR    = "ITM_AREA_CR_r"
	OpAreaTLSEx = "ITM_AREA_TLS_Ex_r"
	OpAreaCREx  = "ITM_AREA_CR_Ex_r"
)

const tracerName = "github.com/wippyai/itm-bind/dispatch"

// Observer is notified once per call. err is non-nil only for failures
// outside the engine's status codes.
type Observer interface {
	ObserveCall(op string, status int, err error, elapsed time.Duration)
}

// Dispatcher invokes exactly one engine routine per operation and projects
// its outputs into result records. It keeps no state between calls and is
// safe for concurrent use when its engine is.
type Dispatcher struct {
	engine   Engine
	observer Observer
	tracer   trace.Tracer
	logger   *zap.Logger
}

type Option func(*Dispatcher)

// WithObserver registers an observer notified after each call.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) { d.observer = o }
}

// WithTracerProvider overrides the global OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(d *Dispatcher) { d.tracer = tp.Tracer(tracerName) }
}

// WithLogger overrides the package logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

func New(engine Engine, opts ...Option) *Dispatcher {
	d := &Dispatcher{engine: engine}
	for _, opt := range opts {
		opt(d)
	}
	if d.tracer == nil {
		d.tracer = otel.Tracer(tracerName)
	}
	if d.logger == nil {
		d.logger = Logger()
	}
	return d
}

func (d *Dispatcher) P2PTLS(ctx context.Context, g PointToPoint, v TLS) (result.Compact, error) {
	return d.compact(ctx, OpP2PTLS, func(ctx context.Context, aDB *float64, w *int64) (int, error) {
		return d.engine.P2PTLS(ctx, g, v, aDB, w)
	})
}

func (d *Dispatcher) P2PCR(ctx context.Context, g PointToPoint, v CR) (result.Compact, error) {
	return d.compact(ctx, OpP2PCR, func(ctx context.Context, aDB *float64, w *int64) (int, error) {
		return d.engine.P2PCR(ctx, g, v, aDB, w)
	})
}

func (d *Dispatcher) P2PTLSEx(ctx context.Context, g PointToPoint, v TLS) (result.Extended, error) {
	return d.extended(ctx, OpP2PTLSEx, func(ctx context.Context, aDB *float64, w *int64, iv *itm.IntermediateValues) (int, error) {
		return d.engine.P2PTLSEx(ctx, g, v, aDB, w, iv)
	})
}

func (d *Dispatcher) P2PCREx(ctx context.Context, g PointToPoint, v CR) (result.Extended, error) {
	return d.extended(ctx, OpP2PCREx, func(ctx context.Context, aDB *float64, w *int64, iv *itm.IntermediateValues) (int, error) {
		return d.engine.P2PCREx(ctx, g, v, aDB, w, iv)
	})
}

func (d *Dispatcher) AreaTLS(ctx context.Context, g Area, v TLS) (result.Compact, error) {
	return d.compact(ctx, OpAreaTLS, func(ctx context.Context, aDB *float64, w *int64) (int, error) {
		return d.engine.AreaTLS(ctx, g, v, aDB, w)
	})
}

func (d *Dispatcher) AreaCR(ctx context.Context, g Area, v CR) (result.Compact, error) {
	return d.compact(ctx, OpAreaCR, func(ctx context.Context, aDB *float64, w *int64) (int, error) {
		return d.engine.AreaCR(ctx, g, v, aDB, w)
	})
}

func (d *Dispatcher) AreaTLSEx(ctx context.Context, g Area, v TLS) (result.Extended, error) {
	return d.extended(ctx, OpAreaTLSEx, func(ctx context.Context, aDB *float64, w *int64, iv *itm.IntermediateValues) (int, error) {
		return d.engine.AreaTLSEx(ctx, g, v, aDB, w, iv)
	})
}

func (d *Dispatcher) AreaCREx(ctx context.Context, g Area, v CR) (result.Extended, error) {
	return d.extended(ctx, OpAreaCREx, func(ctx context.Context, aDB *float64, w *int64, iv *itm.IntermediateValues) (int, error) {
		return d.engine.AreaCREx(ctx, g, v, aDB, w, iv)
	})
}

type compactCall func(ctx context.Context, aDB *float64, warnings *int64) (int, error)

type extendedCall func(ctx context.Context, aDB *float64, warnings *int64, iv *itm.IntermediateValues) (int, error)

func (d *Dispatcher) compact(ctx context.Context, op string, call compactCall) (result.Compact, error) {
	var (
		aDB      float64
		warnings int64
	)
	status, err := d.invoke(ctx, op, &warnings, func(ctx context.Context) (int, error) {
		return call(ctx, &aDB, &warnings)
	})
	if err != nil {
		return result.Compact{}, err
	}
	return result.Project(status, aDB, warnings), nil
}

func (d *Dispatcher) extended(ctx context.Context, op string, call extendedCall) (result.Extended, error) {
	var (
		aDB      float64
		warnings int64
		iv       itm.IntermediateValues
	)
	status, err := d.invoke(ctx, op, &warnings, func(ctx context.Context) (int, error) {
		return call(ctx, &aDB, &warnings, &iv)
	})
	if err != nil {
		return result.Extended{}, err
	}
	return result.ProjectExtended(status, aDB, warnings, iv), nil
}

func (d *Dispatcher) invoke(ctx context.Context, op string, warnings *int64, call func(context.Context) (int, error)) (int, error) {
	if d.engine == nil {
		return 0, errors.NotInitialized(errors.PhaseEngine, "engine")
	}

	callID := uuid.NewString()
	ctx, span := d.tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("itm.operation", op),
		attribute.String("itm.call_id", callID),
	))
	defer span.End()

	start := time.Now()
	status, err := call(ctx)
	elapsed := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.logger.Warn("engine call failed",
			zap.String("call_id", callID),
			zap.String("op", op),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
	} else {
		span.SetAttributes(
			attribute.Int("itm.status", status),
			attribute.Int64("itm.warnings", *warnings),
		)
		d.logger.Debug("engine call",
			zap.String("call_id", callID),
			zap.String("op", op),
			zap.Int("status", status),
			zap.Int64("warnings", *warnings),
			zap.Duration("elapsed", elapsed))
	}

	if d.observer != nil {
		d.observer.ObserveCall(op, status, err, elapsed)
	}
	return status, err
}
