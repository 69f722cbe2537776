package observability

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// TracingConfig governs how tracing is initialised.
type TracingConfig struct {
	ServiceName string
	Exporter    string // none | stdout
	SampleRatio float64
	Writer      io.Writer // stdout exporter destination, default os.Stderr
}

// InitTracing installs a global tracer provider and returns it together
// with a shutdown function that flushes pending spans.
func InitTracing(ctx context.Context, cfg TracingConfig, log *zap.Logger) (trace.TracerProvider, func(context.Context) error, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if cfg.Exporter == "" || strings.EqualFold(cfg.Exporter, "none") {
		tp := noop.NewTracerProvider()
		otel.SetTracerProvider(tp)
		log.Debug("tracing disabled; using noop tracer provider")
		return tp, func(context.Context) error { return nil }, nil
	}

	exp, err := exporterFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	service := cfg.ServiceName
	if service == "" {
		service = "itm-bind"
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(attribute.String("service.name", service)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	log.Info("tracing enabled",
		zap.String("exporter", cfg.Exporter),
		zap.String("service_name", service),
		zap.Float64("sample_ratio", cfg.SampleRatio))

	return tp, tp.Shutdown, nil
}

func exporterFromConfig(cfg TracingConfig) (sdktrace.SpanExporter, error) {
	switch strings.ToLower(cfg.Exporter) {
	case "stdout":
		w := cfg.Writer
		if w == nil {
			w = os.Stderr
		}
		return stdouttrace.New(
			stdouttrace.WithWriter(w),
			stdouttrace.WithPrettyPrint(),
			stdouttrace.WithoutTimestamps(),
		)
	default:
		return nil, fmt.Errorf("unsupported tracing exporter: %s", cfg.Exporter)
	}
}

// ShutdownWithTimeout invokes shutdown with a bounded timeout, logging
// rather than returning failures.
func ShutdownWithTimeout(ctx context.Context, shutdown func(context.Context) error, log *zap.Logger) {
	if shutdown == nil {
		return
	}
	if log == nil {
		log = zap.NewNop()
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Warn("tracing shutdown failed", zap.Error(err))
	}
}
