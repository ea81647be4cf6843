// Package telemetry provides opt-in OpenTelemetry tracing for validation
// runs. When tracing is disabled, spans go to the global no-op provider and
// no exporter is created.
package telemetry

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// Config controls whether and how validation runs are traced
type Config struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	// SamplerType is one of always, never or ratio. Empty means always.
	SamplerType  string
	SamplerRatio float64
	// Attributes describe the checked tree (skills root, rules directory,
	// profile) and are attached to the trace resource. Empty values are
	// dropped.
	Attributes map[string]string
	// Exporter replaces the OTLP HTTP exporter, whose endpoint otherwise
	// comes from the OTEL_EXPORTER_OTLP_* variables
	Exporter trace.SpanExporter
}

// InitTracer installs a global tracer provider and returns its shutdown
// function, which flushes pending spans. Disabled tracing installs nothing.
func InitTracer(ctx context.Context, cfg Config) (shutdown func(context.Context) error, err error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	sampler, err := ParseSampler(cfg.SamplerType, cfg.SamplerRatio)
	if err != nil {
		return nil, err
	}

	exporter := cfg.Exporter
	if exporter == nil {
		if exporter, err = otlptracehttp.New(ctx); err != nil {
			return nil, errors.Wrap(err, "failed to create trace exporter")
		}
	}

	provider := trace.NewTracerProvider(
		trace.WithResource(resource.NewSchemaless(resourceAttributes(cfg)...)),
		trace.WithBatcher(exporter, trace.WithBatchTimeout(time.Second)),
		trace.WithSampler(sampler),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	// Shutting the provider down flushes the batcher and stops the exporter
	return provider.Shutdown, nil
}

func resourceAttributes(cfg Config) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	}

	keys := make([]string, 0, len(cfg.Attributes))
	for k, v := range cfg.Attributes {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, attribute.String(k, cfg.Attributes[k]))
	}
	return attrs
}

// ParseSampler maps a sampler name and ratio onto an SDK sampler. The ratio
// sampler respects the parent span's decision.
func ParseSampler(kind string, ratio float64) (trace.Sampler, error) {
	switch kind {
	case "", "always":
		return trace.AlwaysSample(), nil
	case "never":
		return trace.NeverSample(), nil
	case "ratio":
		if ratio < 0 || ratio > 1 {
			return nil, errors.Errorf("tracing ratio must be between 0 and 1, got %g", ratio)
		}
		return trace.ParentBased(trace.TraceIDRatioBased(ratio)), nil
	default:
		return nil, errors.Errorf("unknown tracing sampler '%s', must be one of: always, never, ratio", kind)
	}
}
