// Package telemetry wires OpenTelemetry tracing and metrics for completion
// requests. Traces go to a file through the stdout exporter; metrics are
// kept in memory behind a manual reader and summarized on demand.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/CWBudde/go-emmet-lsp/completion"

// Config controls which signals are recorded.
type Config struct {
	ServiceName string

	// TraceFile receives one JSON document per span. Empty disables tracing.
	TraceFile string

	EnableMetrics bool
}

// Provider owns the tracer and meter providers and the completion
// instruments derived from them. A nil *Provider is valid and records
// nothing.
type Provider struct {
	cfg            Config
	reader         *sdkmetric.ManualReader
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	traceFile      *os.File
	meter          metric.Meter
	tracer         trace.Tracer

	completions  *Completions
	shutdownOnce sync.Once
}

// Setup creates the providers requested by cfg.
func Setup(ctx context.Context, cfg Config) (*Provider, error) {
	if strings.TrimSpace(cfg.ServiceName) == "" {
		cfg.ServiceName = "go-emmet-lsp"
	}

	p := &Provider{cfg: cfg}

	if !cfg.EnableMetrics && cfg.TraceFile == "" {
		p.completions = newCompletions(p)
		return p, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			attribute.String("service.name", cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build resource: %w", err)
	}

	if cfg.EnableMetrics {
		p.reader = sdkmetric.NewManualReader()
		p.meterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(p.reader),
			sdkmetric.WithResource(res),
		)
		otel.SetMeterProvider(p.meterProvider)
		p.meter = p.meterProvider.Meter(instrumentationName)
	}

	if cfg.TraceFile != "" {
		tp, f, err := createTracerProvider(cfg.TraceFile, res)
		if err != nil {
			_ = p.Shutdown(ctx)
			return nil, err
		}

		p.tracerProvider = tp
		p.traceFile = f
		otel.SetTracerProvider(tp)
		p.tracer = tp.Tracer(instrumentationName)
	}

	p.completions = newCompletions(p)

	return p, nil
}

func createTracerProvider(path string, res *resource.Resource) (*sdktrace.TracerProvider, *os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open trace file: %w", err)
	}

	exp, err := stdouttrace.New(stdouttrace.WithWriter(f))
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("init stdout trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp, sdktrace.WithMaxExportBatchSize(64)),
		sdktrace.WithResource(res),
	)

	return tp, f, nil
}

// Shutdown flushes pending spans and stops the providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}

	var err error

	p.shutdownOnce.Do(func() {
		var errs []error

		if p.meterProvider != nil {
			if shutdownErr := p.meterProvider.Shutdown(ctx); shutdownErr != nil {
				errs = append(errs, shutdownErr)
			}
		}

		if p.tracerProvider != nil {
			if shutdownErr := p.tracerProvider.Shutdown(ctx); shutdownErr != nil {
				errs = append(errs, shutdownErr)
			}
		}

		if p.traceFile != nil {
			if closeErr := p.traceFile.Close(); closeErr != nil {
				errs = append(errs, closeErr)
			}
		}

		err = errors.Join(errs...)
	})

	return err
}

// Completions returns the completion instruments.
func (p *Provider) Completions() *Completions {
	if p == nil {
		return nil
	}

	return p.completions
}

// CompletionCounts collects the completion counter and returns the totals
// per outcome. It returns nil when metrics are disabled.
func (p *Provider) CompletionCounts(ctx context.Context) (map[string]int64, error) {
	if p == nil || p.reader == nil {
		return nil, nil
	}

	var rm metricdata.ResourceMetrics
	if err := p.reader.Collect(ctx, &rm); err != nil {
		return nil, fmt.Errorf("collect metrics: %w", err)
	}

	counts := map[string]int64{}

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != counterName {
				continue
			}

			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}

			for _, dp := range sum.DataPoints {
				outcome, _ := dp.Attributes.Value(attrOutcome)
				counts[outcome.AsString()] += dp.Value
			}
		}
	}

	return counts, nil
}
