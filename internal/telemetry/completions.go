package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Completion outcomes.
const (
	OutcomeExpanded  = "expanded"
	OutcomeEmpty     = "empty"
	OutcomeMalformed = "malformed"
	OutcomeExcluded  = "excluded"
	OutcomeError     = "error"
)

const (
	counterName   = "emmet.completions_total"
	histogramName = "emmet.completion.duration"

	attrOutcome = attribute.Key("emmet.outcome")
)

// Completions records one span and one counter increment per completion
// request.
type Completions struct {
	counter  metric.Int64Counter
	duration metric.Float64Histogram
	tracer   trace.Tracer
}

// RequestInfo describes a completion request.
type RequestInfo struct {
	RequestID string
	URI       string
	Language  string
	Line      int
	Character int
}

// Handle tracks one request between Start and Finish.
type Handle struct {
	ctx   context.Context
	span  trace.Span
	start time.Time
	attrs []attribute.KeyValue
}

func newCompletions(p *Provider) *Completions {
	c := &Completions{tracer: p.tracer}

	if p.meter != nil {
		c.counter, _ = p.meter.Int64Counter(
			counterName,
			metric.WithDescription("Number of completion requests by outcome"),
		)
		c.duration, _ = p.meter.Float64Histogram(
			histogramName,
			metric.WithDescription("Duration of completion requests"),
			metric.WithUnit("ms"),
		)
	}

	return c
}

// Start opens a span for the request when tracing is enabled.
func (c *Completions) Start(parent context.Context, info RequestInfo) (*Handle, context.Context) {
	if c == nil {
		return nil, parent
	}

	h := &Handle{
		ctx:   parent,
		start: time.Now(),
		attrs: []attribute.KeyValue{
			attribute.String("emmet.request_id", info.RequestID),
			attribute.String("emmet.language", info.Language),
		},
	}

	if c.tracer != nil {
		ctx, span := c.tracer.Start(parent, "textDocument/completion", trace.WithAttributes(
			append(h.attrs,
				attribute.String("lsp.uri", info.URI),
				attribute.Int("lsp.line", info.Line),
				attribute.Int("lsp.character", info.Character),
			)...,
		))
		h.ctx = ctx
		h.span = span
	}

	return h, h.ctx
}

// Finish records the outcome. abbreviation may be empty.
func (c *Completions) Finish(h *Handle, outcome, abbreviation string, err error) {
	if c == nil || h == nil {
		return
	}

	elapsed := time.Since(h.start)

	// Request ids stay out of metric attributes.
	attrs := append([]attribute.KeyValue{attrOutcome.String(outcome)}, h.attrs[1:]...)

	if c.counter != nil {
		c.counter.Add(h.ctx, 1, metric.WithAttributes(attrs...))
		c.duration.Record(h.ctx, float64(elapsed.Microseconds())/1000, metric.WithAttributes(attrs...))
	}

	if h.span != nil {
		h.span.SetAttributes(attrOutcome.String(outcome))

		if abbreviation != "" {
			h.span.SetAttributes(attribute.String("emmet.abbreviation", abbreviation))
		}

		if err != nil {
			h.span.RecordError(err)
			h.span.SetStatus(codes.Error, err.Error())
		}

		h.span.End()
	}
}
