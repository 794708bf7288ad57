package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "epicflow"

// StartOrchestrationSpan starts a span covering a full work-item orchestration.
func StartOrchestrationSpan(ctx context.Context, issueNumber int, mode string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "orchestrate",
		trace.WithAttributes(
			attribute.Int("epic.issue_number", issueNumber),
			attribute.String("epic.analysis_mode", mode),
		),
	)
}

// StartClassifySpan starts a span for the classification phase.
func StartClassifySpan(ctx context.Context, issueNumber int) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "classify",
		trace.WithAttributes(
			attribute.Int("epic.issue_number", issueNumber),
		),
	)
}

// StartProviderResolveSpan starts a span for provider profile resolution.
func StartProviderResolveSpan(ctx context.Context, domain string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "provider.resolve",
		trace.WithAttributes(
			attribute.String("provider.domain", domain),
		),
	)
}
