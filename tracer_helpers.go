package basictracer

import (
	"context"

	opentracing "github.com/opentracing/opentracing-go"
)

// ActiveSpan returns the span active in ctx according to tracer's scope
// manager, or nil when there is none.
func ActiveSpan(ctx context.Context, tracer opentracing.Tracer) (opentracing.Span, error) {
	bt, ok := tracer.(*Tracer)
	if !ok {
		reportUnsupportedTracer(tracer)
		return nil, newErrNotBasicTracer(tracer)
	}
	scope := bt.scopeManager.Active(ctx)
	if scope == nil {
		return nil, nil
	}
	return scope.Span(), nil
}

// StartActiveSpan starts a span named operationName as a child of the span
// active in ctx and activates it. The scope finishes the span on Close.
func StartActiveSpan(ctx context.Context, tracer opentracing.Tracer, operationName string, opts ...opentracing.StartSpanOption) (context.Context, Scope, error) {
	bt, ok := tracer.(*Tracer)
	if !ok {
		reportUnsupportedTracer(tracer)
		return ctx, nil, newErrNotBasicTracer(tracer)
	}
	span := bt.StartSpan(operationName, append(opts, ActiveContext(ctx))...)
	ctx, scope := bt.scopeManager.Activate(ctx, span, true)
	return ctx, scope, nil
}

// SpanErrors returns the usage errors recorded on span. Spans from other
// tracers have none.
func SpanErrors(span opentracing.Span) []error {
	if s, ok := span.(Span); ok {
		return s.Errors()
	}
	return nil
}

// reportUnsupportedTracer tells the default tracer's event handler, if one
// is set, that a helper was handed a foreign tracer.
func reportUnsupportedTracer(tracer opentracing.Tracer) {
	if dt, ok := DefaultTracer(); ok {
		dt.options.OnEvent(newEventUnsupportedTracer(tracer))
	}
}
