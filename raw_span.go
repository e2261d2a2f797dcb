package basictracer

import (
	"time"

	opentracing "github.com/opentracing/opentracing-go"
)

// Reference is a typed edge from a span to an earlier SpanContext.
type Reference struct {
	Type    opentracing.SpanReferenceType
	Context SpanContext
}

// RawSpan encapsulates all state associated with a (finished) Span.
type RawSpan struct {
	// Those recording the RawSpan should also record the contents of its
	// SpanContext.
	Context SpanContext

	// The SpanID of the preferred parent, or 0 if there is no parent. Not
	// propagated; it only serves to assemble span lists into trees.
	ParentSpanID uint64

	// The name of the "operation" this span is an instance of. (Called a "span
	// name" in some implementations)
	Operation string

	Start      time.Time
	FinishTime time.Time
	// FinishTime - Start. Not clamped: a finish time before the start
	// yields a negative duration.
	Duration time.Duration

	// Essentially an extension mechanism. Can be used for many purposes,
	// not to be enumerated here.
	Tags opentracing.Tags

	// The span's "microlog".
	Logs []opentracing.LogRecord

	// Number of log records discarded because of MaxLogsPerSpan or
	// DropAllLogs.
	DroppedLogs int

	// The references the span was started with, in order.
	References []Reference

	// Usage errors recorded before the span finished.
	Errors []error
}

// IsRoot reports whether the span has no parent.
func (r RawSpan) IsRoot() bool {
	return r.ParentSpanID == 0
}
