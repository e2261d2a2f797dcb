package basictracer

import (
	"context"
	"time"

	opentracing "github.com/opentracing/opentracing-go"

	"github.com/szuecs/basictracer-go/internal/randx"
)

// SpanBuilder accumulates the settings for a new span. Obtain one with
// Tracer.BuildSpan. A builder is not safe for concurrent use.
type SpanBuilder struct {
	tracer        *Tracer
	ctx           context.Context
	operationName string
	startTime     time.Time
	tags          opentracing.Tags
	references    []opentracing.SpanReference

	// explicit is set once any reference was added, even one that the
	// resolver later skips.
	explicit     bool
	ignoreActive bool

	traceID      uint64
	spanID       uint64
	parentSpanID uint64
	sampled      *bool
}

// WithContext sets the context the active span is looked up in and that
// StartActive derives from. Defaults to context.Background().
func (b *SpanBuilder) WithContext(ctx context.Context) *SpanBuilder {
	b.ctx = ctx
	return b
}

// AsChildOf adds a ChildOf reference to parent.
func (b *SpanBuilder) AsChildOf(parent opentracing.SpanContext) *SpanBuilder {
	return b.AddReference(opentracing.ChildOfRef, parent)
}

// FollowsFrom adds a FollowsFrom reference to ctx.
func (b *SpanBuilder) FollowsFrom(ctx opentracing.SpanContext) *SpanBuilder {
	return b.AddReference(opentracing.FollowsFromRef, ctx)
}

// AddReference adds a reference of any type. A nil context is ignored.
func (b *SpanBuilder) AddReference(refType opentracing.SpanReferenceType, ctx opentracing.SpanContext) *SpanBuilder {
	if ctx == nil {
		return b
	}
	b.explicit = true
	b.references = append(b.references, opentracing.SpanReference{Type: refType, ReferencedContext: ctx})
	return b
}

// IgnoreActiveSpan keeps the active span from becoming the implicit parent.
func (b *SpanBuilder) IgnoreActiveSpan() *SpanBuilder {
	b.ignoreActive = true
	return b
}

func (b *SpanBuilder) WithTag(key string, value interface{}) *SpanBuilder {
	if b.tags == nil {
		b.tags = opentracing.Tags{}
	}
	b.tags[key] = value
	return b
}

// WithStartTime overrides the start timestamp, which otherwise is the time
// of Start.
func (b *SpanBuilder) WithStartTime(t time.Time) *SpanBuilder {
	b.startTime = t
	return b
}

// Start creates the span without activating it.
func (b *SpanBuilder) Start() Span {
	t := b.tracer

	refs := b.references
	if !b.explicit && !b.ignoreActive {
		if scope := t.scopeManager.Active(b.context()); scope != nil {
			refs = []opentracing.SpanReference{opentracing.ChildOf(scope.Span().Context())}
		}
	}
	res := resolveReferences(refs)

	var sc SpanContext
	if res.root {
		sc = NewRootContext(t.options.ShouldSample)
	} else {
		sc = SpanContext{
			TraceID: res.traceID,
			SpanID:  randx.GenSeededGUID(),
			Sampled: res.sampled,
			Baggage: res.baggage,
		}
	}
	parentSpanID := res.parentSpanID

	if b.traceID != 0 {
		sc.TraceID = b.traceID
	}
	if b.spanID != 0 {
		sc.SpanID = b.spanID
	}
	if b.parentSpanID != 0 {
		parentSpanID = b.parentSpanID
	}
	if b.sampled != nil {
		sc.Sampled = *b.sampled
	}

	startTime := b.startTime
	if startTime.IsZero() {
		startTime = t.clock.Now()
	}

	s := &spanImpl{tracer: t}
	s.raw = RawSpan{
		Context:      sc,
		ParentSpanID: parentSpanID,
		Operation:    b.operationName,
		Start:        startTime,
		References:   res.references,
	}
	for k, v := range b.tags {
		s.SetTag(k, v)
	}

	t.spanStarted(s)
	return s
}

// StartActive creates the span and activates it with the tracer's scope
// manager. The returned context carries the scope for flow-following
// managers.
func (b *SpanBuilder) StartActive(finishOnClose bool) (context.Context, Scope) {
	span := b.Start()
	return b.tracer.scopeManager.Activate(b.context(), span, finishOnClose)
}

func (b *SpanBuilder) context() context.Context {
	if b.ctx == nil {
		return context.Background()
	}
	return b.ctx
}

/*
	Start span options
*/

// basicStartSpanOption is implemented by the options below. Their
// opentracing Apply is a no-op; Tracer.StartSpan applies them to the
// builder instead.
type basicStartSpanOption interface {
	opentracing.StartSpanOption
	applyBasic(*SpanBuilder)
}

// SetTraceID forces the trace id of the new span.
type SetTraceID uint64

func (sid SetTraceID) Apply(*opentracing.StartSpanOptions) {}
func (sid SetTraceID) applyBasic(b *SpanBuilder) {
	b.traceID = uint64(sid)
}

// SetSpanID forces the span id of the new span.
type SetSpanID uint64

func (sid SetSpanID) Apply(*opentracing.StartSpanOptions) {}
func (sid SetSpanID) applyBasic(b *SpanBuilder) {
	b.spanID = uint64(sid)
}

// SetParentSpanID forces the parent span id of the new span.
type SetParentSpanID uint64

func (pid SetParentSpanID) Apply(*opentracing.StartSpanOptions) {}
func (pid SetParentSpanID) applyBasic(b *SpanBuilder) {
	b.parentSpanID = uint64(pid)
}

// SetSampled overrides the sampling decision of the new span.
type SetSampled bool

func (s SetSampled) Apply(*opentracing.StartSpanOptions) {}
func (s SetSampled) applyBasic(b *SpanBuilder) {
	sampled := bool(s)
	b.sampled = &sampled
}

type ignoreActiveSpan struct{}

// IgnoreActiveSpan keeps the active span from becoming the implicit parent.
func IgnoreActiveSpan() opentracing.StartSpanOption {
	return ignoreActiveSpan{}
}

func (ignoreActiveSpan) Apply(*opentracing.StartSpanOptions) {}
func (ignoreActiveSpan) applyBasic(b *SpanBuilder) {
	b.ignoreActive = true
}

type activeContext struct {
	ctx context.Context
}

// ActiveContext makes StartSpan look up the implicit parent in ctx.
func ActiveContext(ctx context.Context) opentracing.StartSpanOption {
	return activeContext{ctx: ctx}
}

func (a activeContext) Apply(*opentracing.StartSpanOptions) {}
func (a activeContext) applyBasic(b *SpanBuilder) {
	b.ctx = a.ctx
}
