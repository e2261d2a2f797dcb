package basictracer

import (
	"errors"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	opentracing "github.com/opentracing/opentracing-go"

	"github.com/szuecs/basictracer-go/internal/metrics"
	"github.com/szuecs/basictracer-go/internal/timex"
)

// Tracer implements opentracing.Tracer. Build one with NewTracer; a Tracer
// is safe for concurrent use.
type Tracer struct {
	options      Options
	scopeManager ScopeManager
	propagators  map[interface{}]Propagator
	clock        timex.Clock
	logger       log.Logger
	metrics      *metrics.Metrics
}

var _ opentracing.Tracer = (*Tracer)(nil)

// NewTracer validates opts and returns a tracer. On failure an
// EventStartError is also sent to opts.OnEvent.
func NewTracer(opts Options) (*Tracer, error) {
	opts.setDefaults()
	if err := opts.Validate(); err != nil {
		opts.OnEvent(newEventStartError(err))
		return nil, err
	}

	t := &Tracer{
		options:      opts,
		scopeManager: opts.ScopeManager,
		propagators:  opts.propagators(),
		clock:        opts.Clock,
		logger:       opts.Logger,
	}

	if opts.Registerer != nil {
		m, err := metrics.New(opts.Registerer, opts.MetricsNamespace)
		if err != nil {
			opts.OnEvent(newEventStartError(err))
			return nil, err
		}
		t.metrics = m
	}

	return t, nil
}

// Options returns a copy of the options the tracer was built with.
func (t *Tracer) Options() Options {
	return t.options
}

// ScopeManager returns the manager tracking the active span.
func (t *Tracer) ScopeManager() ScopeManager {
	return t.scopeManager
}

// BuildSpan starts a fluent span definition.
func (t *Tracer) BuildSpan(operationName string) *SpanBuilder {
	return &SpanBuilder{
		tracer:        t,
		operationName: operationName,
	}
}

// StartSpan belongs to the opentracing.Tracer interface.
func (t *Tracer) StartSpan(operationName string, opts ...opentracing.StartSpanOption) opentracing.Span {
	b := t.BuildSpan(operationName)

	sso := opentracing.StartSpanOptions{}
	for _, o := range opts {
		o.Apply(&sso)
		if bo, ok := o.(basicStartSpanOption); ok {
			bo.applyBasic(b)
		}
	}

	for _, ref := range sso.References {
		b.AddReference(ref.Type, ref.ReferencedContext)
	}
	for k, v := range sso.Tags {
		b.WithTag(k, v)
	}
	if !sso.StartTime.IsZero() {
		b.WithStartTime(sso.StartTime)
	}
	return b.Start()
}

// Inject belongs to the opentracing.Tracer interface.
func (t *Tracer) Inject(sc opentracing.SpanContext, format interface{}, carrier interface{}) error {
	p, ok := t.propagators[format]
	if !ok {
		return opentracing.ErrUnsupportedFormat
	}
	if err := p.Inject(sc, carrier); err != nil {
		t.metrics.PropagationError("inject")
		t.options.OnEvent(newEventPropagationError(format, err))
		return err
	}
	return nil
}

// Extract belongs to the opentracing.Tracer interface. A carrier without a
// context yields opentracing.ErrSpanContextNotFound, which is not reported
// as a failure.
func (t *Tracer) Extract(format interface{}, carrier interface{}) (opentracing.SpanContext, error) {
	p, ok := t.propagators[format]
	if !ok {
		return nil, opentracing.ErrUnsupportedFormat
	}
	sc, err := p.Extract(carrier)
	if err != nil {
		if !errors.Is(err, opentracing.ErrSpanContextNotFound) {
			t.metrics.PropagationError("extract")
			t.options.OnEvent(newEventPropagationError(format, err))
		}
		return nil, err
	}
	return sc, nil
}

func (t *Tracer) spanStarted(s *spanImpl) {
	t.metrics.SpanStarted()
	level.Debug(t.logger).Log(
		"msg", "span started",
		"operation", s.raw.Operation,
		"trace_id", s.raw.Context.TraceID,
		"span_id", s.raw.Context.SpanID,
		"parent_span_id", s.raw.ParentSpanID,
	)
}

// recordSpan hands a finished span to the recorder. Never called with a
// span lock held.
func (t *Tracer) recordSpan(raw RawSpan) {
	t.metrics.SpanFinished(raw.Duration, raw.Context.Sampled)
	level.Debug(t.logger).Log(
		"msg", "span finished",
		"operation", raw.Operation,
		"trace_id", raw.Context.TraceID,
		"span_id", raw.Context.SpanID,
		"duration", raw.Duration,
	)

	if t.options.Recorder == nil {
		return
	}
	if t.options.TrimUnsampledSpans && !raw.Context.Sampled {
		return
	}
	t.options.Recorder.RecordSpan(raw)
}

// emitUsageError reports err, if any, for span. Never called with a span
// lock held.
func (t *Tracer) emitUsageError(span opentracing.Span, err error) {
	if err == nil {
		return
	}
	t.metrics.UsageError(usageErrorKind(err))
	t.options.OnEvent(newEventUsageError(span, err))
}
