package basictraceroc

import (
	"fmt"

	basictracer "github.com/szuecs/basictracer-go"
	"github.com/szuecs/basictracer-go/basictraceroc/internal/conversions"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/opentracing/opentracing-go/log"
	"go.opencensus.io/trace"
)

// Exporter may be registered with OpenCensus so that span data is recorded
// by a basictracer Tracer.
type Exporter struct {
	tracer        *basictracer.Tracer
	componentName string
}

var _ trace.Exporter = (*Exporter)(nil)

// NewExporter creates a new Exporter.
// It returns an error if the underlying tracer could not be created, e.g., due to invalid options
func NewExporter(opts ...Option) (*Exporter, error) {
	c := defaultConfig()
	for _, opt := range opts {
		opt(c)
	}

	tracer := c.tracer
	if tracer == nil {
		var err error
		if tracer, err = basictracer.NewTracer(c.tracerOptions); err != nil {
			return nil, fmt.Errorf("basictraceroc: failed to create exporter: %w", err)
		}
	}

	return &Exporter{
		tracer:        tracer,
		componentName: c.componentName,
	}, nil
}

// Tracer returns the tracer spans are replayed into.
func (e *Exporter) Tracer() *basictracer.Tracer {
	return e.tracer
}

// ExportSpan starts and finishes a span that carries the identity, timing,
// attributes and events of sd.
func (e *Exporter) ExportSpan(sd *trace.SpanData) {
	opts := []opentracing.StartSpanOption{
		opentracing.StartTime(sd.StartTime),
		basictracer.IgnoreActiveSpan(),
		basictracer.SetSampled(sd.SpanContext.IsSampled()),
	}

	if traceID, ok := conversions.ConvertTraceID(sd.SpanContext.TraceID); ok {
		opts = append(opts, basictracer.SetTraceID(traceID))
	}

	if spanID, ok := conversions.ConvertSpanID(sd.SpanContext.SpanID); ok {
		opts = append(opts, basictracer.SetSpanID(spanID))
	}

	if parentSpanID, ok := conversions.ConvertSpanID(sd.ParentSpanID); ok {
		opts = append(opts, basictracer.SetParentSpanID(parentSpanID))
	}

	for _, link := range sd.Links {
		spanContext := conversions.ConvertLinkToSpanContext(link)
		switch link.Type {
		case trace.LinkTypeParent:
			opts = append(opts, opentracing.ChildOf(spanContext))
		default:
			opts = append(opts, opentracing.FollowsFrom(spanContext))
		}
	}

	switch sd.SpanKind {
	case trace.SpanKindServer:
		opts = append(opts, ext.SpanKindRPCServer)
	case trace.SpanKindClient:
		opts = append(opts, ext.SpanKindRPCClient)
	}

	if e.componentName != "" {
		opts = append(opts, opentracing.Tag{Key: string(ext.Component), Value: e.componentName})
	}

	span := e.tracer.StartSpan(sd.Name, opts...)

	for _, entry := range sd.SpanContext.Tracestate.Entries() {
		span.SetBaggageItem(entry.Key, entry.Value)
	}

	for k, v := range sd.Attributes {
		span.SetTag(k, v)
	}

	if sd.Status.Code != trace.StatusCodeOK {
		ext.Error.Set(span, true)
		span.SetTag("status.code", sd.Status.Code)
		if sd.Status.Message != "" {
			span.SetTag("status.message", sd.Status.Message)
		}
	}

	span.FinishWithOptions(opentracing.FinishOptions{
		FinishTime: sd.EndTime,
		LogRecords: logRecords(sd),
	})
}

func logRecords(sd *trace.SpanData) []opentracing.LogRecord {
	var records []opentracing.LogRecord
	for _, annotation := range sd.Annotations {
		fields := []log.Field{log.String("event", annotation.Message)}
		for k, v := range annotation.Attributes {
			fields = append(fields, log.Object(k, v))
		}
		records = append(records, opentracing.LogRecord{
			Timestamp: annotation.Time,
			Fields:    fields,
		})
	}

	for _, event := range sd.MessageEvents {
		records = append(records, opentracing.LogRecord{
			Timestamp: event.Time,
			Fields: []log.Field{
				log.String("event", messageEventName(event.EventType)),
				log.Int64("message.id", event.MessageID),
				log.Int64("message.uncompressed_size", event.UncompressedByteSize),
				log.Int64("message.compressed_size", event.CompressedByteSize),
			},
		})
	}
	return records
}

func messageEventName(t trace.MessageEventType) string {
	switch t {
	case trace.MessageEventTypeSent:
		return "message.sent"
	case trace.MessageEventTypeRecv:
		return "message.received"
	default:
		return "message"
	}
}
