package conversions

import (
	"encoding/binary"

	basictracer "github.com/szuecs/basictracer-go"
	"go.opencensus.io/trace"
)

// ConvertTraceID keeps the low 64 bits of a 128-bit trace id, the same
// bits a 128-bit B3 trace id is reduced to.
func ConvertTraceID(original trace.TraceID) (uint64, bool) {
	if traceID := binary.BigEndian.Uint64(original[8:]); traceID != 0 {
		return traceID, true
	}
	return 0, false
}

func ConvertSpanID(original trace.SpanID) (uint64, bool) {
	if spanID := binary.BigEndian.Uint64(original[:]); spanID != 0 {
		return spanID, true
	}
	return 0, false
}

// ConvertLinkToSpanContext carries string attributes over as baggage.
// Attributes whose names are not valid baggage keys are dropped.
func ConvertLinkToSpanContext(link trace.Link) basictracer.SpanContext {
	var spanContext basictracer.SpanContext

	if traceID, ok := ConvertTraceID(link.TraceID); ok {
		spanContext.TraceID = traceID
	}

	if spanID, ok := ConvertSpanID(link.SpanID); ok {
		spanContext.SpanID = spanID
	}

	for k, v := range link.Attributes {
		if attribute, ok := v.(string); ok {
			if withItem, err := spanContext.WithBaggageItem(k, attribute); err == nil {
				spanContext = withItem
			}
		}
	}

	return spanContext
}
