package basictracer

import (
	"net/url"
	"strconv"
	"strings"

	opentracing "github.com/opentracing/opentracing-go"
)

const (
	prefixTracerState = "ot-tracer-"
	prefixBaggage     = "ot-baggage-"

	fieldNameTraceID = prefixTracerState + "traceid"
	fieldNameSpanID  = prefixTracerState + "spanid"
	fieldNameSampled = prefixTracerState + "sampled"
)

var (
	theTextMapPropagator = textMapPropagator{
		traceIDKey: fieldNameTraceID,
		spanIDKey:  fieldNameSpanID,
		sampledKey: fieldNameSampled,
	}

	theHTTPHeadersPropagator = textMapPropagator{
		traceIDKey: fieldNameTraceID,
		spanIDKey:  fieldNameSpanID,
		sampledKey: fieldNameSampled,
		httpSafe:   true,
	}
)

// textMapPropagator writes identifiers under three reserved keys and each
// baggage item under prefixBaggage.
type textMapPropagator struct {
	traceIDKey string
	spanIDKey  string
	sampledKey string

	// httpSafe requires header-safe baggage keys and URL-escapes values.
	httpSafe bool

	formatID     func(uint64) string
	parseTraceID func(string) (uint64, error)
	formatSample func(bool) string
	parseSample  func(string) (bool, error)
}

func formatHexID(id uint64) string {
	return strconv.FormatUint(id, 16)
}

func parseHexID(v string) (uint64, error) {
	return strconv.ParseUint(v, 16, 64)
}

func (p textMapPropagator) Inject(
	spanContext opentracing.SpanContext,
	opaqueCarrier interface{},
) error {
	sc, ok := spanContext.(SpanContext)
	if !ok {
		return opentracing.ErrInvalidSpanContext
	}
	carrier, ok := opaqueCarrier.(opentracing.TextMapWriter)
	if !ok {
		return opentracing.ErrInvalidCarrier
	}

	formatID := p.formatID
	if formatID == nil {
		formatID = formatHexID
	}
	formatSample := p.formatSample
	if formatSample == nil {
		formatSample = strconv.FormatBool
	}

	var err error
	sc.ForeachBaggageItem(func(k, v string) bool {
		if p.httpSafe {
			if _, err = normalizeBaggageKey(k); err != nil {
				return false
			}
		}
		return true
	})
	if err != nil {
		return err
	}

	carrier.Set(p.traceIDKey, formatID(sc.TraceID))
	carrier.Set(p.spanIDKey, formatID(sc.SpanID))
	carrier.Set(p.sampledKey, formatSample(sc.Sampled))

	sc.ForeachBaggageItem(func(k, v string) bool {
		if p.httpSafe {
			v = url.QueryEscape(v)
		}
		carrier.Set(prefixBaggage+k, v)
		return true
	})
	return nil
}

func (p textMapPropagator) Extract(
	opaqueCarrier interface{},
) (opentracing.SpanContext, error) {
	carrier, ok := opaqueCarrier.(opentracing.TextMapReader)
	if !ok {
		return nil, opentracing.ErrInvalidCarrier
	}

	parseTraceID := p.parseTraceID
	if parseTraceID == nil {
		parseTraceID = parseHexID
	}
	parseSample := p.parseSample
	if parseSample == nil {
		parseSample = strconv.ParseBool
	}

	var foundTraceID, foundSpanID, foundSampled bool
	var traceID, spanID uint64
	var sampled bool
	var baggage map[string]string
	var err error
	err = carrier.ForeachKey(func(k, v string) error {
		switch lowercaseK := strings.ToLower(k); lowercaseK {
		case p.traceIDKey:
			traceID, err = parseTraceID(v)
			if err != nil {
				return opentracing.ErrSpanContextCorrupted
			}
			foundTraceID = true
		case p.spanIDKey:
			spanID, err = parseHexID(v)
			if err != nil {
				return opentracing.ErrSpanContextCorrupted
			}
			foundSpanID = true
		case p.sampledKey:
			sampled, err = parseSample(v)
			if err != nil {
				return opentracing.ErrSpanContextCorrupted
			}
			foundSampled = true
		default:
			if strings.HasPrefix(lowercaseK, prefixBaggage) {
				if p.httpSafe {
					v, err = url.QueryUnescape(v)
					if err != nil {
						return opentracing.ErrSpanContextCorrupted
					}
				}
				if baggage == nil {
					baggage = make(map[string]string)
				}
				baggage[strings.TrimPrefix(lowercaseK, prefixBaggage)] = v
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Each reserved key counts once no matter how often it repeats.
	switch {
	case !foundTraceID && !foundSpanID && !foundSampled:
		return nil, opentracing.ErrSpanContextNotFound
	case !foundTraceID || !foundSpanID || !foundSampled:
		return nil, opentracing.ErrSpanContextCorrupted
	}

	return SpanContext{
		TraceID: traceID,
		SpanID:  spanID,
		Sampled: sampled,
		Baggage: baggage,
	}, nil
}
