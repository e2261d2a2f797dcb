package basictracer

import (
	"sort"
	"strings"

	"github.com/szuecs/basictracer-go/internal/randx"
)

// SpanContext holds the propagated identity of a span.
type SpanContext struct {
	// A probabilistically unique identifier for a [multi-span] trace.
	TraceID uint64

	// A probabilistically unique identifier for a span.
	SpanID uint64

	// Whether the trace is sampled. Decided once for the root span and
	// inherited by every descendant.
	Sampled bool

	// The span's associated baggage. Keys are lower case.
	Baggage map[string]string // initialized on first use
}

// NewRootContext mints identifiers for a new trace and samples it with
// shouldSample applied to the new span id.
func NewRootContext(shouldSample func(spanID uint64) bool) SpanContext {
	traceID, spanID := randx.GenSeededGUID2()
	if shouldSample == nil {
		shouldSample = SampleAll
	}
	return SpanContext{
		TraceID: traceID,
		SpanID:  spanID,
		Sampled: shouldSample(spanID),
	}
}

// IsValid reports whether both identifiers are set.
func (c SpanContext) IsValid() bool {
	return c.TraceID != 0 && c.SpanID != 0
}

// SameTrace reports whether c and other belong to the same trace.
func (c SpanContext) SameTrace(other SpanContext) bool {
	return c.TraceID == other.TraceID
}

// ForeachBaggageItem belongs to the opentracing.SpanContext interface.
// Items are visited in ascending key order.
func (c SpanContext) ForeachBaggageItem(handler func(k, v string) bool) {
	if len(c.Baggage) == 0 {
		return
	}
	keys := make([]string, 0, len(c.Baggage))
	for k := range c.Baggage {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !handler(k, c.Baggage[k]) {
			break
		}
	}
}

// BaggageItem looks up key without regard to case.
func (c SpanContext) BaggageItem(key string) (string, bool) {
	v, ok := c.Baggage[strings.ToLower(key)]
	return v, ok
}

// WithBaggageItem returns an entirely new SpanContext with the given
// key:value baggage pair set. The receiver is left untouched.
func (c SpanContext) WithBaggageItem(key, val string) (SpanContext, error) {
	key, err := normalizeBaggageKey(key)
	if err != nil {
		return c, err
	}

	var newBaggage map[string]string
	if c.Baggage == nil {
		newBaggage = map[string]string{key: val}
	} else {
		newBaggage = make(map[string]string, len(c.Baggage)+1)
		for k, v := range c.Baggage {
			newBaggage[k] = v
		}
		newBaggage[key] = val
	}
	// Use positional parameters so the compiler will help catch new fields.
	return SpanContext{c.TraceID, c.SpanID, c.Sampled, newBaggage}, nil
}

func normalizeBaggageKey(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidBaggageKey
	}
	for i := 0; i < len(key); i++ {
		if !isTokenChar(key[i]) {
			return "", ErrInvalidBaggageKey
		}
	}
	return strings.ToLower(key), nil
}

// isTokenChar reports whether b may appear in an HTTP header field name.
func isTokenChar(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	}
	return strings.IndexByte("!#$%&'*+-.^_`|~", b) >= 0
}
