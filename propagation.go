package basictracer

import (
	"errors"

	opentracing "github.com/opentracing/opentracing-go"
)

// Propagator is the codec for one carrier format.
type Propagator interface {
	Inject(opentracing.SpanContext, interface{}) error
	Extract(interface{}) (opentracing.SpanContext, error)
}

var (
	// TextMapPropagator handles opentracing.TextMap carriers.
	TextMapPropagator Propagator = theTextMapPropagator

	// HTTPHeadersPropagator handles opentracing.HTTPHeaders carriers.
	HTTPHeadersPropagator Propagator = theHTTPHeadersPropagator

	// BinaryPropagator handles opentracing.Binary carriers.
	BinaryPropagator Propagator = theBinaryPropagator

	// B3Propagator reads and writes x-b3-* keys on TextMap carriers.
	B3Propagator Propagator = theB3Propagator
)

// PropagatorStack injects with every pushed propagator and extracts with the
// first one that finds a context.
type PropagatorStack struct {
	propagators []Propagator
}

// PushPropagator adds p to the end of the stack.
func (stack *PropagatorStack) PushPropagator(p Propagator) {
	stack.propagators = append(stack.propagators, p)
}

func (stack *PropagatorStack) Inject(spanContext opentracing.SpanContext, carrier interface{}) error {
	if len(stack.propagators) == 0 {
		return errEmptyPropagatorStack
	}
	for _, p := range stack.propagators {
		if err := p.Inject(spanContext, carrier); err != nil {
			return err
		}
	}
	return nil
}

// Extract tries propagators in push order. A corrupted context is reported
// only if no propagator finds a valid one.
func (stack *PropagatorStack) Extract(carrier interface{}) (opentracing.SpanContext, error) {
	if len(stack.propagators) == 0 {
		return nil, errEmptyPropagatorStack
	}
	var firstErr error
	for _, p := range stack.propagators {
		sc, err := p.Extract(carrier)
		if err == nil {
			return sc, nil
		}
		if firstErr == nil && !errors.Is(err, opentracing.ErrSpanContextNotFound) {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return nil, opentracing.ErrSpanContextNotFound
}
