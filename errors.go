package basictracer

import (
	"errors"
	"fmt"
	"reflect"

	opentracing "github.com/opentracing/opentracing-go"
)

/*
	Usage Errors
*/

var (
	// ErrSpanFinished is recorded when a span is mutated or finished after
	// Finish has already been called.
	ErrSpanFinished = errors.New("span already finished")

	// ErrInvalidBaggageKey is recorded when a baggage key is empty or holds
	// characters outside the HTTP token set.
	ErrInvalidBaggageKey = errors.New("invalid baggage key")

	// ErrInvalidTagValue is recorded when a tag value is not a string,
	// boolean, integer or floating-point value.
	ErrInvalidTagValue = errors.New("unsupported tag value type")

	// ErrScopeOutOfOrder is returned when a scope that is not the active one
	// is closed. The close is ignored.
	ErrScopeOutOfOrder = errors.New("scope closed out of order")

	// ErrScopeClosed is returned when a scope is closed more than once.
	ErrScopeClosed = errors.New("scope already closed")

	// ErrDefaultTracerSet is returned when the default tracer slot is
	// assigned a second time.
	ErrDefaultTracerSet = errors.New("default tracer already set")
)

var errEmptyPropagatorStack = errors.New("basictracer: propagator stack is empty")

// UsageError ties a usage error to the span operation that triggered it.
type UsageError struct {
	Op  string
	Err error
}

func newUsageError(op string, err error) *UsageError {
	return &UsageError{Op: op, Err: err}
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("basictracer: %s: %s", e.Op, e.Err)
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// usageErrorKind is the short label used for metrics.
func usageErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrSpanFinished):
		return "span_finished"
	case errors.Is(err, ErrInvalidBaggageKey):
		return "invalid_baggage_key"
	case errors.Is(err, ErrInvalidTagValue):
		return "invalid_tag_value"
	case errors.Is(err, ErrScopeOutOfOrder):
		return "scope_out_of_order"
	case errors.Is(err, ErrScopeClosed):
		return "scope_closed"
	default:
		return "other"
	}
}

// newErrNotBasicTracer returns a typecasting error
func newErrNotBasicTracer(tracer opentracing.Tracer) error {
	return fmt.Errorf("not a basictracer Tracer type: %v", reflect.TypeOf(tracer))
}
