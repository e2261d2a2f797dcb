package basictracer

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	opentracing "github.com/opentracing/opentracing-go"
)

// Events are emitted by the tracer as a reporting mechanism. They are
// handled by setting the OnEvent callback in the Options passed to NewTracer.
// Events may be cast to specific event types in order access additional
// information.
//
// NOTE: To ensure that events can be accurately identified, each event type contains
// a sentinel method matching the name of the type. This method is a no-op, it is only used
// for type coercion.
type Event interface {
	Event()
	String() string
}

// The ErrorEvent type can be used to filter events for errors. The `Err` method
// returns the underlying error.
type ErrorEvent interface {
	Event
	error
	Err() error
}

// EventStartError occurs if the Options passed to NewTracer are invalid, and
// the Tracer has failed to start.
type EventStartError interface {
	ErrorEvent
	EventStartError()
}

type eventStartError struct {
	err error
}

func newEventStartError(err error) *eventStartError {
	return &eventStartError{err: err}
}

func (*eventStartError) Event()           {}
func (*eventStartError) EventStartError() {}

func (e *eventStartError) String() string {
	return e.err.Error()
}

func (e *eventStartError) Error() string {
	return e.err.Error()
}

func (e *eventStartError) Err() error {
	return e.err
}

// EventUsageError occurs when a span or scope is misused, e.g. a span is
// mutated after Finish. The same error is recorded on the span.
type EventUsageError interface {
	ErrorEvent
	EventUsageError()
	Span() opentracing.Span
}

type eventUsageError struct {
	span opentracing.Span
	err  error
}

func newEventUsageError(span opentracing.Span, err error) *eventUsageError {
	return &eventUsageError{span: span, err: err}
}

func (*eventUsageError) Event()           {}
func (*eventUsageError) EventUsageError() {}

func (e *eventUsageError) Span() opentracing.Span {
	return e.span
}

func (e *eventUsageError) String() string {
	return e.err.Error()
}

func (e *eventUsageError) Error() string {
	return e.err.Error()
}

func (e *eventUsageError) Err() error {
	return e.err
}

// EventPropagationError occurs when Inject or Extract fails for a reason
// other than an absent context.
type EventPropagationError interface {
	ErrorEvent
	EventPropagationError()
	Format() interface{}
}

type eventPropagationError struct {
	format interface{}
	err    error
}

func newEventPropagationError(format interface{}, err error) *eventPropagationError {
	return &eventPropagationError{format: format, err: err}
}

func (*eventPropagationError) Event()                 {}
func (*eventPropagationError) EventPropagationError() {}

func (e *eventPropagationError) Format() interface{} {
	return e.format
}

func (e *eventPropagationError) String() string {
	return fmt.Sprintf("propagation failed for format %v: %s", e.format, e.err)
}

func (e *eventPropagationError) Error() string {
	return e.String()
}

func (e *eventPropagationError) Err() error {
	return e.err
}

// EventUnsupportedTracer occurs when a tracer being passed to a helper function
// fails to typecast as a basictracer Tracer.
type EventUnsupportedTracer interface {
	ErrorEvent
	EventUnsupportedTracer()
	UnsupportedTracer() opentracing.Tracer
}

type eventUnsupportedTracer struct {
	unsupportedTracer opentracing.Tracer
	err               error
}

func newEventUnsupportedTracer(tracer opentracing.Tracer) EventUnsupportedTracer {
	return &eventUnsupportedTracer{
		unsupportedTracer: tracer,
		err:               fmt.Errorf("unsupported tracer type: %v", reflect.TypeOf(tracer)),
	}
}

func (e *eventUnsupportedTracer) Event()                  {}
func (e *eventUnsupportedTracer) EventUnsupportedTracer() {}

func (e *eventUnsupportedTracer) UnsupportedTracer() opentracing.Tracer {
	return e.unsupportedTracer
}

func (e *eventUnsupportedTracer) String() string {
	return e.err.Error()
}

func (e *eventUnsupportedTracer) Error() string {
	return e.err.Error()
}

func (e *eventUnsupportedTracer) Err() error {
	return e.err
}

/*
	OnEvent Handlers
*/

// NewOnEventLogger logs every event. Error events are logged at error
// level, everything else at info.
func NewOnEventLogger(logger log.Logger) func(Event) {
	return func(event Event) {
		switch event := event.(type) {
		case ErrorEvent:
			level.Error(logger).Log("msg", "tracer error", "err", event.Err())
		default:
			level.Info(logger).Log("msg", "tracer event", "event", event.String())
		}
	}
}

// NewOnEventLogOneError only logs the first error event.
func NewOnEventLogOneError(logger log.Logger) func(Event) {
	l := &logOneError{logger: logger}
	return l.OnEvent
}

type logOneError struct {
	sync.Once
	logger log.Logger
}

func (l *logOneError) OnEvent(event Event) {
	switch event := event.(type) {
	case ErrorEvent:
		l.Once.Do(func() {
			level.Error(l.logger).Log(
				"msg", "tracer error, further errors are not logged",
				"err", event.Err(),
			)
		})
	}
}

// NewOnEventChannel returns an OnEvent callback handler, and a channel that
// produces the events. When the channel buffer is full, subsequent events will
// be dropped. A buffer size of less than one is incorrect, and will be adjusted
// to a buffer size of one.
func NewOnEventChannel(buffer int) (func(Event), <-chan Event) {
	if buffer < 1 {
		buffer = 1
	}

	eventChan := make(chan Event, buffer)

	handler := func(event Event) {
		select {
		case eventChan <- event:
		default:
		}
	}

	return handler, eventChan
}
