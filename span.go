package basictracer

import (
	"reflect"
	"sync"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/log"
)

// Span extends opentracing.Span with the bookkeeping a recorder or test
// needs to inspect.
type Span interface {
	opentracing.Span

	// ParentSpanID is the span id of the preferred parent, or 0 for roots.
	ParentSpanID() uint64

	// IsFinished reports whether Finish has been called.
	IsFinished() bool

	// Errors returns every usage error recorded against the span, including
	// those raised after it finished.
	Errors() []error

	// References returns the references the span was started with.
	References() []Reference
}

// Implements the `Span` interface. Created via Tracer (see `BuildSpan()`).
type spanImpl struct {
	tracer *Tracer

	sync.Mutex // protects the fields below
	raw        RawSpan
	finished   bool
	errors     []error
}

var _ Span = (*spanImpl)(nil)

func (s *spanImpl) SetOperationName(operationName string) opentracing.Span {
	var err error
	s.Lock()
	if s.finished {
		err = s.recordLocked("SetOperationName", ErrSpanFinished)
	} else {
		s.raw.Operation = operationName
	}
	s.Unlock()

	s.tracer.emitUsageError(s, err)
	return s
}

func (s *spanImpl) SetTag(key string, value interface{}) opentracing.Span {
	var err error
	s.Lock()
	switch {
	case s.finished:
		err = s.recordLocked("SetTag", ErrSpanFinished)
	case !isValidTagValue(value):
		err = s.recordLocked("SetTag", ErrInvalidTagValue)
	default:
		if s.raw.Tags == nil {
			s.raw.Tags = opentracing.Tags{}
		}
		s.raw.Tags[key] = value
	}
	s.Unlock()

	s.tracer.emitUsageError(s, err)
	return s
}

func isValidTagValue(value interface{}) bool {
	if value == nil {
		return false
	}
	switch reflect.TypeOf(value).Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func (s *spanImpl) LogFields(fields ...log.Field) {
	s.appendLog("LogFields", opentracing.LogRecord{Fields: fields})
}

func (s *spanImpl) LogKV(keyValues ...interface{}) {
	fields, err := log.InterleavedKVToFields(keyValues...)
	if err != nil {
		s.LogFields(log.Error(err), log.String("function", "LogKV"))
		return
	}
	s.LogFields(fields...)
}

func (s *spanImpl) LogEvent(event string) {
	s.Log(opentracing.LogData{
		Event: event,
	})
}

func (s *spanImpl) LogEventWithPayload(event string, payload interface{}) {
	s.Log(opentracing.LogData{
		Event:   event,
		Payload: payload,
	})
}

// Log records ld at ld.Timestamp, or now when the timestamp is zero.
func (s *spanImpl) Log(ld opentracing.LogData) {
	if ld.Timestamp.IsZero() {
		ld.Timestamp = s.tracer.clock.Now()
	}
	s.appendLog("Log", ld.ToLogRecord())
}

func (s *spanImpl) appendLog(op string, lr opentracing.LogRecord) {
	if lr.Timestamp.IsZero() {
		lr.Timestamp = s.tracer.clock.Now()
	}

	var err error
	s.Lock()
	if s.finished {
		err = s.recordLocked(op, ErrSpanFinished)
	} else {
		s.appendLogLocked(lr)
	}
	s.Unlock()

	s.tracer.emitUsageError(s, err)
}

func (s *spanImpl) appendLogLocked(lr opentracing.LogRecord) {
	opts := &s.tracer.options
	if opts.DropAllLogs || (opts.MaxLogsPerSpan > 0 && len(s.raw.Logs) >= opts.MaxLogsPerSpan) {
		s.raw.DroppedLogs++
		return
	}
	s.raw.Logs = append(s.raw.Logs, lr)
}

func (s *spanImpl) SetBaggageItem(key, val string) opentracing.Span {
	var err error
	s.Lock()
	if s.finished {
		err = s.recordLocked("SetBaggageItem", ErrSpanFinished)
	} else if ctx, cerr := s.raw.Context.WithBaggageItem(key, val); cerr != nil {
		err = s.recordLocked("SetBaggageItem", cerr)
	} else {
		s.raw.Context = ctx
	}
	s.Unlock()

	s.tracer.emitUsageError(s, err)
	return s
}

func (s *spanImpl) BaggageItem(key string) string {
	s.Lock()
	defer s.Unlock()

	v, _ := s.raw.Context.BaggageItem(key)
	return v
}

func (s *spanImpl) Finish() {
	s.FinishWithOptions(opentracing.FinishOptions{})
}

func (s *spanImpl) FinishWithOptions(opts opentracing.FinishOptions) {
	finishTime := opts.FinishTime
	if finishTime.IsZero() {
		finishTime = s.tracer.clock.Now()
	}

	s.Lock()
	if s.finished {
		err := s.recordLocked("Finish", ErrSpanFinished)
		s.Unlock()
		s.tracer.emitUsageError(s, err)
		return
	}

	for _, lr := range opts.LogRecords {
		s.appendLogLocked(lr)
	}
	for _, ld := range opts.BulkLogData {
		s.appendLogLocked(ld.ToLogRecord())
	}

	s.finished = true
	s.raw.FinishTime = finishTime
	s.raw.Duration = finishTime.Sub(s.raw.Start)
	raw := s.snapshotLocked()
	s.Unlock()

	s.tracer.recordSpan(raw)
}

// snapshotLocked copies the mutable parts of raw so the recorder owns an
// immutable value.
func (s *spanImpl) snapshotLocked() RawSpan {
	raw := s.raw
	if s.raw.Tags != nil {
		raw.Tags = make(opentracing.Tags, len(s.raw.Tags))
		for k, v := range s.raw.Tags {
			raw.Tags[k] = v
		}
	}
	raw.Logs = append([]opentracing.LogRecord(nil), s.raw.Logs...)
	raw.References = append([]Reference(nil), s.raw.References...)
	raw.Errors = append([]error(nil), s.errors...)
	return raw
}

func (s *spanImpl) Tracer() opentracing.Tracer {
	return s.tracer
}

func (s *spanImpl) Context() opentracing.SpanContext {
	s.Lock()
	defer s.Unlock()

	return s.raw.Context
}

func (s *spanImpl) ParentSpanID() uint64 {
	// immutable after start
	return s.raw.ParentSpanID
}

func (s *spanImpl) IsFinished() bool {
	s.Lock()
	defer s.Unlock()

	return s.finished
}

func (s *spanImpl) Errors() []error {
	s.Lock()
	defer s.Unlock()

	return append([]error(nil), s.errors...)
}

func (s *spanImpl) References() []Reference {
	return append([]Reference(nil), s.raw.References...)
}

// recordLocked appends a usage error for op and returns it.
func (s *spanImpl) recordLocked(op string, err error) error {
	uerr := newUsageError(op, err)
	s.errors = append(s.errors, uerr)
	return uerr
}

// recordUsageError records err against the span and reports it to the
// tracer.
func (s *spanImpl) recordUsageError(op string, err error) error {
	s.Lock()
	uerr := s.recordLocked(op, err)
	s.Unlock()

	s.tracer.emitUsageError(s, uerr)
	return uerr
}
