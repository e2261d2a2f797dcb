package basictracer

import (
	"errors"
	"sync"

	opentracing "github.com/opentracing/opentracing-go"
)

var (
	defaultTracerLock sync.RWMutex
	defaultTracer     *Tracer
)

var errNilDefaultTracer = errors.New("basictracer: default tracer must not be nil")

// SetDefaultTracer fills the process-wide tracer slot and registers the
// tracer with opentracing.SetGlobalTracer. The slot can be set once; later
// calls return ErrDefaultTracerSet.
func SetDefaultTracer(t *Tracer) error {
	if t == nil {
		return errNilDefaultTracer
	}

	defaultTracerLock.Lock()
	defer defaultTracerLock.Unlock()

	if defaultTracer != nil {
		return ErrDefaultTracerSet
	}
	defaultTracer = t
	opentracing.SetGlobalTracer(t)
	return nil
}

// DefaultTracer returns the tracer set with SetDefaultTracer.
func DefaultTracer() (*Tracer, bool) {
	defaultTracerLock.RLock()
	defer defaultTracerLock.RUnlock()

	return defaultTracer, defaultTracer != nil
}
