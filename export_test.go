package basictracer

import opentracing "github.com/opentracing/opentracing-go"

var NewDefaultLogger = newDefaultLogger

// ResetDefaultTracer empties the default tracer slot between specs.
func ResetDefaultTracer() {
	defaultTracerLock.Lock()
	defer defaultTracerLock.Unlock()

	defaultTracer = nil
	opentracing.SetGlobalTracer(opentracing.NoopTracer{})
}
