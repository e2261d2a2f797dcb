package basictraceroc

import (
	basictracer "github.com/szuecs/basictracer-go"
)

// Option provides configuration for the Exporter
type Option func(*config)

// WithTracer replays spans into an existing tracer. Tracer options passed
// with WithTracerOptions are ignored.
func WithTracer(tracer *basictracer.Tracer) Option {
	return func(c *config) {
		c.tracer = tracer
	}
}

// WithTracerOptions sets the options of the tracer the exporter creates.
func WithTracerOptions(opts basictracer.Options) Option {
	return func(c *config) {
		c.tracerOptions = opts
	}
}

// WithComponentName tags every exported span with the component (service)
// name.
func WithComponentName(componentName string) Option {
	return func(c *config) {
		c.componentName = componentName
	}
}

type config struct {
	tracer        *basictracer.Tracer
	tracerOptions basictracer.Options
	componentName string
}

func defaultConfig() *config {
	return &config{}
}
