// Package metrics holds the prometheus collectors a tracer updates as spans
// start and finish.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const subsystem = "spans"

// Metrics is safe for concurrent use. A nil *Metrics ignores every call.
type Metrics struct {
	started           prometheus.Counter
	finished          *prometheus.CounterVec
	usageErrors       *prometheus.CounterVec
	propagationErrors *prometheus.CounterVec
	duration          prometheus.Histogram
}

// New creates the collectors and registers them with reg. Collectors that
// are already registered, e.g. by a second tracer sharing the registry, are
// reused.
func New(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "started_total",
			Help:      "Number of spans started.",
		}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "finished_total",
			Help:      "Number of spans finished, by sampling decision.",
		}, []string{"sampled"}),
		usageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "usage_errors_total",
			Help:      "Number of usage errors recorded on spans and scopes.",
		}, []string{"kind"}),
		propagationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "propagation_errors_total",
			Help:      "Number of failed inject or extract calls.",
		}, []string{"operation"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "duration_seconds",
			Help:      "Duration of finished spans.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
	}

	var err error
	if m.started, err = register(reg, m.started); err != nil {
		return nil, err
	}
	if m.finished, err = register(reg, m.finished); err != nil {
		return nil, err
	}
	if m.usageErrors, err = register(reg, m.usageErrors); err != nil {
		return nil, err
	}
	if m.propagationErrors, err = register(reg, m.propagationErrors); err != nil {
		return nil, err
	}
	if m.duration, err = register(reg, m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) SpanStarted() {
	if m == nil {
		return
	}
	m.started.Inc()
}

func (m *Metrics) SpanFinished(d time.Duration, sampled bool) {
	if m == nil {
		return
	}
	label := "false"
	if sampled {
		label = "true"
	}
	m.finished.WithLabelValues(label).Inc()
	if d >= 0 {
		m.duration.Observe(d.Seconds())
	}
}

func (m *Metrics) UsageError(kind string) {
	if m == nil {
		return
	}
	m.usageErrors.WithLabelValues(kind).Inc()
}

func (m *Metrics) PropagationError(operation string) {
	if m == nil {
		return
	}
	m.propagationErrors.WithLabelValues(operation).Inc()
}
