package basictracer

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/mitchellh/mapstructure"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/szuecs/basictracer-go/internal/timex"
)

const (
	// DefaultMetricsNamespace prefixes the tracer's prometheus metrics.
	DefaultMetricsNamespace = "basictracer"
)

// Options control how the tracer samples, records and propagates spans.
type Options struct {
	// ShouldSample decides, once per trace, whether a root span is sampled.
	// It is passed the root's span id. Defaults to SampleAll.
	ShouldSample func(spanID uint64) bool

	// Recorder receives every finished span exactly once. A nil Recorder
	// discards spans.
	Recorder SpanRecorder

	// TrimUnsampledSpans skips the Recorder for spans whose trace is not
	// sampled.
	TrimUnsampledSpans bool

	// ScopeManager tracks the active span. Defaults to a
	// ContextScopeManager. A StackScopeManager holds one stack for the
	// whole tracer, so a tracer using it must serve a single flow.
	ScopeManager ScopeManager

	// Propagators adds or overrides format codecs. TextMap, HTTPHeaders and
	// Binary are always registered unless overridden here.
	Propagators map[interface{}]Propagator

	// MaxLogsPerSpan caps the number of log records kept per span. Zero
	// means unlimited.
	MaxLogsPerSpan int

	// DropAllLogs discards every log record.
	DropAllLogs bool

	// OnEvent receives tracer events such as usage errors. Defaults to a
	// handler that logs the first error through Logger.
	OnEvent func(Event)

	// Logger is a go-kit logger. Defaults to logfmt on stderr.
	Logger log.Logger

	// Verbose enables debug logging of span starts and finishes.
	Verbose bool

	// Registerer, when set, receives the tracer's prometheus collectors.
	Registerer prometheus.Registerer

	// MetricsNamespace overrides DefaultMetricsNamespace.
	MetricsNamespace string

	// Clock is the time source for span timestamps.
	Clock timex.Clock
}

// DefaultOptions returns Options with every default filled in.
func DefaultOptions() Options {
	var opts Options
	opts.setDefaults()
	return opts
}

// Validate checks that the options can be used to build a tracer.
func (opts *Options) Validate() error {
	if opts.MaxLogsPerSpan < 0 {
		return fmt.Errorf("options invalid: MaxLogsPerSpan must not be negative, got %d", opts.MaxLogsPerSpan)
	}
	for format, p := range opts.Propagators {
		if p == nil {
			return fmt.Errorf("options invalid: nil propagator for format %v", format)
		}
	}
	return nil
}

func (opts *Options) setDefaults() {
	if opts.ShouldSample == nil {
		opts.ShouldSample = SampleAll
	}
	if opts.ScopeManager == nil {
		opts.ScopeManager = NewContextScopeManager()
	}
	if opts.Clock == nil {
		opts.Clock = timex.NewClock()
	}
	if opts.MetricsNamespace == "" {
		opts.MetricsNamespace = DefaultMetricsNamespace
	}
	if opts.Logger == nil {
		opts.Logger = newDefaultLogger(os.Stderr, opts.Verbose)
	}
	if opts.OnEvent == nil {
		opts.OnEvent = NewOnEventLogOneError(opts.Logger)
	}
}

func newDefaultLogger(w io.Writer, verbose bool) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	if verbose {
		logger = level.NewFilter(logger, level.AllowDebug())
	} else {
		logger = level.NewFilter(logger, level.AllowWarn())
	}
	// The caller valuer sits on the outermost context so level.Error and
	// log.With merge into it and keep the stack depth of the call site.
	return log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
}

func (opts *Options) propagators() map[interface{}]Propagator {
	propagators := map[interface{}]Propagator{
		opentracing.TextMap:     TextMapPropagator,
		opentracing.HTTPHeaders: HTTPHeadersPropagator,
		opentracing.Binary:      BinaryPropagator,
	}
	for format, p := range opts.Propagators {
		propagators[format] = p
	}
	return propagators
}

// decodedOptions are the knobs that can come from a configuration file.
type decodedOptions struct {
	SampleModulo       uint64 `mapstructure:"sample_modulo"`
	TrimUnsampledSpans bool   `mapstructure:"trim_unsampled_spans"`
	MaxLogsPerSpan     int    `mapstructure:"max_logs_per_span"`
	DropAllLogs        bool   `mapstructure:"drop_all_logs"`
	Verbose            bool   `mapstructure:"verbose"`
	MetricsNamespace   string `mapstructure:"metrics_namespace"`
}

var errNilConfig = errors.New("options invalid: nil configuration map")

// DecodeOptions builds Options from a generic configuration map, such as a
// viper sub-tree. Unknown keys are rejected.
func DecodeOptions(raw map[string]interface{}) (Options, error) {
	if raw == nil {
		return Options{}, errNilConfig
	}

	var decoded decodedOptions
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &decoded,
	})
	if err != nil {
		return Options{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return Options{}, fmt.Errorf("options invalid: %w", err)
	}

	opts := Options{
		ShouldSample:       SampleModulo(decoded.SampleModulo),
		TrimUnsampledSpans: decoded.TrimUnsampledSpans,
		MaxLogsPerSpan:     decoded.MaxLogsPerSpan,
		DropAllLogs:        decoded.DropAllLogs,
		Verbose:            decoded.Verbose,
		MetricsNamespace:   decoded.MetricsNamespace,
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}
