// Package basictracergrpc propagates basictracer span contexts over gRPC
// metadata and traces unary calls on both ends.
//
// The server interceptor activates each call's span through the tracer's
// ScopeManager and serves calls concurrently. Use it with a tracer backed by
// the default ContextScopeManager; a StackScopeManager would interleave the
// stacks of concurrent calls.
package basictracergrpc

import (
	"context"
	"strings"

	basictracer "github.com/szuecs/basictracer-go"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/opentracing/opentracing-go/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const componentName = "grpc"

// MetadataCarrier adapts gRPC metadata to opentracing.TextMapWriter and
// opentracing.TextMapReader. Metadata keys are lower case.
type MetadataCarrier metadata.MD

var (
	_ opentracing.TextMapWriter = MetadataCarrier{}
	_ opentracing.TextMapReader = MetadataCarrier{}
)

func (c MetadataCarrier) Set(key, val string) {
	metadata.MD(c).Set(strings.ToLower(key), val)
}

func (c MetadataCarrier) ForeachKey(handler func(key, val string) error) error {
	for k, vals := range c {
		for _, v := range vals {
			if err := handler(k, v); err != nil {
				return err
			}
		}
	}
	return nil
}

type Option func(*config)

// WithFormat selects the format span contexts are injected and extracted
// with. It must accept a TextMap carrier. Defaults to
// opentracing.HTTPHeaders, which escapes baggage values.
func WithFormat(format interface{}) Option {
	return func(c *config) {
		c.format = format
	}
}

// WithOperationName derives the span name from the full gRPC method. The
// method itself is used by default.
func WithOperationName(fn func(fullMethod string) string) Option {
	return func(c *config) {
		c.operationName = fn
	}
}

type config struct {
	format        interface{}
	operationName func(string) string
}

func defaultConfig() *config {
	return &config{
		format:        opentracing.HTTPHeaders,
		operationName: func(fullMethod string) string { return fullMethod },
	}
}

func newConfig(opts []Option) *config {
	c := defaultConfig()
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UnaryClientInterceptor starts a client span for every call, as a child of
// the span active in the call's context, and sends its context in the
// outgoing metadata.
func UnaryClientInterceptor(tracer *basictracer.Tracer, opts ...Option) grpc.UnaryClientInterceptor {
	c := newConfig(opts)

	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, callOpts ...grpc.CallOption) error {
		span := tracer.StartSpan(c.operationName(method),
			basictracer.ActiveContext(ctx),
			ext.SpanKindRPCClient,
			opentracing.Tag{Key: string(ext.Component), Value: componentName},
		)
		defer span.Finish()

		md, ok := metadata.FromOutgoingContext(ctx)
		if ok {
			md = md.Copy()
		} else {
			md = metadata.MD{}
		}
		// a failed inject is reported through the tracer's OnEvent; the call
		// proceeds without a propagated context
		if err := tracer.Inject(span.Context(), c.format, MetadataCarrier(md)); err == nil {
			ctx = metadata.NewOutgoingContext(ctx, md)
		}

		err := invoker(ctx, method, req, reply, cc, callOpts...)
		tagError(span, err)
		return err
	}
}

// UnaryServerInterceptor starts a server span for every call, as a child of
// the context found in the incoming metadata, and activates it for the
// handler. Without an incoming context the span starts a new trace.
func UnaryServerInterceptor(tracer *basictracer.Tracer, opts ...Option) grpc.UnaryServerInterceptor {
	c := newConfig(opts)

	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		startOpts := []opentracing.StartSpanOption{
			basictracer.ActiveContext(ctx),
			ext.SpanKindRPCServer,
			opentracing.Tag{Key: string(ext.Component), Value: componentName},
		}
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if parent, err := tracer.Extract(c.format, MetadataCarrier(md)); err == nil {
				startOpts = append(startOpts, ext.RPCServerOption(parent))
			}
		}

		span := tracer.StartSpan(c.operationName(info.FullMethod), startOpts...)
		ctx, scope := tracer.ScopeManager().Activate(ctx, span, false)
		defer span.Finish()
		defer scope.Close()

		resp, err := handler(ctx, req)
		tagError(span, err)
		return resp, err
	}
}

func tagError(span opentracing.Span, err error) {
	if err == nil {
		return
	}
	s, _ := status.FromError(err)
	ext.Error.Set(span, true)
	span.SetTag("grpc.code", s.Code().String())
	span.LogFields(log.Error(err))
}
