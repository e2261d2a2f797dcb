package basictracer

import (
	"context"

	opentracing "github.com/opentracing/opentracing-go"
)

// Scope binds a span as the active one for a flow until it is closed.
type Scope interface {
	// Span returns the span this scope activated.
	Span() opentracing.Span

	// Close restores the previously active scope and finishes the span if
	// the scope was activated with finishOnClose. Closing a scope that is
	// not the active one in its own flow is ignored and returns
	// ErrScopeOutOfOrder; closing twice returns ErrScopeClosed. Both are
	// recorded on the span.
	Close() error
}

// ScopeManager tracks the active span of a flow.
type ScopeManager interface {
	// Active returns the active scope, or nil when no span is active.
	Active(ctx context.Context) Scope

	// Activate makes span the active span and returns the scope to close
	// once the work is done. Flow-following managers return a derived
	// context that carries the scope; other managers return ctx unchanged.
	Activate(ctx context.Context, span opentracing.Span, finishOnClose bool) (context.Context, Scope)
}

// reportScopeMisuse records a scope usage error on span when it is one of
// ours and returns the error for the caller.
func reportScopeMisuse(span opentracing.Span, err error) error {
	if s, ok := span.(*spanImpl); ok {
		return s.recordUsageError("Scope.Close", err)
	}
	return newUsageError("Scope.Close", err)
}
