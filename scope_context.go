package basictracer

import (
	"context"
	"sync"

	opentracing "github.com/opentracing/opentracing-go"
)

type activeScopeKey struct{}

// ContextScopeManager is the flow-following variant. The active scope is an
// immutable value stored in a context.Context, so it travels with the
// context into goroutines and callbacks and concurrent flows never observe
// each other's scopes.
//
// Activate also stores the span with opentracing.ContextWithSpan, so
// opentracing.SpanFromContext and StartSpanFromContext see it.
type ContextScopeManager struct{}

func NewContextScopeManager() *ContextScopeManager {
	return &ContextScopeManager{}
}

// Active returns the innermost scope stored in ctx that has not been closed.
func (m *ContextScopeManager) Active(ctx context.Context) Scope {
	if s := activeContextScope(ctx); s != nil {
		return s
	}
	return nil
}

func activeContextScope(ctx context.Context) *contextScope {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(activeScopeKey{}).(*contextScope)
	for s != nil && s.isClosed() {
		s = s.previous
	}
	return s
}

func (m *ContextScopeManager) Activate(ctx context.Context, span opentracing.Span, finishOnClose bool) (context.Context, Scope) {
	if ctx == nil {
		ctx = context.Background()
	}

	s := &contextScope{
		span:          span,
		finishOnClose: finishOnClose,
		previous:      activeContextScope(ctx),
	}
	ctx = context.WithValue(ctx, activeScopeKey{}, s)
	ctx = opentracing.ContextWithSpan(ctx, span)
	return ctx, s
}

type contextScope struct {
	span          opentracing.Span
	finishOnClose bool
	previous      *contextScope

	lock   sync.Mutex
	closed bool
}

func (s *contextScope) Span() opentracing.Span {
	return s.span
}

func (s *contextScope) isClosed() bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.closed
}

// Close always succeeds on the first call. The scope is the active one in
// the context Activate returned, and scopes activated on top of it live in
// derived contexts that may belong to other flows, so they never block it.
// Those derived contexts fall back past the closed scope on their next
// Active call.
func (s *contextScope) Close() error {
	s.lock.Lock()
	if s.closed {
		s.lock.Unlock()
		return reportScopeMisuse(s.span, ErrScopeClosed)
	}
	s.closed = true
	s.lock.Unlock()

	if s.finishOnClose {
		s.span.Finish()
	}
	return nil
}
