package basictracer

import (
	"context"
	"sync"

	opentracing "github.com/opentracing/opentracing-go"
)

// StackScopeManager keeps a single LIFO of scopes. It is the confined
// variant: one manager belongs to one synchronous flow, the way a
// thread-local would, and ignores the context passed to it. Use a
// ContextScopeManager when work fans out across goroutines.
type StackScopeManager struct {
	lock   sync.Mutex
	active *stackScope
}

func NewStackScopeManager() *StackScopeManager {
	return &StackScopeManager{}
}

func (m *StackScopeManager) Active(context.Context) Scope {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.active == nil {
		return nil
	}
	return m.active
}

func (m *StackScopeManager) Activate(ctx context.Context, span opentracing.Span, finishOnClose bool) (context.Context, Scope) {
	m.lock.Lock()
	defer m.lock.Unlock()

	s := &stackScope{
		manager:       m,
		span:          span,
		finishOnClose: finishOnClose,
		previous:      m.active,
	}
	m.active = s
	return ctx, s
}

type stackScope struct {
	manager       *StackScopeManager
	span          opentracing.Span
	finishOnClose bool
	previous      *stackScope
	closed        bool // guarded by manager.lock
}

func (s *stackScope) Span() opentracing.Span {
	return s.span
}

func (s *stackScope) Close() error {
	m := s.manager
	m.lock.Lock()
	switch {
	case s.closed:
		m.lock.Unlock()
		return reportScopeMisuse(s.span, ErrScopeClosed)
	case m.active != s:
		m.lock.Unlock()
		return reportScopeMisuse(s.span, ErrScopeOutOfOrder)
	}
	s.closed = true
	m.active = s.previous
	m.lock.Unlock()

	if s.finishOnClose {
		s.span.Finish()
	}
	return nil
}
