package navigation

import (
	"context"
	"fmt"
	"time"

	"github.com/vango-dev/outlet/pkg/boundary"
	"github.com/vango-dev/outlet/pkg/route"
)

// Kind classifies a navigation.
type Kind int

const (
	// KindDocument is an initial document load. It never reuses data.
	KindDocument Kind = iota
	// KindTransition is a client-side transition to another URL.
	KindTransition
	// KindSubmission is a client-side form submission.
	KindSubmission
)

func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindTransition:
		return "transition"
	case KindSubmission:
		return "submission"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Event is one navigation as seen by middleware.
type Event struct {
	// ID is unique per navigation.
	ID string

	Kind    Kind
	Request *route.Request

	// Start is when the navigation began.
	Start time.Time

	// Plan is set once the navigation resolved, before it commits.
	Plan *boundary.Plan

	ctx    context.Context
	values map[any]any
}

// Context returns the navigation's context. Loaders and actions run with it.
func (e *Event) Context() context.Context {
	return e.ctx
}

// SetContext replaces the context handlers run with. Middleware uses it to
// attach tracing spans.
func (e *Event) SetContext(ctx context.Context) {
	if ctx != nil {
		e.ctx = ctx
	}
}

// Path returns the request path, "/" when empty.
func (e *Event) Path() string {
	if e.Request == nil || e.Request.Path == "" {
		return "/"
	}
	return e.Request.Path
}

// SetValue stores a value for later middleware.
func (e *Event) SetValue(key, value any) {
	if e.values == nil {
		e.values = make(map[any]any)
	}
	e.values[key] = value
}

// Value returns a value stored with SetValue.
func (e *Event) Value(key any) any {
	return e.values[key]
}

// Middleware wraps navigations. next runs the rest of the chain and the
// navigation itself; its error is the navigation's error.
type Middleware interface {
	Handle(ev *Event, next func() error) error
}

// MiddlewareFunc adapts a function to Middleware.
type MiddlewareFunc func(ev *Event, next func() error) error

// Handle implements Middleware.
func (f MiddlewareFunc) Handle(ev *Event, next func() error) error {
	return f(ev, next)
}
