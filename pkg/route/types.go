package route

import (
	"context"
	"net/http"
	"net/url"
)

// LoaderFunc loads the data a route renders with. Returning a
// *response.Response (or any other error) throws to the nearest boundary.
type LoaderFunc func(ctx context.Context, args Args) (any, error)

// ActionFunc handles a submission (POST, PUT, PATCH, DELETE) to a route.
type ActionFunc func(ctx context.Context, args Args) (any, error)

// BoundaryFunc renders a route's error boundary for the given error.
// The returned value is opaque to this package.
type BoundaryFunc func(err error) any

// ShouldRevalidateFunc decides whether a loader re-runs on a client
// transition. args.DefaultShouldRevalidate carries the built-in decision.
type ShouldRevalidateFunc func(args RevalidateArgs) bool

// Route is a node of a nested route definition.
type Route struct {
	// ID identifies the route. Defaults to the full path pattern
	// ("#index" appended for index routes).
	ID string

	// Path is the pattern: literal segments, ":param" (optionally typed,
	// ":id:int"), and a terminal "*" or "*name" splat. A leading "/" makes
	// the path absolute; it must then start with the parent's full path.
	Path string

	// Index marks the route rendered when the parent matches exactly.
	// Index routes have no path and no children.
	Index bool

	// CaseSensitive makes literal segments compare case-sensitively.
	CaseSensitive bool

	Loader           LoaderFunc
	Action           ActionFunc
	ErrorBoundary    BoundaryFunc
	ShouldRevalidate ShouldRevalidateFunc

	// Children are nested routes rendered inside this one.
	Children []Route
}

// Params maps parameter names to decoded values. The splat remainder is
// stored under SplatParam.
type Params map[string]string

// SplatParam is the reserved key holding a splat's matched suffix.
const SplatParam = "*"

// Clone returns a copy of p that is never nil.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Request is the navigation request handed to loaders and actions.
type Request struct {
	// Method is an HTTP method; GET and HEAD are reads.
	Method string

	// Path is the canonical request path.
	Path string

	// Search is the raw query string.
	Search string

	// Form is the submission payload for mutations.
	Form url.Values

	// Header carries request headers when the navigation came over HTTP.
	Header http.Header
}

// IsSubmission reports whether the request invokes an action.
func (r *Request) IsSubmission() bool {
	switch r.Method {
	case "", http.MethodGet, http.MethodHead:
		return false
	default:
		return true
	}
}

// Query parses Search.
func (r *Request) Query() url.Values {
	q, _ := url.ParseQuery(r.Search)
	return q
}

// URL returns Path with Search.
func (r *Request) URL() string {
	if r.Search == "" {
		return r.Path
	}
	return r.Path + "?" + r.Search
}

// Args is passed to loaders and actions.
type Args struct {
	Request *Request
	Params  Params

	// RouteID is the id of the route whose handler runs.
	RouteID string
}

// RevalidateArgs describes a client transition for ShouldRevalidate.
type RevalidateArgs struct {
	CurrentURL    string
	NextURL       string
	CurrentParams Params
	NextParams    Params

	// FormMethod is set when the transition follows a submission.
	FormMethod string

	// ActionStatus is the status of the preceding action, 0 if none.
	ActionStatus int

	DefaultShouldRevalidate bool
}
