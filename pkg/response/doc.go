// Package response defines the signals loaders and actions throw to reach an
// error boundary.
//
// A thrown *Response carries a status and an optional payload:
//
//	func loader(ctx context.Context, args route.Args) (any, error) {
//	    return nil, response.Text(http.StatusUnauthorized, "")
//	}
//
// Boundaries recognize it with IsRouteErrorResponse. Any other error (or a
// recovered panic) is wrapped in *UnexpectedError, bubbles the same way and
// reports status 500.
package response
