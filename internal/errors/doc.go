// Package errors provides coded, actionable errors for the outlet CLI and
// server.
//
// Every error code maps to a category, a short message, a longer detail and
// a documentation URL:
//
//   - E1xx: config (outlet.json)
//   - E2xx: route manifest
//   - E3xx: route definitions rejected when the tree is built
//   - E4xx: server and CLI
//
// # Usage
//
//	err := errors.New("E204").
//	    WithLocation("routes.yaml", 12, 9).
//	    WithSuggestion("use a 4xx or 5xx status")
//
//	fmt.Println(err.Format())
//
// Route tree errors are converted with FromRouteError:
//
//	if _, err := route.NewTree(routes); err != nil {
//	    return errors.FromRouteError(err)
//	}
package errors
