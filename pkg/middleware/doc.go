// Package middleware provides observability middleware for navigations.
//
// # OpenTelemetry
//
// OpenTelemetry starts a span per navigation and installs it in the
// navigation context, so spans started by loaders and actions nest under it:
//
//	nav := navigation.New(runner,
//	    navigation.WithMiddleware(middleware.OpenTelemetry(
//	        middleware.WithTracerName("my-app"),
//	        middleware.WithEventFilter(func(ev *navigation.Event) bool {
//	            return ev.Path() != "/healthz"
//	        }),
//	    )),
//	)
//
// # Prometheus Metrics
//
// Prometheus counts navigations by kind and status, times them, and counts
// rendered error boundaries per route:
//
//	navigation.WithMiddleware(middleware.Prometheus(
//	    middleware.WithNamespace("myapp"),
//	))
//
// Then expose the registry:
//
//	http.Handle("/metrics", promhttp.Handler())
//
// Loaders reach the trace through their context argument:
//
//	func loadUser(ctx context.Context, args route.Args) (any, error) {
//	    req, _ := http.NewRequestWithContext(ctx, "GET", usersAPI+args.Params["id"], nil)
//	    ...
//	}
package middleware
