// Package server exposes a route tree over HTTP and WebSocket.
//
// Document loads (GET) and submissions (POST, PUT, PATCH, DELETE) each run
// one navigation and answer with the resolved plan as JSON, using the plan
// status as the HTTP status. A websocket connection on /ws owns a navigator,
// so client transitions reuse loader data and newer messages supersede older
// ones.
//
//	runner := loader.NewRunner(tree, loader.WithStrategy(loader.Parallel))
//	srv := server.New(runner, &server.ServerConfig{
//	    Address: ":8080",
//	    Store:   datacache.NewMemoryStore(),
//	})
//	srv.Use(middleware.Prometheus(), middleware.OpenTelemetry())
//	log.Fatal(srv.Run())
//
// With a Store configured, clients are identified by a cookie and the data
// committed by a document load is available to later submissions and
// websocket transitions.
package server
