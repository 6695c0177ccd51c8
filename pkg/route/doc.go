// Package route defines nested routes and resolves request paths against them.
//
// A Tree is built once from []Route and is immutable afterwards. Nodes live
// in an arena; parents and children are arena positions. Position 0 is a
// sentinel root that owns the fallback error boundary, so every error has a
// boundary to land on.
//
// # Patterns
//
//	/flat/*          splat: matches /flat and anything below it
//	/users/:id       dynamic segment, params["id"]
//	/users/:id:int   typed segment, rejected unless it parses as an int
//	/files/*rest     named splat, params["rest"] and params["*"]
//
// Child paths are relative to their parent unless they start with "/", in
// which case they must repeat the parent's full path.
//
// # Ranking
//
// Every route that has a path (or is an index) yields a branch: the chain
// of routes from the top level down to it. Branches are scored by their
// segments (literal 10, dynamic 3, empty 1, index +2, splat -2) and tried
// highest first; sibling ties keep declaration order.
//
//	tree, err := route.NewTree([]route.Route{
//	    {Path: "/", Loader: rootLoader, ErrorBoundary: rootBoundary},
//	    {Path: "/*"},
//	    {Path: "/nested", Children: []route.Route{
//	        {Index: true},
//	        {Path: "*"},
//	    }},
//	})
//	matches, ok := tree.Match("/nested")   // [/nested, /nested#index]
package route
