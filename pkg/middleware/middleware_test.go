package middleware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vango-dev/outlet/pkg/loader"
	"github.com/vango-dev/outlet/pkg/navigation"
	"github.com/vango-dev/outlet/pkg/response"
	"github.com/vango-dev/outlet/pkg/route"
)

// loaderCtx receives the context the most recent loader ran with.
var loaderCtx = make(chan context.Context, 16)

// slowStarted is signalled when the "slow" loader begins waiting.
var slowStarted = make(chan struct{}, 16)

func testTree(t *testing.T) *route.Tree {
	t.Helper()
	tree, err := route.NewTree([]route.Route{{
		ID:   "root",
		Path: "/",
		Loader: func(ctx context.Context, args route.Args) (any, error) {
			select {
			case loaderCtx <- ctx:
			default:
			}
			return "root", nil
		},
		ErrorBoundary: func(err error) any { return "ROOT" },
		Children: []route.Route{
			{ID: "ok", Path: "ok"},
			{
				ID:   "slow",
				Path: "slow",
				Loader: func(ctx context.Context, args route.Args) (any, error) {
					slowStarted <- struct{}{}
					<-ctx.Done()
					return nil, ctx.Err()
				},
			},
			{
				ID:   "denied",
				Path: "denied",
				Loader: func(ctx context.Context, args route.Args) (any, error) {
					return nil, response.New(401, "")
				},
			},
		},
	}})
	require.NoError(t, err)
	return tree
}

func testNavigator(t *testing.T, mw ...navigation.Middleware) *navigation.Navigator {
	t.Helper()
	return navigation.New(loader.NewRunner(testTree(t)), navigation.WithMiddleware(mw...))
}

func drainLoaderCtx() {
	for {
		select {
		case <-loaderCtx:
		default:
			return
		}
	}
}
