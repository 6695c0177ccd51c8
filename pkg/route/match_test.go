package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func splatTree(t *testing.T) *Tree {
	t.Helper()
	tree, err := NewTree([]Route{
		{ID: "root-index", Path: "/"},
		{ID: "root-splat", Path: "/*"},
		{ID: "flat", Path: "/flat/*"},
		{ID: "nested", Path: "/nested", Children: []Route{
			{ID: "nested-index", Index: true},
			{ID: "nested-splat", Path: "*"},
		}},
		{ID: "parentless", Path: "/parentless/*"},
	})
	require.NoError(t, err)
	return tree
}

func TestMatchSplatRoutes(t *testing.T) {
	tree := splatTree(t)

	tests := []struct {
		name      string
		path      string
		wantIDs   []string
		wantSplat string
	}{
		{"flat exact match", "/flat", []string{"flat"}, ""},
		{"flat deep match", "/flat/swig", []string{"flat"}, "swig"},
		{"index over root splat", "/", []string{"root-index"}, ""},
		{"root splat", "/twisted/sugar", []string{"root-splat"}, "twisted/sugar"},
		{"index over nested splat", "/nested", []string{"nested", "nested-index"}, ""},
		{"nested child", "/nested/sodalicious", []string{"nested", "nested-splat"}, "sodalicious"},
		{"parentless exact match", "/parentless", []string{"parentless"}, ""},
		{"parentless deep match", "/parentless/chip", []string{"parentless"}, "chip"},
		{"trailing slash", "/nested/", []string{"nested", "nested-index"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches, ok := tree.Match(tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.wantIDs, matches.IDs())
			if _, isSplat := matches.Leaf().Params[SplatParam]; isSplat {
				assert.Equal(t, tt.wantSplat, matches.Leaf().Params[SplatParam])
			} else {
				assert.Empty(t, tt.wantSplat)
			}
		})
	}
}

func TestMatchPathnames(t *testing.T) {
	tree := splatTree(t)

	matches, ok := tree.Match("/nested/a/b")
	require.True(t, ok)
	require.Len(t, matches, 2)

	assert.Equal(t, "/nested", matches[0].Pathname)
	assert.Equal(t, "/nested", matches[0].PathnameBase)
	assert.Equal(t, "/nested/a/b", matches[1].Pathname)
	assert.Equal(t, "/nested", matches[1].PathnameBase)

	// Every match sees the params of the whole chain.
	assert.Equal(t, "a/b", matches[0].Params[SplatParam])
	assert.Equal(t, "a/b", matches[1].Params[SplatParam])
}

func TestMatchPrecedence(t *testing.T) {
	tree, err := NewTree([]Route{
		{ID: "splat", Path: "/users/*"},
		{ID: "dynamic", Path: "/users/:id"},
		{ID: "static", Path: "/users/new"},
	})
	require.NoError(t, err)

	tests := map[string]string{
		"/users/new":   "static",
		"/users/42":    "dynamic",
		"/users/42/x":  "splat",
		"/users":       "splat",
		"/USERS/NEW":   "static",
		"/users/a%20b": "dynamic",
	}
	for path, want := range tests {
		matches, ok := tree.Match(path)
		require.True(t, ok, path)
		assert.Equal(t, want, matches.Leaf().ID, path)
	}

	matches, _ := tree.Match("/users/a%20b")
	assert.Equal(t, "a b", matches.Leaf().Params["id"])
}

func TestMatchChildSplatBeatsParentSplat(t *testing.T) {
	tree, err := NewTree([]Route{
		{ID: "root-splat", Path: "/*"},
		{ID: "docs", Path: "/docs", Children: []Route{
			{ID: "docs-splat", Path: "*"},
		}},
	})
	require.NoError(t, err)

	matches, ok := tree.Match("/docs/guide/intro")
	require.True(t, ok)
	assert.Equal(t, []string{"docs", "docs-splat"}, matches.IDs())

	matches, ok = tree.Match("/blog/post")
	require.True(t, ok)
	assert.Equal(t, []string{"root-splat"}, matches.IDs())
}

func TestMatchTypedParams(t *testing.T) {
	tree, err := NewTree([]Route{
		{ID: "by-id", Path: "/items/:id:int"},
		{ID: "by-uuid", Path: "/items/:key:uuid"},
		{ID: "by-slug", Path: "/items/:slug"},
	})
	require.NoError(t, err)

	m, ok := tree.Match("/items/12")
	require.True(t, ok)
	assert.Equal(t, "by-id", m.Leaf().ID)

	m, ok = tree.Match("/items/123e4567-e89b-12d3-a456-426614174000")
	require.True(t, ok)
	assert.Equal(t, "by-uuid", m.Leaf().ID)

	m, ok = tree.Match("/items/hello")
	require.True(t, ok)
	assert.Equal(t, "by-slug", m.Leaf().ID)
	assert.Equal(t, "hello", m.Leaf().Params["slug"])
}

func TestMatchNamedSplat(t *testing.T) {
	tree, err := NewTree([]Route{{ID: "files", Path: "/files/*rest"}})
	require.NoError(t, err)

	m, ok := tree.Match("/files/a/b%20c")
	require.True(t, ok)
	assert.Equal(t, "a/b c", m.Leaf().Params["rest"])
	assert.Equal(t, "a/b c", m.Leaf().Params[SplatParam])
}

func TestMatchCaseSensitive(t *testing.T) {
	tree, err := NewTree([]Route{{ID: "exact", Path: "/About", CaseSensitive: true}})
	require.NoError(t, err)

	_, ok := tree.Match("/About")
	assert.True(t, ok)
	_, ok = tree.Match("/about")
	assert.False(t, ok)
}

func TestMatchEncodedSlashRejected(t *testing.T) {
	tree, err := NewTree([]Route{{ID: "user", Path: "/u/:name"}})
	require.NoError(t, err)

	_, ok := tree.Match("/u/a%2Fb")
	assert.False(t, ok)
}

func TestMatchPathlessLayout(t *testing.T) {
	tree, err := NewTree([]Route{
		{ID: "auth-layout", Children: []Route{
			{ID: "login", Path: "/login"},
		}},
	})
	require.NoError(t, err)

	m, ok := tree.Match("/login")
	require.True(t, ok)
	assert.Equal(t, []string{"auth-layout", "login"}, m.IDs())

	_, ok = tree.Match("/")
	assert.False(t, ok, "pathless layouts do not match on their own")
}

func TestMatchNoRoute(t *testing.T) {
	tree, err := NewTree([]Route{{ID: "about", Path: "/about"}})
	require.NoError(t, err)

	_, ok := tree.Match("/not/found")
	assert.False(t, ok)

	_, ok = tree.Match("/../etc/passwd")
	assert.False(t, ok)
}

func TestNotFoundMatches(t *testing.T) {
	tree, err := NewTree([]Route{
		{ID: "about", Path: "/about"},
		{ID: "root", Path: "/", Children: []Route{{Index: true}}},
	})
	require.NoError(t, err)

	nf := tree.NotFoundMatches()
	require.Len(t, nf, 1)
	assert.Equal(t, "root", nf[0].ID)
	assert.Equal(t, "", nf[0].Pathname)
	assert.Empty(t, nf[0].Params)
	assert.NotNil(t, nf[0].Params)

	bare, err := NewTree([]Route{{ID: "about", Path: "/about"}})
	require.NoError(t, err)
	nf = bare.NotFoundMatches()
	assert.Equal(t, RootID, nf[0].ID)
	assert.Equal(t, 0, nf[0].Node)
}

func TestNearestBoundary(t *testing.T) {
	boundary := func(err error) any { return err.Error() }
	tree, err := NewTree([]Route{
		{ID: "root", Path: "/", ErrorBoundary: boundary, Children: []Route{
			{ID: "parent", Path: "a", Children: []Route{
				{ID: "child", Path: "b", ErrorBoundary: boundary},
			}},
		}},
		{ID: "bare", Path: "/bare"},
	})
	require.NoError(t, err)

	m, ok := tree.Match("/a/b")
	require.True(t, ok)
	require.Equal(t, []string{"root", "parent", "child"}, m.IDs())
	assert.Equal(t, 2, tree.NearestBoundary(m, 2))
	assert.Equal(t, 0, tree.NearestBoundary(m, 1))
	assert.Equal(t, 0, tree.NearestBoundary(m, 0))
	assert.Equal(t, 2, tree.NearestBoundary(m, 9))

	m, ok = tree.Match("/bare")
	require.True(t, ok)
	assert.Equal(t, -1, tree.NearestBoundary(m, 0))
}

func TestMatchesHelpers(t *testing.T) {
	tree := splatTree(t)
	m, ok := tree.Match("/nested")
	require.True(t, ok)

	assert.Equal(t, 1, m.IndexOf("nested-index"))
	assert.Equal(t, -1, m.IndexOf("flat"))
	assert.Equal(t, "nested-index", m.Leaf().ID)
}
