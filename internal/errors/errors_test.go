package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/outlet/pkg/route"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{"config error", "E102", "Unknown loader strategy", CategoryConfig},
		{"manifest error", "E201", "Manifest syntax error", CategoryManifest},
		{"route error", "E306", "Duplicate route id", CategoryRoute},
		{"unknown error code", "E999", "Unknown error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			assert.Equal(t, tt.wantMsg, err.Message)
			assert.Equal(t, tt.wantCat, err.Category)
			assert.Equal(t, tt.code, err.Code)
		})
	}
}

func TestOutletError_Error(t *testing.T) {
	assert.Equal(t, "E202: Manifest has no routes", New("E202").Error())
	assert.Equal(t, "plain", (&OutletError{Message: "plain"}).Error())

	wrapped := New("E200").Wrap(os.ErrNotExist)
	assert.Equal(t, "E200: Manifest not found: file does not exist", wrapped.Error())
	assert.ErrorIs(t, wrapped, os.ErrNotExist)
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "flag %q is required", "path")
	assert.Equal(t, `flag "path" is required`, err.Message)
	assert.Equal(t, CategoryCLI, err.Category)
	assert.Empty(t, err.Code)
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil, "E100"))

	base := stderrors.New("disk on fire")
	e := FromError(base, "E100")
	assert.Equal(t, "E100", e.Code)
	assert.ErrorIs(t, e, base)

	// An OutletError anywhere in the chain is kept.
	inner := New("E106")
	got := FromError(fmt.Errorf("load: %w", inner), "E100")
	assert.Same(t, inner, got)
}

func TestFromRouteError(t *testing.T) {
	_, err := route.NewTree([]route.Route{
		{ID: "a", Path: "/a"},
		{ID: "a", Path: "/b"},
	})
	require.Error(t, err)

	e := FromRouteError(err)
	assert.Equal(t, "E306", e.Code)
	assert.Equal(t, CategoryRoute, e.Category)
	assert.ErrorIs(t, e, route.ErrDuplicateID)
	assert.Contains(t, e.Suggestion, "a")

	_, err = route.NewTree([]route.Route{{Path: "/files/*", Children: []route.Route{{Path: "x"}}}})
	require.Error(t, err)
	assert.Equal(t, "E302", FromRouteError(err).Code)

	assert.Equal(t, "E300", FromRouteError(stderrors.New("other")).Code)
	assert.Nil(t, FromRouteError(nil))
}

func TestWithLocationReadsContext(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "routes.yaml")
	content := "routes:\n  - id: root\n    path: /\n    loader:\n      throw: {status: 200}\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))

	e := New("E204").WithLocation(file, 5, 7)
	assert.Equal(t, file+":5:7", e.Location.String())
	assert.Equal(t, []string{"    path: /", "    loader:", "      throw: {status: 200}"}, e.Context)

	missing := New("E204").WithLocation(filepath.Join(dir, "nope.yaml"), 3, 0)
	assert.Nil(t, missing.Context)
	assert.Equal(t, filepath.Join(dir, "nope.yaml")+":3", missing.Location.String())
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	e := New("E102").
		Wrap(stderrors.New(`loader: unknown strategy "fast"`)).
		WithSuggestion(`set "strategy" to "parallel"`)

	out := e.Format()
	assert.Contains(t, out, "ERROR E102: Unknown loader strategy")
	assert.Contains(t, out, `loader: unknown strategy "fast"`)
	assert.Contains(t, out, `Hint: set "strategy" to "parallel"`)
	assert.Contains(t, out, "Learn more: https://outlet.dev/docs/errors/E102")
	assert.NotContains(t, out, "\033[")

	assert.Equal(t, `E102: Unknown loader strategy: loader: unknown strategy "fast"`, e.FormatCompact())
}

func TestFormatJSON(t *testing.T) {
	e := New("E204").WithSuggestion("use 404")
	e.Location = &Location{File: "routes.yaml", Line: 3, Column: 2}

	got := e.FormatJSON()
	assert.True(t, strings.HasPrefix(got, `{"code":"E204","category":"manifest"`))
	assert.Contains(t, got, `"location":{"file":"routes.yaml","line":3,"column":2}`)
	assert.Contains(t, got, `"suggestion":"use 404"`)
}

func TestRegistry(t *testing.T) {
	codes := GetAllCodes()
	require.NotEmpty(t, codes)
	assert.Equal(t, "E100", codes[0])
	for _, code := range codes {
		tmpl, ok := GetTemplate(code)
		require.True(t, ok)
		assert.NotEmpty(t, tmpl.Message, code)
		assert.True(t, strings.HasSuffix(tmpl.DocURL, code), code)
	}

	Register("E499", ErrorTemplate{Category: CategoryServer, Message: "custom"})
	defer delete(registry, "E499")
	assert.Equal(t, "custom", New("E499").Message)
}
