// Package manifest loads route trees described in YAML.
//
// A manifest declares routes with fixture handlers, which is enough to
// serve, match and navigate a tree without writing Go:
//
//	routes:
//	  - id: root
//	    path: /
//	    loader: {data: ROOT}
//	    boundary: true
//	    children:
//	      - path: "users/:id"
//	        loader:
//	          throw: {status: 404, data: no such user}
package manifest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	oerrors "github.com/vango-dev/outlet/internal/errors"
	"github.com/vango-dev/outlet/pkg/response"
	"github.com/vango-dev/outlet/pkg/route"
)

// Manifest is a parsed route manifest.
type Manifest struct {
	Routes []RouteSpec `yaml:"routes"`

	// File is the path the manifest was loaded from, if any.
	File string `yaml:"-"`
}

// RouteSpec declares one route.
type RouteSpec struct {
	ID            string       `yaml:"id"`
	Path          string       `yaml:"path"`
	Index         bool         `yaml:"index"`
	CaseSensitive bool         `yaml:"caseSensitive"`
	Loader        *HandlerSpec `yaml:"loader"`
	Action        *HandlerSpec `yaml:"action"`
	Boundary      Boundary     `yaml:"boundary"`

	// Revalidate is "always", "never" or empty for the default rule.
	Revalidate string      `yaml:"revalidate"`
	Children   []RouteSpec `yaml:"children"`

	Line int `yaml:"-"`
}

// HandlerSpec is a fixture loader or action. Data is returned as is;
// Throw and Error make the handler fail.
type HandlerSpec struct {
	Data  any        `yaml:"data"`
	Throw *ThrowSpec `yaml:"throw"`

	// Error fails with a plain error, reported as 500.
	Error string `yaml:"error"`

	// Delay is a duration the handler waits first, e.g. "50ms".
	Delay string `yaml:"delay"`

	Line int `yaml:"-"`
}

// ThrowSpec is a thrown response.
type ThrowSpec struct {
	Status int `yaml:"status"`
	Data   any `yaml:"data"`
}

// Boundary is "boundary: true" for the default rendering or a string used
// as the boundary's text.
type Boundary struct {
	Enabled bool
	Text    string
}

// UnmarshalYAML accepts a bool or a string.
func (b *Boundary) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!bool" {
		return value.Decode(&b.Enabled)
	}
	if err := value.Decode(&b.Text); err != nil {
		return err
	}
	b.Enabled = true
	return nil
}

// Node.Decode does not inherit the decoder's KnownFields, so nested
// mappings check their keys themselves.
var (
	routeKeys   = keySet("id", "path", "index", "caseSensitive", "loader", "action", "boundary", "revalidate", "children")
	handlerKeys = keySet("data", "throw", "error", "delay")
	throwKeys   = keySet("status", "data")
)

func keySet(keys ...string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

func checkKeys(value *yaml.Node, known map[string]bool, typ string) error {
	if value.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		k := value.Content[i]
		if !known[k.Value] {
			return fmt.Errorf("line %d: field %s not found in type manifest.%s", k.Line, k.Value, typ)
		}
	}
	return nil
}

// UnmarshalYAML records the line of the route.
func (r *RouteSpec) UnmarshalYAML(value *yaml.Node) error {
	if err := checkKeys(value, routeKeys, "RouteSpec"); err != nil {
		return err
	}
	type plain RouteSpec
	if err := value.Decode((*plain)(r)); err != nil {
		return err
	}
	r.Line = value.Line
	return nil
}

// UnmarshalYAML records the line of the handler.
func (h *HandlerSpec) UnmarshalYAML(value *yaml.Node) error {
	if err := checkKeys(value, handlerKeys, "HandlerSpec"); err != nil {
		return err
	}
	type plain HandlerSpec
	if err := value.Decode((*plain)(h)); err != nil {
		return err
	}
	h.Line = value.Line
	return nil
}

// UnmarshalYAML rejects unknown keys.
func (t *ThrowSpec) UnmarshalYAML(value *yaml.Node) error {
	if err := checkKeys(value, throwKeys, "ThrowSpec"); err != nil {
		return err
	}
	type plain ThrowSpec
	return value.Decode((*plain)(t))
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oerrors.New("E200").
			WithDetail("Could not read " + path).
			Wrap(err)
	}
	m, err := Parse(bytes.NewReader(data))
	if err != nil {
		var oe *oerrors.OutletError
		if errors.As(err, &oe) && oe.Location == nil {
			if line := yamlErrorLine(err); line > 0 {
				oe.WithLocation(path, line, 0)
			}
		}
		return nil, err
	}
	m.File = path
	return m, nil
}

// Parse decodes a manifest.
func Parse(r io.Reader) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, oerrors.New("E202")
		}
		return nil, oerrors.New("E201").Wrap(err)
	}
	if len(m.Routes) == 0 {
		return nil, oerrors.New("E202")
	}
	return &m, nil
}

// Build converts the manifest into route definitions with fixture handlers.
func Build(m *Manifest) ([]route.Route, error) {
	return buildRoutes(m, m.Routes)
}

// Tree builds the manifest's route tree. Definition errors are returned as
// coded errors pointing at the manifest.
func Tree(m *Manifest, opts ...route.TreeOption) (*route.Tree, error) {
	routes, err := Build(m)
	if err != nil {
		return nil, err
	}
	tree, err := route.NewTree(routes, opts...)
	if err != nil {
		oe := oerrors.FromRouteError(err)
		var de *route.DefinitionError
		if errors.As(err, &de) && m.File != "" {
			if spec := m.find(de.RouteID, de.Path); spec != nil {
				oe.WithLocation(m.File, spec.Line, 0)
			}
		}
		return nil, oe
	}
	return tree, nil
}

func buildRoutes(m *Manifest, specs []RouteSpec) ([]route.Route, error) {
	routes := make([]route.Route, 0, len(specs))
	for i := range specs {
		r, err := buildRoute(m, &specs[i])
		if err != nil {
			return nil, err
		}
		routes = append(routes, r)
	}
	return routes, nil
}

func buildRoute(m *Manifest, spec *RouteSpec) (route.Route, error) {
	r := route.Route{
		ID:            spec.ID,
		Path:          spec.Path,
		Index:         spec.Index,
		CaseSensitive: spec.CaseSensitive,
	}

	if spec.Loader != nil {
		fn, err := handler(m, spec.Loader)
		if err != nil {
			return r, err
		}
		r.Loader = route.LoaderFunc(fn)
	}
	if spec.Action != nil {
		fn, err := handler(m, spec.Action)
		if err != nil {
			return r, err
		}
		r.Action = route.ActionFunc(fn)
	}
	if spec.Boundary.Enabled {
		r.ErrorBoundary = boundary(spec.Boundary.Text)
	}

	switch spec.Revalidate {
	case "":
	case "always":
		r.ShouldRevalidate = func(route.RevalidateArgs) bool { return true }
	case "never":
		r.ShouldRevalidate = func(route.RevalidateArgs) bool { return false }
	default:
		return r, m.errorAt(oerrors.New("E203").
			WithDetail(fmt.Sprintf("Unknown revalidate value %q.", spec.Revalidate)).
			WithSuggestion(`Use "always" or "never"`), spec.Line)
	}

	if len(spec.Children) > 0 {
		children, err := buildRoutes(m, spec.Children)
		if err != nil {
			return r, err
		}
		r.Children = children
	}
	return r, nil
}

func handler(m *Manifest, h *HandlerSpec) (func(ctx context.Context, args route.Args) (any, error), error) {
	if h.Throw != nil && h.Error != "" {
		return nil, m.errorAt(oerrors.New("E203").
			WithSuggestion("Keep either throw or error"), h.Line)
	}
	if h.Throw != nil && h.Data != nil {
		return nil, m.errorAt(oerrors.New("E203").
			WithSuggestion("Move data under throw"), h.Line)
	}
	if h.Throw != nil && (h.Throw.Status < 400 || h.Throw.Status > 599) {
		return nil, m.errorAt(oerrors.New("E204").
			WithDetail(fmt.Sprintf("Status %d cannot be thrown.", h.Throw.Status)), h.Line)
	}
	var delay time.Duration
	if h.Delay != "" {
		d, err := time.ParseDuration(h.Delay)
		if err != nil {
			return nil, m.errorAt(oerrors.New("E203").
				WithDetail(fmt.Sprintf("Invalid delay %q.", h.Delay)).Wrap(err), h.Line)
		}
		delay = d
	}

	spec := *h
	return func(ctx context.Context, args route.Args) (any, error) {
		if delay > 0 {
			t := time.NewTimer(delay)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-t.C:
			}
		}
		switch {
		case spec.Throw != nil:
			return nil, response.New(spec.Throw.Status, spec.Throw.Data)
		case spec.Error != "":
			return nil, errors.New(spec.Error)
		default:
			return spec.Data, nil
		}
	}, nil
}

// boundary renders text if set, else the error message.
func boundary(text string) route.BoundaryFunc {
	return func(err error) any {
		if text != "" {
			return text
		}
		return err.Error()
	}
}

func (m *Manifest) errorAt(e *oerrors.OutletError, line int) error {
	if m.File != "" && line > 0 {
		e.WithLocation(m.File, line, 0)
	}
	return e
}

// find returns the RouteSpec best matching a definition error: same id and
// path, then same id, then same path.
func (m *Manifest) find(id, path string) *RouteSpec {
	var all []*RouteSpec
	var walk func(specs []RouteSpec)
	walk = func(specs []RouteSpec) {
		for i := range specs {
			all = append(all, &specs[i])
			walk(specs[i].Children)
		}
	}
	walk(m.Routes)

	for _, match := range []func(s *RouteSpec) bool{
		func(s *RouteSpec) bool { return s.ID == id && s.Path == path },
		func(s *RouteSpec) bool { return s.ID != "" && s.ID == id },
		func(s *RouteSpec) bool { return s.Path == path },
	} {
		for _, s := range all {
			if match(s) {
				return s
			}
		}
	}
	return nil
}

// yamlErrorLine extracts "line N" from a yaml error.
func yamlErrorLine(err error) int {
	var te *yaml.TypeError
	msg := err.Error()
	if errors.As(err, &te) && len(te.Errors) > 0 {
		msg = te.Errors[0]
	}
	var line int
	for i := 0; i+5 < len(msg); i++ {
		if msg[i:i+5] == "line " {
			if _, scanErr := fmt.Sscanf(msg[i+5:], "%d", &line); scanErr == nil {
				return line
			}
		}
	}
	return 0
}
