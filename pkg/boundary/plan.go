package boundary

import (
	"github.com/vango-dev/outlet/pkg/loader"
	"github.com/vango-dev/outlet/pkg/route"
)

// Plan describes what a navigation renders: the matches above the rendering
// boundary with their data, and the boundary with its error.
type Plan struct {
	tree *route.Tree

	// Matches is the full match chain of the navigation.
	Matches route.Matches

	// Outcomes is one loader outcome per match.
	Outcomes []loader.Outcome

	// Boundary is the match index of the rendering boundary. It is -1 when
	// there is no error or when the error reached the sentinel root.
	Boundary int

	// BoundaryNode is the arena position of the rendering boundary, -1 when
	// there is no error.
	BoundaryNode int

	// Error is the error handed to the rendering boundary.
	Error error

	// Errors maps every boundary route id that received an error to that
	// error. Only the first error reaching a boundary is kept.
	Errors map[string]error

	// ActionData is the action's data after a successful submission.
	ActionData any

	// Status is the HTTP status of the navigation.
	Status int
}

// HasError reports whether a boundary renders.
func (p *Plan) HasError() bool {
	return p.Error != nil
}

// Rendered returns the number of leading matches that render: all of them
// without an error, otherwise the matches down to and including the
// boundary.
func (p *Plan) Rendered() int {
	if !p.HasError() {
		return len(p.Matches)
	}
	return p.Boundary + 1
}

// Data returns the loader data of match i, or nil.
func (p *Plan) Data(i int) any {
	if i < 0 || i >= len(p.Outcomes) || !p.Outcomes[i].HasData() {
		return nil
	}
	return p.Outcomes[i].Data
}

// UIMatch is the serializable form of a rendered match.
type UIMatch struct {
	ID       string       `json:"id"`
	Pathname string       `json:"pathname"`
	Params   route.Params `json:"params"`
	Data     any          `json:"data,omitempty"`
}

// UIMatches returns the rendered matches root to leaf.
func (p *Plan) UIMatches() []UIMatch {
	n := p.Rendered()
	out := make([]UIMatch, 0, n)
	for i := 0; i < n; i++ {
		m := p.Matches[i]
		out = append(out, UIMatch{
			ID:       m.ID,
			Pathname: m.Pathname,
			Params:   m.Params.Clone(),
			Data:     p.Data(i),
		})
	}
	return out
}

// BoundaryID returns the id of the rendering boundary's route, "" when no
// boundary renders.
func (p *Plan) BoundaryID() string {
	if p.BoundaryNode < 0 || p.tree == nil {
		return ""
	}
	return p.tree.Node(p.BoundaryNode).ID
}

// Render invokes the rendering boundary with the error. It returns nil when
// nothing threw.
func (p *Plan) Render() any {
	if !p.HasError() || p.tree == nil {
		return nil
	}
	return p.tree.Node(p.BoundaryNode).Route.ErrorBoundary(p.Error)
}
