package route

import (
	"github.com/vango-dev/outlet/pkg/routepath"
)

// Match pairs a matched node with what it matched.
type Match struct {
	// Node is the arena position of the matched route.
	Node int

	// ID is the matched route's id.
	ID string

	// Params holds every parameter of the whole match chain.
	Params Params

	// Pathname is the portion of the path matched up to and including this
	// route, splat suffix included.
	Pathname string

	// PathnameBase is Pathname without the splat suffix.
	PathnameBase string
}

// Matches is a root-to-leaf match chain.
type Matches []Match

// Leaf returns the deepest match. It panics on an empty chain.
func (m Matches) Leaf() Match {
	return m[len(m)-1]
}

// IDs returns the route ids of the chain.
func (m Matches) IDs() []string {
	ids := make([]string, len(m))
	for i, match := range m {
		ids[i] = match.ID
	}
	return ids
}

// IndexOf returns the position of route id in the chain, or -1.
func (m Matches) IndexOf(id string) int {
	for i, match := range m {
		if match.ID == id {
			return i
		}
	}
	return -1
}

// Match resolves pathname to the highest ranked branch. found is false when
// no route applies or the path cannot be canonicalized.
//
// Ranking prefers literal segments over dynamic ones and dynamic ones over
// splats; an index route outranks its parent and its parent's splat sibling
// when nothing remains of the path.
func (t *Tree) Match(pathname string) (Matches, bool) {
	c, err := routepath.Canonicalize(pathname)
	if err != nil {
		return nil, false
	}
	raw := routepath.Split(c.Path)
	for _, b := range t.branches {
		if m, ok := t.matchBranch(b, raw); ok {
			return m, true
		}
	}
	return nil, false
}

func (t *Tree) matchBranch(b branch, raw []string) (Matches, bool) {
	params := Params{}
	base := 0
	matches := make(Matches, 0, len(b.nodes))

	for i, pos := range b.nodes {
		n := &t.nodes[pos]
		pm, ok := n.pattern.match(raw[base:], i == len(b.nodes)-1)
		if !ok {
			return nil, false
		}
		for k, v := range pm.params {
			params[k] = v
		}
		matches = append(matches, Match{
			Node:         pos,
			ID:           n.ID,
			Pathname:     routepath.Join(raw[:base+pm.consumed]),
			PathnameBase: routepath.Join(raw[:base+pm.base]),
		})
		base += pm.base
	}

	for i := range matches {
		matches[i].Params = params.Clone()
	}
	return matches, true
}

// NotFoundMatches is the chain used when nothing matches: the first
// top-level route that is an index, pathless or "/" (the application's root
// layout), or the sentinel root when there is none. Its pathname is empty
// and it carries no params.
func (t *Tree) NotFoundMatches() Matches {
	pos := 0
	for _, c := range t.nodes[0].Children {
		r := &t.nodes[c].Route
		if r.Index || r.Path == "" || r.Path == "/" {
			pos = c
			break
		}
	}
	return Matches{{
		Node:   pos,
		ID:     t.nodes[pos].ID,
		Params: Params{},
	}}
}

// NearestBoundary returns the index of the deepest match at or above i whose
// route declares an error boundary, or -1 when the error bubbles past every
// match to the sentinel root.
func (t *Tree) NearestBoundary(m Matches, i int) int {
	if i >= len(m) {
		i = len(m) - 1
	}
	for ; i >= 0; i-- {
		if t.nodes[m[i].Node].HasBoundary() {
			return i
		}
	}
	return -1
}

// Branches returns the ranked full patterns, highest first.
func (t *Tree) Branches() []string {
	out := make([]string, len(t.branches))
	for i, b := range t.branches {
		out[i] = b.path
	}
	return out
}
