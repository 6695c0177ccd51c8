package route

import (
	"fmt"
	"strings"
)

// RootID is the id of the sentinel root node present at position 0 of every
// tree. It owns the fallback error boundary.
const RootID = "__root__"

// Node is an immutable, arena-allocated route of a Tree. Relationships are
// arena positions, never pointers.
type Node struct {
	// Pos is the node's position in the tree arena.
	Pos int

	// ID is the explicit or generated route id.
	ID string

	// Parent is the parent's arena position; -1 for the sentinel root.
	Parent int

	// Children are arena positions in declaration order.
	Children []int

	// Depth is 0 for the sentinel, 1 for top-level routes.
	Depth int

	// FullPath is the absolute pattern (parents joined in).
	FullPath string

	// Route is the definition with Children cleared.
	Route Route

	pattern pattern
	order   int
}

// HasBoundary reports whether the node declares its own error boundary.
func (n *Node) HasBoundary() bool {
	return n.Route.ErrorBoundary != nil
}

// IsIndex reports whether the node is an index route.
func (n *Node) IsIndex() bool {
	return n.Route.Index
}

// IsRoot reports whether n is the sentinel root.
func (n *Node) IsRoot() bool {
	return n.Pos == 0
}

// Tree is a validated, immutable route tree. It is safe for concurrent use.
type Tree struct {
	nodes    []Node
	byID     map[string]int
	branches []branch
}

// TreeOption configures NewTree.
type TreeOption func(*treeConfig)

type treeConfig struct {
	rootBoundary BoundaryFunc
}

// WithRootBoundary replaces the sentinel root's fallback boundary.
func WithRootBoundary(fn BoundaryFunc) TreeOption {
	return func(c *treeConfig) {
		if fn != nil {
			c.rootBoundary = fn
		}
	}
}

// DefaultRootBoundary renders the error as plain text.
func DefaultRootBoundary(err error) any {
	return fmt.Sprintf("Unexpected Application Error! %v", err)
}

// NewTree validates routes and builds the tree. Invalid definitions return a
// *DefinitionError.
func NewTree(routes []Route, opts ...TreeOption) (*Tree, error) {
	cfg := treeConfig{rootBoundary: DefaultRootBoundary}
	for _, opt := range opts {
		opt(&cfg)
	}

	t := &Tree{byID: make(map[string]int)}
	t.nodes = append(t.nodes, Node{
		Pos:      0,
		ID:       RootID,
		Parent:   -1,
		FullPath: "",
		Route:    Route{ID: RootID, ErrorBoundary: cfg.rootBoundary},
	})
	t.byID[RootID] = 0

	if err := t.addChildren(0, routes); err != nil {
		return nil, err
	}
	t.branches = t.flatten()
	return t, nil
}

func (t *Tree) addChildren(parent int, routes []Route) error {
	seenIndex := false
	for i, r := range routes {
		pos, err := t.addNode(parent, i, r)
		if err != nil {
			return err
		}
		if r.Index {
			if seenIndex {
				return definitionError(t.nodes[pos].ID, r.Path, ErrDuplicateIndex)
			}
			seenIndex = true
		}
		if len(r.Children) > 0 {
			if err := t.addChildren(pos, r.Children); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *Tree) addNode(parent, order int, r Route) (int, error) {
	p := &t.nodes[parent]
	name := r.ID
	if name == "" {
		name = r.Path
	}

	if r.Index && r.Path != "" {
		return 0, definitionError(name, r.Path, ErrIndexWithPath)
	}
	if r.Index && len(r.Children) > 0 {
		return 0, definitionError(name, r.Path, ErrIndexWithChildren)
	}

	rel := r.Path
	if strings.HasPrefix(rel, "/") && p.FullPath != "" {
		parentPath := p.FullPath
		if !strings.HasPrefix(rel, parentPath) {
			return 0, definitionError(name, r.Path, ErrAbsolutePathMismatch)
		}
		rel = strings.TrimPrefix(rel, parentPath)
		if rel != "" && !strings.HasPrefix(rel, "/") && !strings.HasSuffix(parentPath, "/") {
			// "/yes/loaderx" is not nested under "/yes/loader".
			return 0, definitionError(name, r.Path, ErrAbsolutePathMismatch)
		}
	}

	pat, err := compilePattern(rel, r.CaseSensitive)
	if err != nil {
		return 0, definitionError(name, r.Path, err)
	}
	if pat.hasSplat() && len(r.Children) > 0 {
		return 0, definitionError(name, r.Path, ErrSplatWithChildren)
	}

	fullPath := joinPaths(p.FullPath, rel)
	id := r.ID
	switch {
	case id == RootID:
		return 0, definitionError(id, r.Path, ErrReservedID)
	case id != "":
		if _, dup := t.byID[id]; dup {
			return 0, definitionError(id, r.Path, ErrDuplicateID)
		}
	default:
		id = t.generateID(fullPath, r.Index)
	}

	def := r
	def.ID = id
	def.Children = nil

	pos := len(t.nodes)
	t.nodes = append(t.nodes, Node{
		Pos:      pos,
		ID:       id,
		Parent:   parent,
		Depth:    p.Depth + 1,
		FullPath: fullPath,
		Route:    def,
		pattern:  pat,
		order:    order,
	})
	t.nodes[parent].Children = append(t.nodes[parent].Children, pos)
	t.byID[id] = pos
	return pos, nil
}

// generateID derives an id from the full pattern, suffixing "-N" on
// collisions (pathless layouts share their parent's pattern).
func (t *Tree) generateID(fullPath string, index bool) string {
	base := fullPath
	if index {
		base += "#index"
	}
	id := base
	for n := 2; ; n++ {
		if _, taken := t.byID[id]; !taken {
			return id
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
}

// Len returns the number of nodes, the sentinel included.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns the node at arena position pos.
func (t *Tree) Node(pos int) *Node {
	return &t.nodes[pos]
}

// Root returns the sentinel root.
func (t *Tree) Root() *Node {
	return &t.nodes[0]
}

// Lookup finds a node by id.
func (t *Tree) Lookup(id string) (*Node, bool) {
	pos, ok := t.byID[id]
	if !ok {
		return nil, false
	}
	return &t.nodes[pos], true
}

// Ancestors returns the arena positions from pos's parent up to the sentinel.
func (t *Tree) Ancestors(pos int) []int {
	var out []int
	for p := t.nodes[pos].Parent; p >= 0; p = t.nodes[p].Parent {
		out = append(out, p)
	}
	return out
}

// Walk visits every user route depth-first in declaration order. Returning
// false from fn stops the walk.
func (t *Tree) Walk(fn func(n *Node) bool) {
	var visit func(pos int) bool
	visit = func(pos int) bool {
		for _, c := range t.nodes[pos].Children {
			if !fn(&t.nodes[c]) || !visit(c) {
				return false
			}
		}
		return true
	}
	visit(0)
}

// joinPaths joins patterns into an absolute one, collapsing duplicate
// slashes and dropping a trailing slash.
func joinPaths(parts ...string) string {
	joined := strings.Join(parts, "/")
	for strings.Contains(joined, "//") {
		joined = strings.ReplaceAll(joined, "//", "/")
	}
	if len(joined) > 1 {
		joined = strings.TrimSuffix(joined, "/")
	}
	return joined
}
