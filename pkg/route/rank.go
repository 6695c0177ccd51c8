package route

import (
	"sort"
	"strings"
)

// Branch scoring weights. A branch's score starts at its segment count.
const (
	staticSegmentValue  = 10
	dynamicSegmentValue = 3
	emptySegmentValue   = 1
	indexRouteValue     = 2
	splatPenalty        = -2
)

// branch is one root-to-leaf chain a path can resolve to.
type branch struct {
	path   string
	score  int
	nodes  []int // arena positions, top-level route first
	orders []int // sibling order of each node
}

// flatten lists every matchable chain, children before their parent, then
// ranks them. Pathless layout routes only appear inside their descendants'
// chains.
func (t *Tree) flatten() []branch {
	var out []branch
	var walk func(pos int, chain, orders []int)
	walk = func(pos int, chain, orders []int) {
		for _, c := range t.nodes[pos].Children {
			n := &t.nodes[c]
			nextChain := append(append([]int(nil), chain...), c)
			nextOrders := append(append([]int(nil), orders...), n.order)

			if len(n.Children) > 0 {
				walk(c, nextChain, nextOrders)
			}
			if n.Route.Path == "" && !n.Route.Index {
				continue
			}
			out = append(out, branch{
				path:   n.FullPath,
				score:  computeScore(n.FullPath, n.Route.Index),
				nodes:  nextChain,
				orders: nextOrders,
			})
		}
	}
	walk(0, nil, nil)
	rankBranches(out)
	return out
}

// rankBranches sorts by descending score; equal scores fall back to
// declaration order, descendants before their ancestors.
func rankBranches(branches []branch) {
	sort.SliceStable(branches, func(i, j int) bool {
		a, b := branches[i], branches[j]
		if a.score != b.score {
			return a.score > b.score
		}
		return compareOrders(a.orders, b.orders) < 0
	})
}

// compareOrders compares sibling-order paths lexicographically. When one
// path is a prefix of the other, the longer one sorts first.
func compareOrders(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] - b[i]
		}
	}
	return len(b) - len(a)
}

func computeScore(path string, index bool) int {
	segments := strings.Split(path, "/")
	score := len(segments)
	for _, s := range segments {
		if isSplatSegment(s) {
			score += splatPenalty
			break
		}
	}
	if index {
		score += indexRouteValue
	}
	for _, s := range segments {
		switch {
		case isSplatSegment(s):
		case strings.HasPrefix(s, ":"):
			score += dynamicSegmentValue
		case s == "":
			score += emptySegmentValue
		default:
			score += staticSegmentValue
		}
	}
	return score
}

func isSplatSegment(s string) bool {
	return strings.HasPrefix(s, "*")
}
