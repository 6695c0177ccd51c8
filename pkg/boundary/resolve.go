package boundary

import (
	"github.com/vango-dev/outlet/pkg/loader"
	"github.com/vango-dev/outlet/pkg/response"
	"github.com/vango-dev/outlet/pkg/route"
)

// thrown is an error raised at match index at.
type thrown struct {
	at  int
	err error
}

// Resolve decides which boundary renders for res. It does not modify res
// and returns an equal Plan for equal input.
//
// Errors are visited in the order they were raised: a routing error, then
// the action, then loaders root to leaf. Each bubbles to the nearest match at
// or above it that declares a boundary, or to the sentinel root. A boundary
// keeps the first error it receives. The shallowest boundary holding an
// error renders; the matches below it are dropped.
func Resolve(tree *route.Tree, res *loader.Result) *Plan {
	p := &Plan{
		tree:         tree,
		Matches:      res.Matches,
		Outcomes:     res.Loaders,
		Boundary:     -1,
		BoundaryNode: -1,
		Errors:       map[string]error{},
	}

	var errs []thrown
	last := len(res.Matches) - 1
	if res.RoutingError != nil {
		errs = append(errs, thrown{at: last, err: res.RoutingError})
	}
	if res.Action != nil && res.Action.State == loader.StateThrown {
		errs = append(errs, thrown{at: res.ActionIndex, err: res.Action.Err})
	}
	for i, o := range res.Loaders {
		if o.State == loader.StateThrown {
			errs = append(errs, thrown{at: i, err: o.Err})
		}
	}

	// Position in the chain of the shallowest boundary with an error; the
	// sentinel root sorts above every match as -1.
	shallowest := len(res.Matches)
	for _, e := range errs {
		b := tree.NearestBoundary(res.Matches, e.at)
		node := 0
		if b >= 0 {
			node = res.Matches[b].Node
		}
		id := tree.Node(node).ID
		if _, taken := p.Errors[id]; taken {
			continue
		}
		p.Errors[id] = e.err
		if b < shallowest {
			shallowest = b
			p.Boundary = b
			p.BoundaryNode = node
			p.Error = e.err
		}
	}

	if res.Action != nil && res.Action.State == loader.StateOK {
		p.ActionData = res.Action.Data
	}

	p.Status = response.Status(p.Error)
	if res.Action != nil && res.Action.State == loader.StateThrown {
		p.Status = response.Status(res.Action.Err)
	}
	return p
}
