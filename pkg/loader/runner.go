package loader

import (
	"context"
	"log/slog"
	"maps"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/outlet/pkg/response"
	"github.com/vango-dev/outlet/pkg/route"
	"github.com/vango-dev/outlet/pkg/routepath"
)

// Runner matches a request against a tree and runs the matched handlers.
// A Runner holds no per-navigation state and is safe for concurrent use.
type Runner struct {
	tree     *route.Tree
	strategy Strategy
	limit    int
	logger   *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithStrategy sets the loader scheduling strategy. Default: Waterfall.
func WithStrategy(s Strategy) Option {
	return func(r *Runner) {
		r.strategy = s
	}
}

// WithConcurrency caps the loaders running at once under Parallel.
// Zero or negative means no cap.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		r.limit = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a Runner for tree.
func NewRunner(tree *route.Tree, opts ...Option) *Runner {
	r := &Runner{
		tree:     tree,
		strategy: Waterfall,
		logger:   slog.Default().With("component", "loader"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Tree returns the runner's route tree.
func (r *Runner) Tree() *route.Tree {
	return r.tree
}

// Strategy returns the configured strategy.
func (r *Runner) Strategy() Strategy {
	return r.strategy
}

// handlerFunc is the shape shared by route.LoaderFunc and route.ActionFunc.
type handlerFunc func(ctx context.Context, args route.Args) (any, error)

// decision is what a loader does in one navigation.
type decision int

const (
	decideIdle decision = iota
	decideRun
	decideReuse
)

// Run matches req and executes its handlers. prev is the committed snapshot
// of the previous navigation; nil means a document load, which never reuses
// data.
//
// Thrown signals are recorded in the Result, never returned. The returned
// error is non-nil only when ctx ends before the run completes.
func (r *Runner) Run(ctx context.Context, req *route.Request, prev *Snapshot) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req == nil {
		req = &route.Request{Method: http.MethodGet, Path: "/"}
	}

	nreq := *req
	res := &Result{Request: &nreq, ActionIndex: -1}

	c, err := routepath.Canonicalize(req.Path)
	if err != nil {
		r.logger.Debug("rejecting request path", "path", req.Path, "error", err)
		res.Matches = r.tree.NotFoundMatches()
		res.RoutingError = response.BadRequest(err)
		res.Loaders = carryForward(res.Matches, prev)
		return res, nil
	}
	nreq.Path = c.Path
	if nreq.Search == "" {
		nreq.Search = c.Search
	}

	matches, ok := r.tree.Match(c.Path)
	if !ok {
		res.Matches = r.tree.NotFoundMatches()
		res.RoutingError = response.NotFound(c.Path)
		res.Loaders = carryForward(res.Matches, prev)
		return res, nil
	}
	res.Matches = matches
	res.Found = true
	res.Loaders = make([]Outcome, len(matches))

	// Loaders run for matches [0, limit).
	limit := len(matches)
	actionStatus := 0
	if nreq.IsSubmission() {
		idx := r.actionTarget(matches, &nreq)
		res.ActionIndex = idx
		out := r.runAction(ctx, matches[idx], &nreq)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.Action = &out
		actionStatus = http.StatusOK
		if out.State == StateThrown {
			actionStatus = response.Status(out.Err)
			limit = max(r.tree.NearestBoundary(matches, idx), 0)
		}
	}

	plan := make([]decision, len(matches))
	for i := 0; i < limit; i++ {
		plan[i] = r.decide(matches[i], &nreq, prev, actionStatus)
	}

	switch r.strategy {
	case Parallel:
		r.runParallel(ctx, res, plan, limit, prev)
	default:
		r.runWaterfall(ctx, res, plan, limit, prev)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i := limit; i < len(matches); i++ {
		res.Loaders[i] = Outcome{State: StateSkipped}
	}
	// The boundary that catches a thrown action keeps its committed data.
	if limit < len(matches) && res.Action != nil && res.Action.State == StateThrown {
		if e, ok := prev.Lookup(matches[limit].ID); ok {
			res.Loaders[limit] = Outcome{State: StateReused, Data: e.Data}
		}
	}
	return res, nil
}

// carryForward fills the outcomes of a not-found chain: committed data for
// the same route is kept, nothing runs.
func carryForward(matches route.Matches, prev *Snapshot) []Outcome {
	out := make([]Outcome, len(matches))
	for i, m := range matches {
		if e, ok := prev.Lookup(m.ID); ok {
			out[i] = Outcome{State: StateReused, Data: e.Data}
		}
	}
	return out
}

// actionTarget is the deepest match, except that an index leaf only takes
// the submission when the search string carries "index"; otherwise its
// parent does.
func (r *Runner) actionTarget(matches route.Matches, req *route.Request) int {
	i := len(matches) - 1
	if i > 0 && r.tree.Node(matches[i].Node).IsIndex() && !req.Query().Has("index") {
		i--
	}
	return i
}

func (r *Runner) runAction(ctx context.Context, m route.Match, req *route.Request) Outcome {
	node := r.tree.Node(m.Node)
	if node.Route.Action == nil {
		return Outcome{
			State: StateThrown,
			Err:   response.MethodNotAllowed(req.Method, req.Path, m.ID),
		}
	}
	return r.invoke(ctx, "action", handlerFunc(node.Route.Action), route.Args{Request: req, Params: m.Params.Clone(), RouteID: m.ID})
}

func (r *Runner) decide(m route.Match, req *route.Request, prev *Snapshot, actionStatus int) decision {
	node := r.tree.Node(m.Node)
	if node.Route.Loader == nil {
		return decideIdle
	}
	entry, ok := prev.Lookup(m.ID)
	if !ok {
		return decideRun
	}

	def := req.IsSubmission() ||
		!maps.Equal(entry.Params, m.Params) ||
		entry.PathnameBase != m.PathnameBase ||
		prev.Search != req.Search

	if fn := node.Route.ShouldRevalidate; fn != nil {
		args := route.RevalidateArgs{
			CurrentURL:              prev.URL(),
			NextURL:                 req.URL(),
			CurrentParams:           entry.Params.Clone(),
			NextParams:              m.Params.Clone(),
			ActionStatus:            actionStatus,
			DefaultShouldRevalidate: def,
		}
		if req.IsSubmission() {
			args.FormMethod = req.Method
		}
		def = fn(args)
	}
	if def {
		return decideRun
	}
	return decideReuse
}

func (r *Runner) runWaterfall(ctx context.Context, res *Result, plan []decision, limit int, prev *Snapshot) {
	thrown := false
	for i := 0; i < limit; i++ {
		if thrown {
			res.Loaders[i] = Outcome{State: StateSkipped}
			continue
		}
		res.Loaders[i] = r.loadOne(ctx, res, i, plan[i], prev)
		if ctx.Err() != nil {
			return
		}
		thrown = res.Loaders[i].State == StateThrown
	}
}

func (r *Runner) runParallel(ctx context.Context, res *Result, plan []decision, limit int, prev *Snapshot) {
	ctxs := make([]context.Context, limit)
	cancels := make([]context.CancelFunc, limit)
	for i := range ctxs {
		ctxs[i], cancels[i] = context.WithCancel(ctx)
	}
	defer func() {
		for _, cancel := range cancels {
			cancel()
		}
	}()

	var g errgroup.Group
	if r.limit > 0 {
		g.SetLimit(r.limit)
	}
	for i := 0; i < limit; i++ {
		g.Go(func() error {
			if ctxs[i].Err() != nil {
				res.Loaders[i] = Outcome{State: StateSkipped}
				return nil
			}
			out := r.loadOne(ctxs[i], res, i, plan[i], prev)
			res.Loaders[i] = out
			if out.State == StateThrown {
				for _, cancel := range cancels[i+1:] {
					cancel()
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	for i := 0; i < limit; i++ {
		if res.Loaders[i].State != StateThrown {
			continue
		}
		for j := i + 1; j < limit; j++ {
			res.Loaders[j] = Outcome{State: StateSkipped}
		}
		break
	}
}

func (r *Runner) loadOne(ctx context.Context, res *Result, i int, d decision, prev *Snapshot) Outcome {
	m := res.Matches[i]
	switch d {
	case decideReuse:
		e, _ := prev.Lookup(m.ID)
		return Outcome{State: StateReused, Data: e.Data}
	case decideRun:
		loader := r.tree.Node(m.Node).Route.Loader
		return r.invoke(ctx, "loader", handlerFunc(loader), route.Args{Request: res.Request, Params: m.Params.Clone(), RouteID: m.ID})
	default:
		return Outcome{State: StateIdle}
	}
}

// invoke runs one handler, converting errors and panics into thrown
// outcomes.
func (r *Runner) invoke(ctx context.Context, kind string, fn handlerFunc, args route.Args) (out Outcome) {
	start := time.Now()
	defer func() {
		if v := recover(); v != nil {
			r.logger.Error("handler panicked",
				"kind", kind,
				"route", args.RouteID,
				"panic", v,
			)
			out = Outcome{State: StateThrown, Err: response.FromPanic(v)}
		}
		r.logger.Debug("handler finished",
			"kind", kind,
			"route", args.RouteID,
			"state", out.State.String(),
			"duration", time.Since(start),
		)
	}()

	data, err := fn(ctx, args)
	if err != nil {
		return Outcome{State: StateThrown, Err: response.Unexpected(err)}
	}
	return Outcome{State: StateOK, Data: data}
}
