package navigation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vango-dev/outlet/pkg/boundary"
	"github.com/vango-dev/outlet/pkg/datacache"
	"github.com/vango-dev/outlet/pkg/loader"
	"github.com/vango-dev/outlet/pkg/route"
)

// ErrSuperseded is returned by a navigation that was overtaken by a newer
// one before it committed.
var ErrSuperseded = errors.New("navigation: superseded by a newer navigation")

// ErrNotSubmission is returned by Submit for read methods.
var ErrNotSubmission = errors.New("navigation: not a submission method")

// Navigator runs navigations for one client and owns its committed state:
// the last plan and the loader data later transitions may reuse.
//
// Only one navigation commits at a time. Starting a navigation cancels the
// one in flight, which then returns ErrSuperseded and leaves committed state
// alone.
type Navigator struct {
	runner     *loader.Runner
	logger     *slog.Logger
	middleware []Middleware

	store    datacache.Store
	storeKey string

	mu        sync.Mutex
	gen       uint64
	cancel    context.CancelFunc
	committed *loader.Snapshot
	plan      *boundary.Plan

	// persistMu orders store writes so an older snapshot never overwrites
	// a newer one.
	persistMu sync.Mutex
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(n *Navigator) {
		if l != nil {
			n.logger = l
		}
	}
}

// WithMiddleware appends middleware. The first one added runs outermost.
func WithMiddleware(mw ...Middleware) Option {
	return func(n *Navigator) {
		n.middleware = append(n.middleware, mw...)
	}
}

// WithStore persists committed loader data under key after every commit.
func WithStore(store datacache.Store, key string) Option {
	return func(n *Navigator) {
		n.store = store
		n.storeKey = key
	}
}

// New creates a Navigator over runner.
func New(runner *loader.Runner, opts ...Option) *Navigator {
	n := &Navigator{
		runner: runner,
		logger: slog.Default().With("component", "navigation"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Document performs an initial document load. Committed data is ignored
// and replaced.
func (n *Navigator) Document(ctx context.Context, req *route.Request) (*boundary.Plan, error) {
	return n.navigate(ctx, KindDocument, req)
}

// Navigate performs a client transition. Loaders whose inputs are unchanged
// reuse committed data. A submission method makes it a Submit.
func (n *Navigator) Navigate(ctx context.Context, req *route.Request) (*boundary.Plan, error) {
	if req != nil && req.IsSubmission() {
		return n.navigate(ctx, KindSubmission, req)
	}
	return n.navigate(ctx, KindTransition, req)
}

// Submit performs a client submission. An empty method means POST.
func (n *Navigator) Submit(ctx context.Context, req *route.Request) (*boundary.Plan, error) {
	if req == nil {
		return nil, ErrNotSubmission
	}
	r := *req
	if r.Method == "" {
		r.Method = http.MethodPost
	}
	if !r.IsSubmission() {
		return nil, fmt.Errorf("%w: %s", ErrNotSubmission, r.Method)
	}
	return n.navigate(ctx, KindSubmission, &r)
}

// Current returns the committed plan, nil before the first commit.
func (n *Navigator) Current() *boundary.Plan {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.plan
}

// Committed returns the committed loader data, nil before the first commit.
func (n *Navigator) Committed() *loader.Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.committed
}

// Restore loads committed data from the store, if one is configured and
// holds an entry. It does not override data committed since.
func (n *Navigator) Restore(ctx context.Context) error {
	if n.store == nil {
		return nil
	}
	snap, err := n.store.Load(ctx, n.storeKey)
	if err != nil {
		return fmt.Errorf("navigation: restore: %w", err)
	}
	if snap == nil {
		return nil
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.committed == nil {
		n.committed = snap
	}
	return nil
}

// Pending is a navigation that has taken its turn but not yet run.
type Pending struct {
	n      *Navigator
	gen    uint64
	ev     *Event
	prev   *loader.Snapshot
	cancel context.CancelFunc
}

// Start begins a client transition and returns before any loader runs.
// The navigation supersedes the one in flight at the moment Start is
// called, so callers that start navigations in order get them superseded
// in that order regardless of when Wait runs.
func (n *Navigator) Start(ctx context.Context, req *route.Request) *Pending {
	if req != nil && req.IsSubmission() {
		return n.begin(ctx, KindSubmission, req)
	}
	return n.begin(ctx, KindTransition, req)
}

// Wait runs the navigation and returns its plan. It must be called once.
func (p *Pending) Wait() (*boundary.Plan, error) {
	defer p.cancel()
	return p.n.run(p)
}

func (n *Navigator) navigate(ctx context.Context, kind Kind, req *route.Request) (*boundary.Plan, error) {
	return n.begin(ctx, kind, req).Wait()
}

func (n *Navigator) begin(ctx context.Context, kind Kind, req *route.Request) *Pending {
	if req == nil {
		req = &route.Request{Method: http.MethodGet, Path: "/"}
	}

	n.mu.Lock()
	n.gen++
	gen := n.gen
	if n.cancel != nil {
		n.cancel()
	}
	navCtx, cancel := context.WithCancel(ctx)
	n.cancel = cancel
	prev := n.committed
	n.mu.Unlock()

	if kind == KindDocument {
		prev = nil
	}

	return &Pending{
		n:   n,
		gen: gen,
		ev: &Event{
			ID:      uuid.NewString(),
			Kind:    kind,
			Request: req,
			Start:   time.Now(),
			ctx:     navCtx,
		},
		prev:   prev,
		cancel: cancel,
	}
}

func (n *Navigator) run(p *Pending) (*boundary.Plan, error) {
	ev, gen, req := p.ev, p.gen, p.ev.Request

	var plan *boundary.Plan
	err := n.chain(ev, func() error {
		res, err := n.runner.Run(ev.Context(), req, p.prev)
		if err != nil {
			if n.superseded(gen) {
				return ErrSuperseded
			}
			return err
		}
		if n.superseded(gen) {
			return ErrSuperseded
		}
		plan = boundary.Resolve(n.runner.Tree(), res)
		ev.Plan = plan
		return n.commit(ev.Context(), gen, res, plan)
	})
	if err == nil && plan == nil {
		err = errors.New("navigation: middleware did not call next")
	}

	if err != nil {
		if n.superseded(gen) {
			err = ErrSuperseded
		}
		n.logger.Debug("navigation aborted",
			"id", ev.ID,
			"kind", ev.Kind.String(),
			"path", ev.Path(),
			"error", err,
		)
		return nil, err
	}

	n.logger.Info("navigation committed",
		"id", ev.ID,
		"kind", ev.Kind.String(),
		"path", ev.Path(),
		"status", plan.Status,
		"boundary", plan.BoundaryID(),
		"duration", time.Since(ev.Start),
	)
	return plan, nil
}

func (n *Navigator) superseded(gen uint64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return gen != n.gen
}

func (n *Navigator) commit(ctx context.Context, gen uint64, res *loader.Result, plan *boundary.Plan) error {
	n.persistMu.Lock()
	defer n.persistMu.Unlock()

	n.mu.Lock()
	if gen != n.gen {
		n.mu.Unlock()
		return ErrSuperseded
	}
	snap := res.Snapshot()
	n.committed = snap
	n.plan = plan
	n.mu.Unlock()

	if n.store == nil {
		return nil
	}
	if err := n.store.Save(ctx, n.storeKey, snap); err != nil {
		// The navigation itself succeeded; persistence is best effort.
		n.logger.Warn("failed to persist loader data", "key", n.storeKey, "error", err)
	}
	return nil
}

func (n *Navigator) chain(ev *Event, final func() error) error {
	next := final
	for i := len(n.middleware) - 1; i >= 0; i-- {
		mw := n.middleware[i]
		inner := next
		next = func() error {
			return mw.Handle(ev, inner)
		}
	}
	return next()
}
