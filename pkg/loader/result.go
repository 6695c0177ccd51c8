package loader

import (
	"fmt"
	"strings"

	"github.com/vango-dev/outlet/pkg/route"
)

// Strategy selects how loaders of one navigation are scheduled.
type Strategy int

const (
	// Waterfall runs loaders root to leaf, one at a time. Descendants of a
	// loader that threw are never invoked.
	Waterfall Strategy = iota

	// Parallel starts every loader together. Outcomes below the shallowest
	// thrower are discarded and their contexts cancelled.
	Parallel
)

func (s Strategy) String() string {
	switch s {
	case Waterfall:
		return "waterfall"
	case Parallel:
		return "parallel"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy parses "waterfall" or "parallel". The empty string selects
// Waterfall.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "waterfall":
		return Waterfall, nil
	case "parallel":
		return Parallel, nil
	default:
		return Waterfall, fmt.Errorf("loader: unknown strategy %q", s)
	}
}

// State is the lifecycle state of one handler in a navigation.
type State int

const (
	// StateIdle means the route has no handler to run, or nothing asked for it.
	StateIdle State = iota
	// StateOK means the handler ran and returned data.
	StateOK
	// StateThrown means the handler returned an error or panicked.
	StateThrown
	// StateSkipped means the handler was not run, or its outcome was
	// discarded, because an ancestor threw.
	StateSkipped
	// StateReused means committed data was carried forward without running
	// the handler.
	StateReused
)

var stateNames = [...]string{"idle", "ok", "thrown", "skipped", "reused"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Outcome is the result of one loader or action.
type Outcome struct {
	State State
	Data  any
	Err   error
}

// HasData reports whether the outcome carries data a route can render with.
func (o Outcome) HasData() bool {
	return o.State == StateOK || o.State == StateReused
}

// Result is everything a navigation produced before boundary resolution.
type Result struct {
	// Request is the canonicalized request.
	Request *route.Request

	// Matches is the match chain, or the not-found chain when Found is false.
	Matches route.Matches

	Found bool

	// RoutingError is the 404 or 400 raised before any handler ran. It
	// belongs to the last match.
	RoutingError error

	// Loaders holds one outcome per match.
	Loaders []Outcome

	// Action is set for submissions; ActionIndex is its match index, -1
	// otherwise.
	Action      *Outcome
	ActionIndex int
}

// Snapshot returns the committed loader data of r: every match that holds
// data, keyed by route id.
func (r *Result) Snapshot() *Snapshot {
	s := &Snapshot{Entries: make(map[string]Entry, len(r.Matches))}
	if r.Request != nil {
		s.Path = r.Request.Path
		s.Search = r.Request.Search
	}
	for i, m := range r.Matches {
		if i >= len(r.Loaders) || !r.Loaders[i].HasData() {
			continue
		}
		s.Entries[m.ID] = Entry{
			Params:       m.Params.Clone(),
			PathnameBase: m.PathnameBase,
			Data:         r.Loaders[i].Data,
		}
	}
	return s
}

// Snapshot is the loader data committed by the last completed navigation.
// Client transitions reuse entries whose route, params and pathname base are
// unchanged.
type Snapshot struct {
	Path    string           `json:"path"`
	Search  string           `json:"search,omitempty"`
	Entries map[string]Entry `json:"entries"`
}

// Entry is the committed data of one route.
type Entry struct {
	Params       route.Params `json:"params"`
	PathnameBase string       `json:"pathnameBase"`
	Data         any          `json:"data,omitempty"`
}

// URL returns the committed path with its search string.
func (s *Snapshot) URL() string {
	if s == nil {
		return ""
	}
	if s.Search == "" {
		return s.Path
	}
	return s.Path + "?" + s.Search
}

// Lookup returns the entry for route id. It is safe on a nil Snapshot.
func (s *Snapshot) Lookup(id string) (Entry, bool) {
	if s == nil {
		return Entry{}, false
	}
	e, ok := s.Entries[id]
	return e, ok
}
