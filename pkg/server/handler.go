package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/vango-dev/outlet/pkg/boundary"
	"github.com/vango-dev/outlet/pkg/navigation"
	"github.com/vango-dev/outlet/pkg/route"
	"github.com/vango-dev/outlet/pkg/routepath"
)

// maxFormBytes bounds submission bodies.
const maxFormBytes = 1 << 20

// matchResponse is the body of MatchPath.
type matchResponse struct {
	Path    string      `json:"path"`
	Found   bool        `json:"found"`
	Matches []matchJSON `json:"matches"`
}

type matchJSON struct {
	ID           string       `json:"id"`
	Pathname     string       `json:"pathname"`
	PathnameBase string       `json:"pathnameBase"`
	Params       route.Params `json:"params"`
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("path")
	if target == "" {
		writeError(w, http.StatusBadRequest, "missing path")
		return
	}
	c, err := routepath.Canonicalize(target)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tree := s.runner.Tree()
	matches, found := tree.Match(c.Path)
	if !found {
		matches = tree.NotFoundMatches()
	}
	resp := matchResponse{Path: c.Path, Found: found, Matches: make([]matchJSON, 0, len(matches))}
	for _, m := range matches {
		resp.Matches = append(resp.Matches, matchJSON{
			ID:           m.ID,
			Pathname:     m.Pathname,
			PathnameBase: m.PathnameBase,
			Params:       m.Params.Clone(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	nav := s.navigator(s.clientKey(w, r))
	plan, err := nav.Document(r.Context(), requestFrom(r))
	s.writePlan(w, r, plan, err)
}

func (s *Server) handleSubmission(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form: "+err.Error())
		return
	}

	nav := s.navigator(s.clientKey(w, r))
	if err := nav.Restore(r.Context()); err != nil {
		s.logger.Warn("restore failed", "error", err)
	}
	req := requestFrom(r)
	req.Form = r.PostForm
	plan, err := nav.Submit(r.Context(), req)
	s.writePlan(w, r, plan, err)
}

func (s *Server) writePlan(w http.ResponseWriter, r *http.Request, plan *boundary.Plan, err error) {
	if err != nil {
		if errors.Is(err, navigation.ErrSuperseded) || r.Context().Err() != nil {
			// The client went away.
			return
		}
		s.logger.Error("navigation failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "navigation failed")
		return
	}
	writeJSON(w, plan.Status, plan)
}

// clientKey returns the client's persistence key, issuing a cookie when
// needed. It is empty when no store is configured.
func (s *Server) clientKey(w http.ResponseWriter, r *http.Request) string {
	if s.config.Store == nil {
		return ""
	}
	if c, err := r.Cookie(s.config.CookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	key := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    key,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return key
}

func requestFrom(r *http.Request) *route.Request {
	return &route.Request{
		Method: r.Method,
		Path:   r.URL.EscapedPath(),
		Search: r.URL.RawQuery,
		Header: r.Header.Clone(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
