package boundary

import (
	"encoding/json"

	"github.com/vango-dev/outlet/pkg/response"
)

type planJSON struct {
	Status     int       `json:"status"`
	Matches    []UIMatch `json:"matches"`
	Boundary   string    `json:"boundary,omitempty"`
	Error      any       `json:"error,omitempty"`
	View       any       `json:"view,omitempty"`
	ActionData any       `json:"actionData,omitempty"`
}

// MarshalJSON encodes the plan as the client consumes it: the rendered
// matches, the boundary id, its error and the boundary's rendered view.
func (p *Plan) MarshalJSON() ([]byte, error) {
	return json.Marshal(planJSON{
		Status:     p.Status,
		Matches:    p.UIMatches(),
		Boundary:   p.BoundaryID(),
		Error:      errorPayload(p.Error),
		View:       p.Render(),
		ActionData: p.ActionData,
	})
}

func errorPayload(err error) any {
	if err == nil {
		return nil
	}
	if r, ok := response.IsRouteErrorResponse(err); ok {
		return r
	}
	if _, ok := err.(json.Marshaler); ok {
		return err
	}
	return struct {
		Message string `json:"message"`
	}{err.Error()}
}
