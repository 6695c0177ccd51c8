package errors

import (
	stderrors "errors"

	"github.com/vango-dev/outlet/pkg/route"
)

var routeCodes = []struct {
	sentinel error
	code     string
}{
	{route.ErrSplatNotLast, "E301"},
	{route.ErrSplatWithChildren, "E302"},
	{route.ErrDuplicateIndex, "E303"},
	{route.ErrIndexWithPath, "E304"},
	{route.ErrIndexWithChildren, "E305"},
	{route.ErrDuplicateID, "E306"},
	{route.ErrAbsolutePathMismatch, "E307"},
	{route.ErrInvalidSegment, "E308"},
	{route.ErrReservedID, "E309"},
}

// FromRouteError converts a route definition error into an OutletError with
// the matching E3xx code. Other errors are wrapped as E300.
func FromRouteError(err error) *OutletError {
	if err == nil {
		return nil
	}
	var oe *OutletError
	if stderrors.As(err, &oe) {
		return oe
	}

	code := "E300"
	for _, rc := range routeCodes {
		if stderrors.Is(err, rc.sentinel) {
			code = rc.code
			break
		}
	}
	e := New(code).Wrap(err)

	var de *route.DefinitionError
	if stderrors.As(err, &de) && de.RouteID != "" {
		e.Suggestion = "check the definition of route " + de.RouteID
	}
	return e
}
