package route

import (
	"errors"
	"fmt"
)

// Route definition errors returned (wrapped in *DefinitionError) by NewTree.
var (
	ErrSplatNotLast         = errors.New("route: splat segment must terminate the path")
	ErrSplatWithChildren    = errors.New("route: splat route cannot have child routes")
	ErrDuplicateIndex       = errors.New("route: more than one index route under the same parent")
	ErrIndexWithPath        = errors.New("route: index route cannot have a path")
	ErrIndexWithChildren    = errors.New("route: index route cannot have child routes")
	ErrDuplicateID          = errors.New("route: duplicate route id")
	ErrAbsolutePathMismatch = errors.New("route: absolute child path must start with the parent path")
	ErrInvalidSegment       = errors.New("route: invalid path segment")
	ErrReservedID           = errors.New("route: reserved route id")
)

// DefinitionError describes an invalid route definition.
type DefinitionError struct {
	// RouteID is the explicit or generated id of the offending route.
	RouteID string

	// Path is the route's declared path.
	Path string

	// Err is one of the sentinel errors above.
	Err error
}

// Error returns the message with route context.
func (e *DefinitionError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("route %q: %v", e.RouteID, e.Err)
	}
	return fmt.Sprintf("route %q (path %q): %v", e.RouteID, e.Path, e.Err)
}

// Unwrap returns the underlying sentinel for errors.Is.
func (e *DefinitionError) Unwrap() error {
	return e.Err
}

func definitionError(id, path string, err error) *DefinitionError {
	return &DefinitionError{RouteID: id, Path: path, Err: err}
}
