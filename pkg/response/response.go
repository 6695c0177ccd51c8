package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
)

// Response is a status-carrying signal thrown by a loader or action.
//
// A handler returns it as its error to hand control to the nearest error
// boundary. It is a value distinct from ordinary handler results: recognizing
// it goes through IsRouteErrorResponse, never through the result type.
type Response struct {
	// Status is the HTTP-style status code.
	Status int `json:"status"`

	// StatusText defaults to http.StatusText(Status).
	StatusText string `json:"statusText"`

	// Data is the payload handed to the boundary.
	Data any `json:"data,omitempty"`

	// Internal marks responses synthesized by the router itself
	// (not found, method not allowed, bad request).
	Internal bool `json:"internal,omitempty"`
}

// New creates a Response with the given status and payload.
func New(status int, data any) *Response {
	return &Response{
		Status:     status,
		StatusText: http.StatusText(status),
		Data:       data,
	}
}

// Text is New with a string payload.
func Text(status int, body string) *Response {
	return New(status, body)
}

// JSON decodes body and uses the decoded value as payload. Invalid JSON is
// kept as a raw string.
func JSON(status int, body []byte) *Response {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return New(status, string(body))
	}
	return New(status, v)
}

// Error implements error. The format is "<status> <payload>" when a string
// payload is present, which is what boundaries usually print.
func (r *Response) Error() string {
	if s, ok := r.Data.(string); ok && s != "" {
		return fmt.Sprintf("%d %s", r.Status, s)
	}
	if r.StatusText != "" {
		return fmt.Sprintf("%d %s", r.Status, r.StatusText)
	}
	return fmt.Sprintf("%d", r.Status)
}

// NotFound is the signal raised when no route matches pathname.
func NotFound(pathname string) *Response {
	r := New(http.StatusNotFound, fmt.Sprintf("No route matches URL %q", pathname))
	r.Internal = true
	return r
}

// MethodNotAllowed is raised when a submission targets a route without an
// action.
func MethodNotAllowed(method, pathname, routeID string) *Response {
	r := New(http.StatusMethodNotAllowed,
		fmt.Sprintf("You made a %s request to %q but did not provide an action for route %q", method, pathname, routeID))
	r.Internal = true
	return r
}

// BadRequest is raised for malformed request paths.
func BadRequest(reason error) *Response {
	r := New(http.StatusBadRequest, reason.Error())
	r.Internal = true
	return r
}

// IsRouteErrorResponse reports whether err is, or wraps, a Response.
func IsRouteErrorResponse(err error) (*Response, bool) {
	var r *Response
	if errors.As(err, &r) && r != nil {
		return r, true
	}
	return nil, false
}

// Status returns the status a boundary should report for err: the Response
// status when err is a signal, 500 otherwise, 200 for nil.
func Status(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if r, ok := IsRouteErrorResponse(err); ok {
		return r.Status
	}
	return http.StatusInternalServerError
}

// UnexpectedError wraps a failure that is not a Response: an ordinary error
// returned by a handler or a recovered panic. It bubbles exactly like a
// Response but reports an unknown status.
type UnexpectedError struct {
	Err   error
	Panic any
	Stack []byte
}

// Unexpected wraps err. Responses and already-wrapped errors pass through.
func Unexpected(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := IsRouteErrorResponse(err); ok {
		return err
	}
	var ue *UnexpectedError
	if errors.As(err, &ue) {
		return err
	}
	return &UnexpectedError{Err: err}
}

// FromPanic wraps a recovered panic value together with the current stack.
func FromPanic(v any) *UnexpectedError {
	err, ok := v.(error)
	if !ok {
		err = fmt.Errorf("panic: %v", v)
	}
	return &UnexpectedError{Err: err, Panic: v, Stack: debug.Stack()}
}

// Error implements error.
func (e *UnexpectedError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *UnexpectedError) Unwrap() error {
	return e.Err
}

// MarshalJSON renders the error as {"message": ...} so plans serialize
// without leaking stacks.
func (e *UnexpectedError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Message string `json:"message"`
	}{e.Err.Error()})
}
