package errors

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"os"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig   Category = "config"
	CategoryManifest Category = "manifest"
	CategoryRoute    Category = "route"
	CategoryServer   Category = "server"
	CategoryCLI      Category = "cli"
)

// Location represents a position in a source file such as a manifest.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// OutletError is a structured error with a code, optional source location
// and a fix suggestion.
type OutletError struct {
	// Code is a unique error identifier (e.g., "E201").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is the file position where the error occurred.
	Location *Location

	// Context contains surrounding source lines.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *OutletError) Error() string {
	msg := e.Message
	if e.Wrapped != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Wrapped)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *OutletError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds a file position and reads the surrounding lines.
func (e *OutletError) WithLocation(file string, line, column int) *OutletError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *OutletError) WithSuggestion(s string) *OutletError {
	e.Suggestion = s
	return e
}

// WithDetail replaces the registered explanation.
func (e *OutletError) WithDetail(d string) *OutletError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *OutletError) Wrap(err error) *OutletError {
	e.Wrapped = err
	return e
}

// readContextLines reads lines around the specified line number from a file.
func readContextLines(filename string, targetLine, contextSize int) []string {
	if filename == "" || targetLine <= 0 {
		return nil
	}
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines
}

// New creates an OutletError from a registered error code.
func New(code string) *OutletError {
	template, ok := registry[code]
	if !ok {
		return &OutletError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &OutletError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates an OutletError with a formatted message and no code.
func Newf(category Category, format string, args ...any) *OutletError {
	return &OutletError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in an OutletError. Errors that already
// carry an OutletError are returned unchanged.
func FromError(err error, code string) *OutletError {
	if err == nil {
		return nil
	}
	var oe *OutletError
	if stderrors.As(err, &oe) {
		return oe
	}
	return New(code).Wrap(err)
}
