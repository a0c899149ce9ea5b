package parser

import "fmt"

// ParseError reports a malformed policy document. Line and column point at
// the YAML node at fault when known (1-indexed).
type ParseError struct {
	// File is the path of the document, empty when parsing from memory.
	File string

	// Line is the line number where the error occurred.
	Line int

	// Column is the column number where the error occurred.
	Column int

	// Message describes the error.
	Message string

	// Cause is the underlying YAML error, if any.
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	where := e.File
	if where == "" {
		where = "policy document"
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", where, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", where, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *ParseError) Unwrap() error { return e.Cause }
