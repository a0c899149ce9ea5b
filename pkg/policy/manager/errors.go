package manager

import "fmt"

// LoadError reports that a policy document could not be loaded into the set.
// It wraps the parse or store error that caused the failure.
type LoadError struct {
	// Path is the policy file that failed.
	Path string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load policy file %q: %v", e.Path, e.Err)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *LoadError) Unwrap() error { return e.Err }
