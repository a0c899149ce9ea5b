package store

import (
	"fmt"

	"stellar-hq/callisto/pkg/cpl/ast"
)

// OccupiedError reports that an insertion target id is already in use: a
// template id occupied by different content, or a link id occupied at all.
// Raised by Add, AddStatic, and AddTemplate.
type OccupiedError struct {
	// ID is the policy id that was already occupied.
	ID ast.PolicyID
}

// Error implements the error interface.
func (e *OccupiedError) Error() string {
	return fmt.Sprintf("duplicate template or policy id %q", e.ID)
}

// NoSuchTemplateError reports that Link named a template id absent from the
// set. The caller should add the template first.
type NoSuchTemplateError struct {
	// ID is the template id that was not found.
	ID ast.PolicyID
}

// Error implements the error interface.
func (e *NoSuchTemplateError) Error() string {
	return fmt.Sprintf("unable to link: no template with id %q", e.ID)
}

// PolicyIDConflictError reports that the id chosen for a new link collides
// with an existing link or template id.
type PolicyIDConflictError struct {
	// ID is the conflicting policy id.
	ID ast.PolicyID
}

// Error implements the error interface.
func (e *PolicyIDConflictError) Error() string {
	return fmt.Sprintf("linked policy id %q conflicts with an id already in the set", e.ID)
}

// ReificationError reports that a literal policy set could not be converted
// into a live one. The common cause is a literal link whose template id does
// not resolve; a link whose environment does not match its template's slots
// is also rejected, with the slot mismatch as the underlying cause.
type ReificationError struct {
	// LinkID is the literal link that failed to reify.
	LinkID ast.PolicyID
	// TemplateID is the template the link references.
	TemplateID ast.PolicyID
	// Cause is the underlying linking error, nil when the template was
	// simply absent.
	Cause error
}

// Error implements the error interface.
func (e *ReificationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("couldn't reify policy link %q: %v", e.LinkID, e.Cause)
	}
	return fmt.Sprintf("couldn't reify policy link %q: no template with id %q", e.LinkID, e.TemplateID)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *ReificationError) Unwrap() error { return e.Cause }
