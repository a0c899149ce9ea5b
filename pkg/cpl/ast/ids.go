package ast

// PolicyID identifies a template or a linked policy. IDs are opaque strings:
// equality is exact string comparison with no normalization, and the natural
// string ordering is the canonical ordering.
type PolicyID string

// String returns the id as a plain string.
func (id PolicyID) String() string { return string(id) }

// SlotID identifies a placeholder position inside a template. The set of
// slots is closed: a template's principal scope may use SlotPrincipal and its
// resource scope may use SlotResource.
type SlotID string

const (
	// SlotPrincipal is the placeholder for the principal scope.
	SlotPrincipal SlotID = "?principal"
	// SlotResource is the placeholder for the resource scope.
	SlotResource SlotID = "?resource"
)

// Valid reports whether s is one of the declared slots.
func (s SlotID) Valid() bool {
	return s == SlotPrincipal || s == SlotResource
}

// String returns the slot in its source form, e.g. "?principal".
func (s SlotID) String() string { return string(s) }
