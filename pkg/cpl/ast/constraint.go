package ast

import (
	"slices"
	"strings"
)

// ScopeOp is the relation a scope constraint applies: no constraint, equality
// to a single entity, or membership in an entity's hierarchy.
type ScopeOp string

const (
	// OpAny places no constraint on the scope.
	OpAny ScopeOp = "any"
	// OpEq constrains the scope to a single entity (or slot).
	OpEq ScopeOp = "eq"
	// OpIn constrains the scope to descendants of an entity (or slot).
	OpIn ScopeOp = "in"
)

// ScopeConstraint constrains the principal or resource scope of a policy
// body. When Slot is set the constraint references the scope's placeholder
// slot instead of a concrete entity; which slot that is follows from the
// constraint's position in the template (principal or resource).
type ScopeConstraint struct {
	Op     ScopeOp   `json:"op"`
	Slot   bool      `json:"slot,omitempty"`
	Entity EntityUID `json:"entity,omitzero"`
}

// AnyScope returns the unconstrained scope.
func AnyScope() ScopeConstraint { return ScopeConstraint{Op: OpAny} }

// EqScope constrains the scope to exactly e.
func EqScope(e EntityUID) ScopeConstraint { return ScopeConstraint{Op: OpEq, Entity: e} }

// InScope constrains the scope to the hierarchy under e.
func InScope(e EntityUID) ScopeConstraint { return ScopeConstraint{Op: OpIn, Entity: e} }

// EqSlotScope constrains the scope to equal the scope's placeholder slot.
func EqSlotScope() ScopeConstraint { return ScopeConstraint{Op: OpEq, Slot: true} }

// InSlotScope constrains the scope to the hierarchy under the placeholder slot.
func InSlotScope() ScopeConstraint { return ScopeConstraint{Op: OpIn, Slot: true} }

// HasSlot reports whether the constraint references a placeholder slot.
func (c ScopeConstraint) HasSlot() bool { return c.Op != OpAny && c.Slot }

// Equal reports whether two scope constraints have identical content.
func (c ScopeConstraint) Equal(o ScopeConstraint) bool { return c == o }

// render writes the constraint's source form for the named scope variable,
// substituting the bound entity for the slot when env has a binding.
func (c ScopeConstraint) render(sb *strings.Builder, scope string, slot SlotID, env SlotEnv) {
	sb.WriteString(scope)
	if c.Op == OpAny {
		return
	}
	switch c.Op {
	case OpEq:
		sb.WriteString(" == ")
	case OpIn:
		sb.WriteString(" in ")
	}
	if c.Slot {
		if uid, ok := env[slot]; ok {
			sb.WriteString(uid.String())
		} else {
			sb.WriteString(slot.String())
		}
		return
	}
	sb.WriteString(c.Entity.String())
}

// ActionConstraint constrains the action scope of a policy body. Actions have
// no slots: the constraint is either unconstrained, equality to one action
// entity, or membership in a set of action entities.
type ActionConstraint struct {
	Op       ScopeOp     `json:"op"`
	Entities []EntityUID `json:"entities,omitempty"`
}

// AnyAction returns the unconstrained action scope.
func AnyAction() ActionConstraint { return ActionConstraint{Op: OpAny} }

// EqAction constrains the action to exactly e.
func EqAction(e EntityUID) ActionConstraint {
	return ActionConstraint{Op: OpEq, Entities: []EntityUID{e}}
}

// InActions constrains the action to membership in the given set.
func InActions(entities ...EntityUID) ActionConstraint {
	return ActionConstraint{Op: OpIn, Entities: slices.Clone(entities)}
}

// Equal reports whether two action constraints have identical content.
func (c ActionConstraint) Equal(o ActionConstraint) bool {
	return c.Op == o.Op && slices.Equal(c.Entities, o.Entities)
}

func (c ActionConstraint) render(sb *strings.Builder) {
	sb.WriteString("action")
	switch c.Op {
	case OpAny:
	case OpEq:
		sb.WriteString(" == ")
		if len(c.Entities) > 0 {
			sb.WriteString(c.Entities[0].String())
		}
	case OpIn:
		sb.WriteString(" in [")
		for i, e := range c.Entities {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(e.String())
		}
		sb.WriteString("]")
	}
}
