package ast

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Effect is the outcome a policy contributes when it matches a request.
type Effect string

const (
	// EffectPermit allows matching requests.
	EffectPermit Effect = "permit"
	// EffectForbid denies matching requests.
	EffectForbid Effect = "forbid"
)

// Valid reports whether e is a declared effect.
func (e Effect) Valid() bool { return e == EffectPermit || e == EffectForbid }

// Template is an immutable policy body with zero or more slots. A template
// with zero slots is the body of a static policy; a template with slots has
// no executable form until it is linked.
type Template struct {
	id        PolicyID
	effect    Effect
	principal ScopeConstraint
	action    ActionConstraint
	resource  ScopeConstraint
	condition Expr
}

// NewTemplate constructs a template. The template's slot set is derived from
// the constraints: a slotted principal constraint contributes ?principal and
// a slotted resource constraint contributes ?resource.
func NewTemplate(id PolicyID, effect Effect, principal ScopeConstraint, action ActionConstraint, resource ScopeConstraint, condition Expr) *Template {
	return &Template{
		id:        id,
		effect:    effect,
		principal: principal,
		action:    action,
		resource:  resource,
		condition: condition,
	}
}

// ID returns the template's policy id.
func (t *Template) ID() PolicyID { return t.id }

// Effect returns the template's effect.
func (t *Template) Effect() Effect { return t.effect }

// Principal returns the principal scope constraint.
func (t *Template) Principal() ScopeConstraint { return t.principal }

// Action returns the action scope constraint.
func (t *Template) Action() ActionConstraint { return t.action }

// Resource returns the resource scope constraint.
func (t *Template) Resource() ScopeConstraint { return t.resource }

// Condition returns the template's condition.
func (t *Template) Condition() Expr { return t.condition }

// Slots returns the template's slot set, derived from its constraints. The
// result is a fresh slice in declaration order (?principal before ?resource).
func (t *Template) Slots() []SlotID {
	var slots []SlotID
	if t.principal.HasSlot() {
		slots = append(slots, SlotPrincipal)
	}
	if t.resource.HasSlot() {
		slots = append(slots, SlotResource)
	}
	return slots
}

// Equal reports whether two templates have identical content, including their
// ids.
func (t *Template) Equal(o *Template) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil {
		return false
	}
	return t.id == o.id &&
		t.effect == o.effect &&
		t.principal.Equal(o.principal) &&
		t.action.Equal(o.action) &&
		t.resource.Equal(o.resource) &&
		t.condition.Equal(o.condition)
}

// String renders the template in its source form, with unbound slots shown as
// their placeholder names.
func (t *Template) String() string { return t.render(nil) }

func (t *Template) render(env SlotEnv) string {
	var sb strings.Builder
	sb.WriteString(string(t.effect))
	sb.WriteString("(")
	t.principal.render(&sb, "principal", SlotPrincipal, env)
	sb.WriteString(", ")
	t.action.render(&sb)
	sb.WriteString(", ")
	t.resource.render(&sb, "resource", SlotResource, env)
	sb.WriteString(")")
	if !t.condition.IsTrue() {
		sb.WriteString(" when { ")
		sb.WriteString(t.condition.String())
		sb.WriteString(" }")
	}
	sb.WriteString(";")
	return sb.String()
}

// templateJSON is the wire form of a template body.
type templateJSON struct {
	ID        PolicyID         `json:"id"`
	Effect    Effect           `json:"effect"`
	Principal ScopeConstraint  `json:"principal"`
	Action    ActionConstraint `json:"action"`
	Resource  ScopeConstraint  `json:"resource"`
	Condition Expr             `json:"condition"`
}

// MarshalJSON serializes the template body by value.
func (t *Template) MarshalJSON() ([]byte, error) {
	return json.Marshal(templateJSON{
		ID:        t.id,
		Effect:    t.effect,
		Principal: t.principal,
		Action:    t.action,
		Resource:  t.resource,
		Condition: t.condition,
	})
}

// UnmarshalJSON restores a template body from its wire form.
func (t *Template) UnmarshalJSON(data []byte) error {
	var w templateJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if !w.Effect.Valid() {
		return fmt.Errorf("invalid effect %q for template %q", w.Effect, w.ID)
	}
	*t = Template{
		id:        w.ID,
		effect:    w.Effect,
		principal: w.Principal,
		action:    w.Action,
		resource:  w.Resource,
		condition: w.Condition,
	}
	return nil
}

// StaticPolicy is a policy body with no slots. It is structurally a trivial
// template; NewStaticPolicy enforces the zero-slot requirement.
type StaticPolicy struct {
	t Template
}

// NewStaticPolicy constructs a static policy. It fails if either scope
// constraint references a slot.
func NewStaticPolicy(id PolicyID, effect Effect, principal ScopeConstraint, action ActionConstraint, resource ScopeConstraint, condition Expr) (StaticPolicy, error) {
	if principal.HasSlot() || resource.HasSlot() {
		return StaticPolicy{}, fmt.Errorf("static policy %q must not contain slots", id)
	}
	return StaticPolicy{t: Template{
		id:        id,
		effect:    effect,
		principal: principal,
		action:    action,
		resource:  resource,
		condition: condition,
	}}, nil
}

// ID returns the static policy's id.
func (p StaticPolicy) ID() PolicyID { return p.t.id }

// Effect returns the static policy's effect.
func (p StaticPolicy) Effect() Effect { return p.t.effect }

// String renders the static policy in its source form.
func (p StaticPolicy) String() string { return p.t.String() }

// LinkStaticPolicy converts a static policy into its template form together
// with the matching link. The template carries the policy's id and zero
// slots; the link carries the same id and an empty environment. The
// conversion is total and loses no information.
func LinkStaticPolicy(p StaticPolicy) (*Template, Policy) {
	t := p.t
	return &t, Policy{id: t.id, template: &t, env: SlotEnv{}}
}
