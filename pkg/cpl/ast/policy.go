package ast

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// SlotEnv maps each slot of a template to the entity identifier bound to it.
type SlotEnv map[SlotID]EntityUID

// Clone returns a copy of the environment. A nil environment clones to an
// empty one.
func (e SlotEnv) Clone() SlotEnv {
	out := make(SlotEnv, len(e))
	maps.Copy(out, e)
	return out
}

// Equal reports whether two environments contain the same bindings.
func (e SlotEnv) Equal(o SlotEnv) bool { return maps.Equal(e, o) }

// Policy is a concrete, executable policy: a link from a template with every
// slot bound to an entity identifier. Policies share their template body by
// pointer with the policy set that owns them.
type Policy struct {
	id       PolicyID
	template *Template
	env      SlotEnv
}

// ID returns the link's own policy id.
func (p Policy) ID() PolicyID { return p.id }

// Template returns the shared template body this link was produced from.
func (p Policy) Template() *Template { return p.template }

// Env returns a copy of the link's slot environment.
func (p Policy) Env() SlotEnv { return p.env.Clone() }

// Effect returns the effect of the underlying template.
func (p Policy) Effect() Effect { return p.template.Effect() }

// IsStatic reports whether the link is the executable form of a static
// policy, i.e. its environment is empty.
func (p Policy) IsStatic() bool { return len(p.env) == 0 }

// Equal reports whether two links have identical id, template content, and
// environment.
func (p Policy) Equal(o Policy) bool {
	return p.id == o.id && p.template.Equal(o.template) && p.env.Equal(o.env)
}

// String renders the link in its source form with slots substituted by their
// bound entities.
func (p Policy) String() string { return p.template.render(p.env) }

// SlotMismatchError reports that a linking environment's key set does not
// exactly equal the template's slot set.
type SlotMismatchError struct {
	// TemplateID is the template being linked.
	TemplateID PolicyID
	// Missing lists the template slots the environment did not bind.
	Missing []SlotID
	// Extra lists environment keys that are not slots of the template.
	Extra []SlotID
}

// Error implements the error interface.
func (e *SlotMismatchError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing %s", joinSlots(e.Missing)))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, fmt.Sprintf("extra %s", joinSlots(e.Extra)))
	}
	return fmt.Sprintf("slot environment does not match template %q: %s",
		e.TemplateID, strings.Join(parts, ", "))
}

func joinSlots(slots []SlotID) string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.String()
	}
	return strings.Join(out, ", ")
}

// LinkTemplate produces a concrete policy from a template by binding every
// slot to an entity identifier. The environment's key set must exactly equal
// the template's slot set; otherwise the result is a *SlotMismatchError and
// no policy is produced. The returned policy shares t by pointer.
func LinkTemplate(t *Template, id PolicyID, env SlotEnv) (Policy, error) {
	slots := t.Slots()

	var missing []SlotID
	for _, s := range slots {
		if _, ok := env[s]; !ok {
			missing = append(missing, s)
		}
	}
	var extra []SlotID
	for s := range env {
		if !slices.Contains(slots, s) {
			extra = append(extra, s)
		}
	}
	slices.Sort(extra)

	if len(missing) > 0 || len(extra) > 0 {
		return Policy{}, &SlotMismatchError{TemplateID: t.ID(), Missing: missing, Extra: extra}
	}
	return Policy{id: id, template: t, env: env.Clone()}, nil
}
