package store

import (
	"encoding/json"

	"stellar-hq/callisto/pkg/cpl/ast"
)

// LiteralPolicy is the flat wire form of a link: the referenced template id,
// the slot environment, and the link's own id. It carries no invariant; the
// template id may not resolve until reification.
type LiteralPolicy struct {
	TemplateID ast.PolicyID `json:"template_id"`
	Env        ast.SlotEnv  `json:"env"`
	ID         ast.PolicyID `json:"id"`
}

// LiteralPolicySet is the flat, invariant-free form of a PolicySet used for
// serialization. Converting it back into a PolicySet goes through Reify,
// which validates every link against the template map.
type LiteralPolicySet struct {
	Templates map[ast.PolicyID]*ast.Template `json:"templates"`
	Links     map[ast.PolicyID]LiteralPolicy `json:"links"`
}

// Literalize converts a live policy set into its flat form. The conversion is
// total: template handles are carried over and links degrade to their
// (template_id, env, id) triples.
func Literalize(s *PolicySet) LiteralPolicySet {
	out := LiteralPolicySet{
		Templates: make(map[ast.PolicyID]*ast.Template, len(s.templates)),
		Links:     make(map[ast.PolicyID]LiteralPolicy, len(s.links)),
	}
	for id, t := range s.templates {
		out.Templates[id] = t
	}
	for id, p := range s.links {
		out.Links[id] = LiteralPolicy{
			TemplateID: p.Template().ID(),
			Env:        p.Env(),
			ID:         p.ID(),
		}
	}
	return out
}

// Reify validates the flat form back into a live PolicySet. Every literal
// link is resolved against the template map and bound to its template by
// shared pointer; a link whose template id is missing, or whose environment
// does not match the template's slots, fails the whole conversion with a
// *ReificationError. No partial set is ever produced.
func (l LiteralPolicySet) Reify() (*PolicySet, error) {
	set := New()
	for id, t := range l.Templates {
		set.templates[id] = t
	}
	for id, lit := range l.Links {
		t, ok := set.templates[lit.TemplateID]
		if !ok {
			return nil, &ReificationError{LinkID: id, TemplateID: lit.TemplateID}
		}
		p, err := ast.LinkTemplate(t, lit.ID, lit.Env)
		if err != nil {
			return nil, &ReificationError{LinkID: id, TemplateID: lit.TemplateID, Cause: err}
		}
		set.links[id] = p
	}
	return set, nil
}

// MarshalJSON serializes the set in its flat wire form.
func (s *PolicySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(Literalize(s))
}

// UnmarshalJSON deserializes the flat wire form and reifies it. A document
// containing a link with an unresolvable template id is rejected as a whole.
func (s *PolicySet) UnmarshalJSON(data []byte) error {
	var lit LiteralPolicySet
	if err := json.Unmarshal(data, &lit); err != nil {
		return err
	}
	set, err := lit.Reify()
	if err != nil {
		return err
	}
	*s = *set
	return nil
}
