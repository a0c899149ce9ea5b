package store

import (
	"iter"
	"maps"
	"strings"

	"stellar-hq/callisto/pkg/cpl/ast"
)

// PolicySet aggregates template bodies and the links produced from them.
//
// templates holds every policy body in the set: slotted template bodies and
// the zero-slot bodies backing static policies. links holds every executable
// policy: a static policy has exactly one companion link under its own id
// (managed by AddStatic and Add), while a slotted template may have zero or
// many links.
//
// All mutating methods are check-then-commit: every precondition is validated
// against the current state before any map is touched, so a failed call
// leaves the set untouched.
type PolicySet struct {
	templates map[ast.PolicyID]*ast.Template
	links     map[ast.PolicyID]ast.Policy
}

// New returns a fresh empty policy set.
func New() *PolicySet {
	return &PolicySet{
		templates: make(map[ast.PolicyID]*ast.Template),
		links:     make(map[ast.PolicyID]ast.Policy),
	}
}

// FromPolicies folds Add over the sequence starting from an empty set. The
// first failure aborts the whole construction and returns that error; the
// partially built set is never exposed.
func FromPolicies(policies iter.Seq[ast.Policy]) (*PolicySet, error) {
	set := New()
	for p := range policies {
		if err := set.Add(p); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// Add inserts a link, implicitly introducing its template body if the set
// does not hold it yet.
//
// The template half is idempotent: a template id already present with
// identical content is left untouched, while one present with different
// content fails with *OccupiedError. The link half never is: a link id
// already present fails with *OccupiedError regardless of content.
func (s *PolicySet) Add(policy ast.Policy) error {
	t := policy.Template()

	insertTemplate := false
	if existing, ok := s.templates[t.ID()]; ok {
		if !existing.Equal(t) {
			return &OccupiedError{ID: t.ID()}
		}
	} else {
		insertTemplate = true
	}

	if _, ok := s.links[policy.ID()]; ok {
		return &OccupiedError{ID: policy.ID()}
	}

	if insertTemplate {
		s.templates[t.ID()] = t
	}
	s.links[policy.ID()] = policy
	return nil
}

// AddStatic inserts a static policy as its pair of companion entries: the
// zero-slot template body and the empty-environment link, both under the
// policy's own id. Both maps must be vacant at that id; either occupied
// entry fails the call with *OccupiedError (template map checked first) and
// no mutation.
func (s *PolicySet) AddStatic(policy ast.StaticPolicy) error {
	t, p := ast.LinkStaticPolicy(policy)

	if _, ok := s.templates[t.ID()]; ok {
		return &OccupiedError{ID: t.ID()}
	}
	if _, ok := s.links[t.ID()]; ok {
		return &OccupiedError{ID: t.ID()}
	}

	s.templates[t.ID()] = t
	s.links[t.ID()] = p
	return nil
}

// AddTemplate inserts a bare template body. No link is created; a slotted
// template has no executable form until Link is called. Fails with
// *OccupiedError if the template map already holds the id.
func (s *PolicySet) AddTemplate(t *ast.Template) error {
	if _, ok := s.templates[t.ID()]; ok {
		return &OccupiedError{ID: t.ID()}
	}
	s.templates[t.ID()] = t
	return nil
}

// Link produces a new concrete policy from a stored template and inserts it.
//
// It fails with *NoSuchTemplateError if templateID is absent, propagates the
// linking primitive's *ast.SlotMismatchError unchanged if env does not match
// the template's slots, and fails with *PolicyIDConflictError if newID is
// occupied in either map (checking the template map too keeps link ids from
// colliding with template identities). On success the stored link is
// returned.
func (s *PolicySet) Link(templateID, newID ast.PolicyID, env ast.SlotEnv) (ast.Policy, error) {
	t, ok := s.templates[templateID]
	if !ok {
		return ast.Policy{}, &NoSuchTemplateError{ID: templateID}
	}

	p, err := ast.LinkTemplate(t, newID, env)
	if err != nil {
		return ast.Policy{}, err
	}

	if _, ok := s.links[newID]; ok {
		return ast.Policy{}, &PolicyIDConflictError{ID: newID}
	}
	if _, ok := s.templates[newID]; ok {
		return ast.Policy{}, &PolicyIDConflictError{ID: newID}
	}

	s.links[newID] = p
	return p, nil
}

// IsEmpty reports whether the set holds no templates and no links.
func (s *PolicySet) IsEmpty() bool {
	return len(s.templates) == 0 && len(s.links) == 0
}

// Policies iterates over every link in the set, static and template-linked
// alike. Order is map iteration order; the sequence is restartable.
func (s *PolicySet) Policies() iter.Seq[ast.Policy] {
	return maps.Values(s.links)
}

// AllTemplates iterates over every stored template body, including the
// zero-slot bodies backing static policies.
func (s *PolicySet) AllTemplates() iter.Seq[*ast.Template] {
	return maps.Values(s.templates)
}

// Templates iterates over the slotted templates only.
func (s *PolicySet) Templates() iter.Seq[*ast.Template] {
	return func(yield func(*ast.Template) bool) {
		for _, t := range s.templates {
			if len(t.Slots()) == 0 {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// StaticPolicies iterates over the links backing static policies.
func (s *PolicySet) StaticPolicies() iter.Seq[ast.Policy] {
	return func(yield func(ast.Policy) bool) {
		for _, p := range s.links {
			if !p.IsStatic() {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

// GetTemplate returns the shared template body stored under id.
func (s *PolicySet) GetTemplate(id ast.PolicyID) (*ast.Template, bool) {
	t, ok := s.templates[id]
	return t, ok
}

// Get returns the link stored under id. A bare template's id resolves to
// nothing here unless that id also has a link.
func (s *PolicySet) Get(id ast.PolicyID) (ast.Policy, bool) {
	p, ok := s.links[id]
	return p, ok
}

// Clone returns a copy of the set sharing the immutable template bodies and
// links. The copy costs one map entry per stored handle, not one per body.
func (s *PolicySet) Clone() *PolicySet {
	return &PolicySet{
		templates: maps.Clone(s.templates),
		links:     maps.Clone(s.links),
	}
}

// Equal reports whether two sets hold the same templates and the same links
// under the same ids.
func (s *PolicySet) Equal(o *PolicySet) bool {
	if len(s.templates) != len(o.templates) || len(s.links) != len(o.links) {
		return false
	}
	for id, t := range s.templates {
		ot, ok := o.templates[id]
		if !ok || !t.Equal(ot) {
			return false
		}
	}
	for id, p := range s.links {
		op, ok := o.links[id]
		if !ok || !p.Equal(op) {
			return false
		}
	}
	return true
}

// String renders the whole set for diagnostics: all templates, then all
// links, one per line. Order is map iteration order and is not a contract.
func (s *PolicySet) String() string {
	if s.IsEmpty() {
		return "<empty policyset>"
	}
	var sb strings.Builder
	sb.WriteString("Templates:\n")
	for t := range s.AllTemplates() {
		sb.WriteString(t.String())
		sb.WriteString("\n")
	}
	sb.WriteString("Template Linked Policies:\n")
	for p := range s.Policies() {
		sb.WriteString(p.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
