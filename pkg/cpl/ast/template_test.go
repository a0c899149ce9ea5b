package ast

import (
	"errors"
	"slices"
	"testing"
)

func euid(id string) EntityUID { return NewEntityUID("Test", id) }

func TestTemplateSlots(t *testing.T) {
	tests := []struct {
		name      string
		principal ScopeConstraint
		resource  ScopeConstraint
		want      []SlotID
	}{
		{"no slots", AnyScope(), AnyScope(), nil},
		{"concrete entities", EqScope(euid("a")), InScope(euid("b")), nil},
		{"principal slot", EqSlotScope(), AnyScope(), []SlotID{SlotPrincipal}},
		{"resource slot", AnyScope(), InSlotScope(), []SlotID{SlotResource}},
		{"both slots", EqSlotScope(), InSlotScope(), []SlotID{SlotPrincipal, SlotResource}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tmpl := NewTemplate("t", EffectPermit, tc.principal, AnyAction(), tc.resource, BoolExpr(true))
			if got := tmpl.Slots(); !slices.Equal(got, tc.want) {
				t.Errorf("Slots() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTemplateEqual(t *testing.T) {
	a := NewTemplate("t", EffectPermit, EqSlotScope(), EqAction(euid("read")), AnyScope(), RawExpr("resource.public"))
	b := NewTemplate("t", EffectPermit, EqSlotScope(), EqAction(euid("read")), AnyScope(), RawExpr("resource.public"))

	if !a.Equal(b) {
		t.Error("Equal() = false for identical content, want true")
	}

	c := NewTemplate("t", EffectForbid, EqSlotScope(), EqAction(euid("read")), AnyScope(), RawExpr("resource.public"))
	if a.Equal(c) {
		t.Error("Equal() = true for different effect, want false")
	}

	d := NewTemplate("other", EffectPermit, EqSlotScope(), EqAction(euid("read")), AnyScope(), RawExpr("resource.public"))
	if a.Equal(d) {
		t.Error("Equal() = true for different id, want false")
	}
}

func TestNewStaticPolicyRejectsSlots(t *testing.T) {
	if _, err := NewStaticPolicy("p", EffectPermit, EqSlotScope(), AnyAction(), AnyScope(), BoolExpr(true)); err == nil {
		t.Error("NewStaticPolicy(principal slot) error = nil, want error")
	}
	if _, err := NewStaticPolicy("p", EffectPermit, AnyScope(), AnyAction(), InSlotScope(), BoolExpr(true)); err == nil {
		t.Error("NewStaticPolicy(resource slot) error = nil, want error")
	}
	if _, err := NewStaticPolicy("p", EffectPermit, EqScope(euid("a")), AnyAction(), AnyScope(), BoolExpr(true)); err != nil {
		t.Errorf("NewStaticPolicy(concrete scopes) error = %v, want nil", err)
	}
}

func TestLinkStaticPolicy(t *testing.T) {
	p, err := NewStaticPolicy("id", EffectForbid, AnyScope(), AnyAction(), AnyScope(), BoolExpr(true))
	if err != nil {
		t.Fatalf("NewStaticPolicy() error = %v, want nil", err)
	}

	tmpl, link := LinkStaticPolicy(p)

	if tmpl.ID() != "id" || link.ID() != "id" {
		t.Errorf("ids = (%q, %q), want both %q", tmpl.ID(), link.ID(), "id")
	}
	if got := len(tmpl.Slots()); got != 0 {
		t.Errorf("template Slots() count = %d, want 0", got)
	}
	if len(link.Env()) != 0 {
		t.Errorf("link Env() = %v, want empty", link.Env())
	}
	if !link.IsStatic() {
		t.Error("link IsStatic() = false, want true")
	}
	if link.Template() != tmpl {
		t.Error("link does not share the returned template pointer")
	}
	if got := link.Effect(); got != EffectForbid {
		t.Errorf("link Effect() = %q, want %q", got, EffectForbid)
	}
}

func TestLinkTemplate(t *testing.T) {
	tmpl := NewTemplate("t", EffectPermit, EqSlotScope(), AnyAction(), InSlotScope(), BoolExpr(true))

	env := SlotEnv{SlotPrincipal: euid("p"), SlotResource: euid("r")}
	p, err := LinkTemplate(tmpl, "link", env)
	if err != nil {
		t.Fatalf("LinkTemplate() error = %v, want nil", err)
	}
	if p.ID() != "link" {
		t.Errorf("ID() = %q, want %q", p.ID(), "link")
	}
	if p.Template() != tmpl {
		t.Error("Template() is not the linked template pointer")
	}
	if p.IsStatic() {
		t.Error("IsStatic() = true for a slotted link, want false")
	}

	// The link keeps its own copy of the environment.
	env[SlotPrincipal] = euid("mutated")
	if got := p.Env()[SlotPrincipal]; got != euid("p") {
		t.Errorf("env after caller mutation = %v, want %v", got, euid("p"))
	}
}

func TestLinkTemplateSlotMismatch(t *testing.T) {
	tmpl := NewTemplate("t", EffectPermit, EqSlotScope(), AnyAction(), AnyScope(), BoolExpr(true))

	// Missing binding.
	_, err := LinkTemplate(tmpl, "l", SlotEnv{})
	var mismatch *SlotMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("LinkTemplate(empty env) error = %v, want *SlotMismatchError", err)
	}
	if mismatch.TemplateID != "t" {
		t.Errorf("TemplateID = %q, want %q", mismatch.TemplateID, "t")
	}
	if !slices.Equal(mismatch.Missing, []SlotID{SlotPrincipal}) {
		t.Errorf("Missing = %v, want [?principal]", mismatch.Missing)
	}

	// Extra binding.
	_, err = LinkTemplate(tmpl, "l", SlotEnv{SlotPrincipal: euid("p"), SlotResource: euid("r")})
	if !errors.As(err, &mismatch) {
		t.Fatalf("LinkTemplate(extra binding) error = %v, want *SlotMismatchError", err)
	}
	if !slices.Equal(mismatch.Extra, []SlotID{SlotResource}) {
		t.Errorf("Extra = %v, want [?resource]", mismatch.Extra)
	}
}

func TestTemplateString(t *testing.T) {
	tests := []struct {
		name string
		tmpl *Template
		want string
	}{
		{
			"trivial",
			NewTemplate("t", EffectPermit, AnyScope(), AnyAction(), AnyScope(), BoolExpr(true)),
			"permit(principal, action, resource);",
		},
		{
			"slotted",
			NewTemplate("t", EffectPermit, EqSlotScope(), AnyAction(), InSlotScope(), BoolExpr(true)),
			"permit(principal == ?principal, action, resource in ?resource);",
		},
		{
			"concrete with condition",
			NewTemplate("t", EffectForbid, EqScope(euid("a")),
				InActions(euid("read"), euid("write")), AnyScope(), RawExpr("resource.owner == principal")),
			`forbid(principal == Test::"a", action in [Test::"read", Test::"write"], resource) when { resource.owner == principal };`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.tmpl.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPolicyStringSubstitutesSlots(t *testing.T) {
	tmpl := NewTemplate("t", EffectPermit, EqSlotScope(), AnyAction(), AnyScope(), BoolExpr(true))
	p, err := LinkTemplate(tmpl, "l", SlotEnv{SlotPrincipal: euid("alice")})
	if err != nil {
		t.Fatalf("LinkTemplate() error = %v, want nil", err)
	}

	want := `permit(principal == Test::"alice", action, resource);`
	if got := p.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
