package ast

import "encoding/json"

// Expr is a policy condition carried opaquely. The store never evaluates
// conditions; it only needs to transport them, compare them for equality, and
// render them. A condition is either a boolean literal or raw condition
// source text.
type Expr struct {
	literal bool
	value   bool
	src     string
}

// BoolExpr returns the boolean literal condition v.
func BoolExpr(v bool) Expr {
	return Expr{literal: true, value: v}
}

// RawExpr returns a condition carrying unevaluated source text.
func RawExpr(src string) Expr {
	if src == "true" || src == "false" {
		return BoolExpr(src == "true")
	}
	return Expr{src: src}
}

// IsTrue reports whether the condition is the literal true, i.e. the policy
// body carries no real condition.
func (e Expr) IsTrue() bool { return e.literal && e.value }

// Equal reports whether two conditions have identical content.
func (e Expr) Equal(o Expr) bool { return e == o }

// String returns the condition's source form.
func (e Expr) String() string {
	if e.literal {
		if e.value {
			return "true"
		}
		return "false"
	}
	return e.src
}

// MarshalJSON serializes the condition as its source string.
func (e Expr) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

// UnmarshalJSON restores a condition from its source string. The literals
// "true" and "false" parse back to boolean literal conditions.
func (e *Expr) UnmarshalJSON(data []byte) error {
	var src string
	if err := json.Unmarshal(data, &src); err != nil {
		return err
	}
	*e = RawExpr(src)
	return nil
}
