package parser

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"stellar-hq/callisto/pkg/cpl/ast"
)

// Document is the parsed content of one policy file: the static policies and
// templates it declares, in declaration order.
type Document struct {
	Statics   []ast.StaticPolicy
	Templates []*ast.Template
}

// Len returns the number of statements in the document.
func (d *Document) Len() int { return len(d.Statics) + len(d.Templates) }

// ParseFile reads and parses a policy document from disk.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{File: path, Message: "failed to read file", Cause: err}
	}
	return parse(path, data)
}

// Parse parses a policy document from memory.
func Parse(data []byte) (*Document, error) {
	return parse("", data)
}

func parse(file string, data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &ParseError{File: file, Message: "invalid YAML", Cause: err}
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, &ParseError{File: file, Message: "empty document"}
	}

	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, errAt(file, top, "top level must be a mapping with a \"policies\" list")
	}

	var statements *yaml.Node
	for i := 0; i+1 < len(top.Content); i += 2 {
		key, value := top.Content[i], top.Content[i+1]
		switch key.Value {
		case "policies":
			statements = value
		default:
			return nil, errAt(file, key, "unknown top-level key %q", key.Value)
		}
	}
	if statements == nil {
		return nil, errAt(file, top, "missing \"policies\" list")
	}
	if statements.Kind != yaml.SequenceNode {
		return nil, errAt(file, statements, "\"policies\" must be a list")
	}

	doc := &Document{}
	seen := make(map[ast.PolicyID]bool)
	for _, node := range statements.Content {
		if err := parseStatement(file, node, doc, seen); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// yamlStatement is the intermediate shape of one policy statement. Scope and
// condition fields stay as raw nodes so constraint parsing can report precise
// locations.
type yamlStatement struct {
	ID        string    `yaml:"id"`
	Effect    string    `yaml:"effect"`
	Principal yaml.Node `yaml:"principal"`
	Action    yaml.Node `yaml:"action"`
	Resource  yaml.Node `yaml:"resource"`
	When      yaml.Node `yaml:"when"`
}

func parseStatement(file string, node *yaml.Node, doc *Document, seen map[ast.PolicyID]bool) error {
	var stmt yamlStatement
	if err := node.Decode(&stmt); err != nil {
		return errWrap(file, node, err, "invalid policy statement")
	}

	if stmt.ID == "" {
		return errAt(file, node, "policy statement is missing an id")
	}
	id := ast.PolicyID(stmt.ID)
	if seen[id] {
		return errAt(file, node, "duplicate policy id %q", stmt.ID)
	}
	seen[id] = true

	effect := ast.Effect(stmt.Effect)
	if !effect.Valid() {
		return errAt(file, node, "policy %q: effect must be %q or %q, got %q",
			stmt.ID, ast.EffectPermit, ast.EffectForbid, stmt.Effect)
	}

	principal, err := parseScope(file, &stmt.Principal, ast.SlotPrincipal)
	if err != nil {
		return err
	}
	action, err := parseAction(file, &stmt.Action)
	if err != nil {
		return err
	}
	resource, err := parseScope(file, &stmt.Resource, ast.SlotResource)
	if err != nil {
		return err
	}
	condition, err := parseCondition(file, &stmt.When)
	if err != nil {
		return err
	}

	if principal.HasSlot() || resource.HasSlot() {
		doc.Templates = append(doc.Templates,
			ast.NewTemplate(id, effect, principal, action, resource, condition))
		return nil
	}
	static, err := ast.NewStaticPolicy(id, effect, principal, action, resource, condition)
	if err != nil {
		return errWrap(file, node, err, "policy %q", stmt.ID)
	}
	doc.Statics = append(doc.Statics, static)
	return nil
}

// parseScope parses a principal or resource constraint. The only slot the
// scope may reference is its own placeholder.
func parseScope(file string, node *yaml.Node, slot ast.SlotID) (ast.ScopeConstraint, error) {
	if node.Kind == 0 {
		return ast.AnyScope(), nil
	}
	if node.Kind == yaml.ScalarNode {
		if node.Value == "any" || node.Value == "" {
			return ast.AnyScope(), nil
		}
		return ast.ScopeConstraint{}, errAt(file, node,
			"scope must be \"any\" or a mapping with \"eq\" or \"in\", got %q", node.Value)
	}
	op, value, err := singleOp(file, node)
	if err != nil {
		return ast.ScopeConstraint{}, err
	}
	if value.Kind != yaml.ScalarNode {
		return ast.ScopeConstraint{}, errAt(file, value, "scope %s must name an entity or slot", op)
	}

	if strings.HasPrefix(value.Value, "?") {
		if ast.SlotID(value.Value) != slot {
			return ast.ScopeConstraint{}, errAt(file, value,
				"slot %q is not allowed here; this scope takes %q", value.Value, slot)
		}
		if op == ast.OpEq {
			return ast.EqSlotScope(), nil
		}
		return ast.InSlotScope(), nil
	}

	uid, err := ast.ParseEntityUID(value.Value)
	if err != nil {
		return ast.ScopeConstraint{}, errWrap(file, value, err, "invalid entity reference")
	}
	if op == ast.OpEq {
		return ast.EqScope(uid), nil
	}
	return ast.InScope(uid), nil
}

// parseAction parses an action constraint. Actions have no slots.
func parseAction(file string, node *yaml.Node) (ast.ActionConstraint, error) {
	if node.Kind == 0 {
		return ast.AnyAction(), nil
	}
	if node.Kind == yaml.ScalarNode {
		if node.Value == "any" || node.Value == "" {
			return ast.AnyAction(), nil
		}
		return ast.ActionConstraint{}, errAt(file, node,
			"action must be \"any\" or a mapping with \"eq\" or \"in\", got %q", node.Value)
	}
	op, value, err := singleOp(file, node)
	if err != nil {
		return ast.ActionConstraint{}, err
	}

	parseOne := func(n *yaml.Node) (ast.EntityUID, error) {
		if n.Kind != yaml.ScalarNode {
			return ast.EntityUID{}, errAt(file, n, "action entry must be an entity reference")
		}
		if strings.HasPrefix(n.Value, "?") {
			return ast.EntityUID{}, errAt(file, n, "action scopes do not take slots")
		}
		uid, err := ast.ParseEntityUID(n.Value)
		if err != nil {
			return ast.EntityUID{}, errWrap(file, n, err, "invalid entity reference")
		}
		return uid, nil
	}

	switch {
	case op == ast.OpEq:
		uid, err := parseOne(value)
		if err != nil {
			return ast.ActionConstraint{}, err
		}
		return ast.EqAction(uid), nil
	case value.Kind == yaml.SequenceNode:
		entities := make([]ast.EntityUID, 0, len(value.Content))
		for _, n := range value.Content {
			uid, err := parseOne(n)
			if err != nil {
				return ast.ActionConstraint{}, err
			}
			entities = append(entities, uid)
		}
		return ast.InActions(entities...), nil
	default:
		uid, err := parseOne(value)
		if err != nil {
			return ast.ActionConstraint{}, err
		}
		return ast.InActions(uid), nil
	}
}

func parseCondition(file string, node *yaml.Node) (ast.Expr, error) {
	if node.Kind == 0 {
		return ast.BoolExpr(true), nil
	}
	if node.Kind != yaml.ScalarNode {
		return ast.Expr{}, errAt(file, node, "\"when\" must be a condition string or boolean")
	}
	switch node.Tag {
	case "!!bool":
		return ast.BoolExpr(node.Value == "true"), nil
	default:
		return ast.RawExpr(node.Value), nil
	}
}

// singleOp unwraps a mapping of the form {eq: X} or {in: X}.
func singleOp(file string, node *yaml.Node) (ast.ScopeOp, *yaml.Node, error) {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return "", nil, errAt(file, node, "constraint must be a single-key mapping with \"eq\" or \"in\"")
	}
	key, value := node.Content[0], node.Content[1]
	switch key.Value {
	case "eq":
		return ast.OpEq, value, nil
	case "in":
		return ast.OpIn, value, nil
	default:
		return "", nil, errAt(file, key, "unknown constraint operator %q", key.Value)
	}
}

func errAt(file string, node *yaml.Node, format string, args ...any) *ParseError {
	return &ParseError{
		File:    file,
		Line:    node.Line,
		Column:  node.Column,
		Message: fmt.Sprintf(format, args...),
	}
}

func errWrap(file string, node *yaml.Node, cause error, format string, args ...any) *ParseError {
	return &ParseError{
		File:    file,
		Line:    node.Line,
		Column:  node.Column,
		Message: fmt.Sprintf(format, args...) + ": " + cause.Error(),
		Cause:   cause,
	}
}
