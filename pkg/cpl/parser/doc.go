// Package parser parses Callisto policy documents into CPL values.
//
// A policy document is a YAML file with a top-level "policies" list. Each
// statement declares an effect, the three scope constraints, and an optional
// condition:
//
//	policies:
//	  - id: admin-access
//	    effect: permit
//	    principal: { in: 'Group::"admin"' }
//	    action: any
//	    resource: any
//	  - id: owner-template
//	    effect: permit
//	    principal: { eq: "?principal" }
//	    action: { in: ['Action::"read"', 'Action::"write"'] }
//	    resource: { in: "?resource" }
//	    when: "resource.owner == principal"
//
// A statement whose scopes reference no slots parses as an ast.StaticPolicy;
// one using ?principal or ?resource parses as an ast.Template. Parsing only
// checks structure: conditions are carried as opaque text, and the bound
// entities are not resolved against any schema.
//
// Errors are reported as *ParseError with file, line, and column taken from
// the YAML node at fault.
package parser
