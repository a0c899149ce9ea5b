// Package ast provides the core value types of the Callisto Policy Language (CPL).
//
// The central types are Template, StaticPolicy, and Policy:
//
// Template: An immutable policy body whose principal and resource scopes may
// contain placeholder slots (?principal, ?resource) in place of concrete
// entity references.
//
// StaticPolicy: A policy body with no slots. Semantically a static policy is a
// trivial template; LinkStaticPolicy converts one into its template form
// together with the matching link.
//
// Policy: A concrete, executable policy produced by binding every slot of a
// template to an entity identifier. Policies share their template body by
// pointer, so many links to the same template cost no extra template storage.
//
// The linking primitives enforce exactly one rule: the slot environment handed
// to LinkTemplate must bind the template's slots and nothing else. Whether the
// bound entities exist or type-check against a schema is the business of other
// subsystems.
//
// # Immutability
//
// Templates and policies are immutable after construction. Accessors return
// copies of any internal maps or slices, and the containing policy set relies
// on this to share template bodies between an arbitrary number of links.
package ast
