// Package store provides the authoritative in-memory policy set.
//
// A PolicySet owns two co-dependent maps: template bodies keyed by policy id,
// and links (executable policies) keyed by policy id. Every stored link
// references a template that is simultaneously present in the template map
// with identical content; a static policy appears in both maps under the same
// id as a pair of companion entries. All mutating operations are atomic: on
// any error the set is left exactly as it was before the call.
//
// The set only grows. There is no delete or replace operation; embedding
// systems that need replacement build a fresh set and swap it in atomically
// (see the manager package).
//
// # Serialization
//
// PolicySet serializes through LiteralPolicySet, a flat invariant-free shape.
// Deserialization always runs reification: every literal link is resolved
// against the literal template map, and a link referencing a missing template
// fails the whole conversion. No partially valid set is ever produced.
//
// # Concurrency
//
// A PolicySet is not internally synchronized. Mutate it from a single
// goroutine, or publish immutable snapshots behind an atomic pointer and
// mutate a clone.
package store
