// Package archive persists policy-set snapshots in SQLite.
//
// Each snapshot stores the policy set in its flat serialized form together
// with the load generation that produced it. Loading a snapshot always runs
// reification, so a row whose links no longer resolve against its templates
// is rejected rather than returned partially valid.
//
// The archive is an audit and rollback surface: the live system never reads
// from it on the request path.
package archive
