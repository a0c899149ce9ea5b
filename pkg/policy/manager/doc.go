// Package manager owns the live policy set of a running system.
//
// The manager loads policy documents from a directory into a policy set and
// publishes it as an immutable snapshot behind an atomic pointer. Readers
// call Snapshot and keep evaluating against a consistent point-in-time view;
// writers (reloads, links) build or clone a set off to the side and swap it
// in whole. A failed reload never disturbs the published snapshot.
//
// Reloads are triggered three ways: explicitly via Load, by file change
// events when watching is enabled (debounced, via fsnotify), and by an
// optional cron schedule. Every successful load is stamped with a generation
// (uuid, load time, entry counts) for log and archive correlation.
package manager
