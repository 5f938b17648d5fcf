// Package pull implements the hash-gated lazy pull protocol shared by every
// data-producing module.
//
// A Producer caches the last successfully computed output together with the
// upstream hashes it was computed from (its in-hash) and its own content
// hash. Pull compares the freshly observed upstream hashes and the dirty
// state of the watched parameters against the cache:
//
//   - unchanged: the cached snapshot is returned as is;
//   - changed: compute runs, and on success the new output is committed with
//     the content hash incremented by exactly one, the new in-hash recorded
//     and the watched parameters committed clean.
//
// A failed computation commits nothing. The previous snapshot stays the
// current one and the failure is reported as an *Error of KindRecompute.
//
// # Concurrency
//
// The compare-and-recompute step runs under a per-producer mutex, so at most
// one computation is in flight and concurrent pullers wait for it and then
// share its result. Committed snapshots are immutable. Each returned snapshot
// comes with an Unlocker lease; a superseded snapshot is only handed to the
// retire hook once every lease on it has been released.
package pull
