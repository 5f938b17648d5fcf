// Package param implements parameter nodes: named, typed configuration values
// owned by a module.
//
// Every node carries a change-tracking state and presentation metadata.
//
// # Dirty tracking
//
// Each successful Set (or Press, for buttons) bumps a mutation generation.
// A node is dirty while its generation is ahead of the last generation its
// owner committed. Owners take a snapshot with Observe before they react and
// call Commit with that snapshot afterwards; a mutation that lands while the
// owner is still reacting keeps the node dirty. Setting a value equal to the
// current one still marks the node dirty.
//
// # Presentation
//
// The presentation mode of a node is constrained to a per-type set of
// compatible modes, computed once by InitPresentation. Visibility, read-only
// flag and mode can be persisted with WriteStates and restored with
// ReadStates or StateFromJSON.
package param
