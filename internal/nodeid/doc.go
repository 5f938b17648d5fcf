// internal/nodeid/doc.go

/*
Package nodeid provides a structured, type-safe representation for slot and
parameter identifiers within a graph, based on the canonical format
`module/name`.

The module segment names a module instance in the graph; the name segment
names one of its slots or parameters, e.g., `source/data` or
`scale/factor`. A bare module address (`source`) is also accepted where only
the module is meant.

This package enforces the identifier schema and centralizes all
formatting and parsing logic.
*/
package nodeid
