/*
Package builder turns a format-agnostic config.Model into a live module graph.

Construction runs in phases and keeps going after a failure, so a single run
reports every problem in the description:

 1. Module creation: every module is instantiated from the registry by class
    and added to the graph, which creates it and registers its parameters.

 2. Parameter values: values from the model are applied first, then the
    textual overrides in the order given (environment before command line).
    A later assignment to the same parameter wins.

 3. Connections: every connection is bound through the graph, which checks
    call-class compatibility and the one-peer-per-inbound rule.

All failures are collected into one multierror. Modules that were created
successfully stay in the graph, which the caller is expected to close.
*/
package builder
