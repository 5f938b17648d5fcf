// Package dag keeps the dependency structure between the modules of a graph:
// a directed edge from a producer to a consumer exists while at least one
// slot of the consumer is bound to the producer.
//
// The graph manager consults it before every binding so that no module can
// end up pulling from itself, directly or through other modules.
package dag
