// Package collective provides the process-wide shared handle used by modules
// that replicate a graph across cooperating processes.
//
// A Context moves through three states: not yet set up, initializing and
// ready. The first caller of Provide wins a compare-and-set and runs the
// setup function; concurrent callers wait until the handle is published or
// the attempt fails. A failed setup resets the context to "not yet" so a
// later caller can retry. The grouping key passed by the first successful
// caller is fixed; later calls with another key get the same handle and a
// warning.
//
// Owners register with Acquire and unregister with Release. When the last
// owner releases, the handle is torn down and the context starts over.
package collective
