// Package graph provides a unified facade for managing a module graph,
// combining its structure (modules and slot bindings) with its parameters.
//
// # Architecture: The Facade Pattern
//
// The Graph is a thin facade over two specialized stores:
//
//	┌─────────────────────────────────────┐
//	│           Graph Facade              │
//	│  (add/remove modules, bind slots,   │
//	│   set params, persist state)        │
//	└──────────┬────────────┬─────────────┘
//	           │            │
//	           ▼            ▼
//	  ┌────────────┐  ┌────────────┐
//	  │  Topology  │  │   Param    │
//	  │   Store    │  │   Store    │
//	  │ (Structure)│  │  (Values)  │
//	  └────────────┘  └────────────┘
//
// **Topology Store** (topologystore.Store):
//   - Module instances keyed by a never-reused ModuleID
//   - Recorded connections between outbound and inbound slots
//
// **Param Store** (paramstore.Store):
//   - Every parameter node of every live module, keyed by "module/param"
//
// # Concurrency
//
// Structural mutations (AddModule, RemoveModule, Bind, Unbind, Close) are
// serialized by the Manager, so two binds racing for the same slot cannot
// both succeed. Parameter access and lookups go straight to the stores and
// may run concurrently with frames being pulled.
//
// # Lifecycle
//
//  1. **Build:** the builder adds modules and binds their slots
//  2. **Run:** the app drives every Driver module once per frame; the remote
//     channel and state loading mutate parameters
//  3. **Close:** every module is unbound and released in reverse order
package graph
