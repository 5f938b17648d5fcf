// Package call defines the typed edges that connect modules.
//
// A call class is identified by a stable name and declares an ordered, fixed
// list of function names. The index of a name in that list is the only thing
// used when a function is invoked; names are exchanged once, at bind time,
// for compatibility checks and diagnostics.
//
// A Call is the bound instance of a class between one outbound slot (the
// caller) and one inbound slot (the callee). Its handler table is resolved
// when the edge is created, so Invoke is a bounds check and an index lookup.
//
// Payloads form a closed, tagged set: every payload reports the name of the
// class it belongs to, and As performs a checked match instead of an
// unchecked conversion.
package call
