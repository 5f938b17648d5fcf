// Package module provides the building blocks shared by every graph module:
// the embedded Base with its lifecycle guard, inbound and outbound slots, and
// the binding of an outbound slot to an inbound slot through a call.
//
// A module variant embeds Base and implements Module. Slots and parameters
// are declared in OnCreate and dropped after OnRelease; Create and Release
// are guarded so that each hook runs at most once.
package module
