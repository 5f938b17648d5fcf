package module

import (
	"github.com/specialistvlad/pullgridgo/internal/call"
)

// Connect binds an outbound slot to an inbound slot. It picks the first
// class of the outbound slot's descriptor that the inbound slot serves. On
// failure neither slot is modified.
func Connect(out *Outbound, in *Inbound) (*call.Call, error) {
	bindErr := func(err error) error {
		return &call.BindError{From: out.FullName(), To: in.FullName(), Err: err}
	}

	if out.owner == in.owner {
		return nil, bindErr(call.ErrSelfBinding)
	}
	if !out.owner.Alive() || !in.owner.Alive() {
		return nil, bindErr(ErrNotCreated)
	}

	var chosen *call.Class
	for _, req := range out.Requirements() {
		for _, class := range in.Classes() {
			if req.Accepts(class) {
				chosen = class
				break
			}
		}
		if chosen != nil {
			break
		}
	}
	if chosen == nil {
		return nil, bindErr(call.ErrIncompatible)
	}

	c := call.New(chosen, out.FullName(), in.FullName(), in.table(chosen.Name), in.owner.Alive)

	// Claim the inbound side first; roll it back if the outbound side is taken.
	if !in.peer.CompareAndSwap(nil, out) {
		return nil, bindErr(call.ErrAlreadyBound)
	}
	if !out.peer.CompareAndSwap(nil, in) {
		in.peer.Store(nil)
		return nil, bindErr(call.ErrAlreadyBound)
	}
	out.call.Store(c)
	return c, nil
}

// Disconnect unbinds an outbound slot from its peer. It reports whether a
// binding existed.
func Disconnect(out *Outbound) bool {
	in := out.peer.Load()
	if in == nil {
		return false
	}
	out.call.Store(nil)
	out.peer.Store(nil)
	in.peer.CompareAndSwap(out, nil)
	return true
}

// DisconnectInbound unbinds whatever outbound slot is bound to in.
func DisconnectInbound(in *Inbound) bool {
	out := in.peer.Load()
	if out == nil {
		return false
	}
	return Disconnect(out)
}
