// Package collective defines CollectiveCall, through which modules obtain the
// process-wide communicator handle from a provider module.
package collective

import (
	"context"

	"github.com/specialistvlad/pullgridgo/internal/call"
	"github.com/specialistvlad/pullgridgo/internal/collective"
	"github.com/specialistvlad/pullgridgo/internal/module"
)

// ClassName is the registered name of the call class.
const ClassName = "CollectiveCall"

// ProvideHandle is the only function of the class.
const ProvideHandle = "ProvideHandle"

// FnProvideHandle is its index.
const FnProvideHandle = 0

// ProviderGroup asks the provider to use its own grouping key.
const ProviderGroup = -1

// Class is CollectiveCall v1.0.0.
var Class = call.NewClass(ClassName, "1.0.0",
	"Shared communicator handle for cooperating processes",
	func() call.Payload { return &Payload{Group: ProviderGroup} },
	ProvideHandle,
)

// Payload is the record exchanged through CollectiveCall.
type Payload struct {
	// Group is the requested grouping key; ProviderGroup defers to the
	// provider's parameter.
	Group  int
	Handle *collective.Handle
}

// CallClass implements call.Payload.
func (*Payload) CallClass() string { return ClassName }

// Request asks the provider bound to out for the handle.
func Request(ctx context.Context, out *module.Outbound, group int) (*collective.Handle, error) {
	raw, err := out.NewPayload()
	if err != nil {
		return nil, err
	}
	p, err := call.As[*Payload](raw)
	if err != nil {
		return nil, err
	}
	p.Group = group
	if err := out.Invoke(ctx, FnProvideHandle, p); err != nil {
		return nil, err
	}
	return p.Handle, nil
}
