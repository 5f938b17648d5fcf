// Package astro defines AstroDataCall, the call class for cosmological
// simulation snapshots: per-particle kinematics and gas properties.
package astro

import (
	"context"

	"github.com/specialistvlad/pullgridgo/calls/particles"
	"github.com/specialistvlad/pullgridgo/internal/call"
	"github.com/specialistvlad/pullgridgo/internal/module"
	"github.com/specialistvlad/pullgridgo/internal/pull"
)

// ClassName is the registered name of the call class.
const ClassName = "AstroDataCall"

// Function names, in table order.
const (
	GetData   = "GetData"
	GetExtent = "GetExtent"
)

// Function indices.
const (
	FnGetData = iota
	FnGetExtent
)

// Class is AstroDataCall v1.0.0.
var Class = call.NewClass(ClassName, "1.0.0",
	"Astrophysical particle snapshot for one frame",
	func() call.Payload { return &Payload{} },
	GetData, GetExtent,
)

// Snapshot is the committed output of an astro producer. It is read-only
// for consumers. All slices have the same length.
type Snapshot struct {
	Positions    [][3]float32
	Velocities   [][3]float32
	Temperatures []float32
	Masses       []float32
	Densities    []float32
	IsStar       []bool
	IDs          []int64
	Bounds       particles.Bounds
}

// Len returns the particle count.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Positions)
}

// Payload is the record exchanged through AstroDataCall. Field semantics
// match particles.Payload.
type Payload struct {
	Frame      int
	FrameCount int
	Bounds     particles.Bounds
	Hash       uint64
	Data       *Snapshot
	Unlocker   *pull.Unlocker
}

// CallClass implements call.Payload.
func (*Payload) CallClass() string { return ClassName }

// Unlock releases the lease on Data.
func (p *Payload) Unlock() {
	p.Unlocker.Unlock()
	p.Unlocker = nil
}

// Fetch requests the extent and then the data of the given frame through
// out. The returned payload must be unlocked by the caller.
func Fetch(ctx context.Context, out *module.Outbound, frame int) (*Payload, error) {
	p, err := Extent(ctx, out, frame)
	if err != nil {
		return nil, err
	}
	if err := out.Invoke(ctx, FnGetData, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Extent requests only the extent of the given frame through out.
func Extent(ctx context.Context, out *module.Outbound, frame int) (*Payload, error) {
	raw, err := out.NewPayload()
	if err != nil {
		return nil, err
	}
	p, err := call.As[*Payload](raw)
	if err != nil {
		return nil, err
	}
	p.Frame = frame
	if err := out.Invoke(ctx, FnGetExtent, p); err != nil {
		return nil, err
	}
	return p, nil
}
