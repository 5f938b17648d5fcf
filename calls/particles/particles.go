// Package particles defines ParticleDataCall, the call class through which
// modules exchange particle positions and intensities for one frame.
package particles

import (
	"context"
	"fmt"
	"math"

	"github.com/specialistvlad/pullgridgo/internal/call"
	"github.com/specialistvlad/pullgridgo/internal/module"
	"github.com/specialistvlad/pullgridgo/internal/pull"
)

// ClassName is the registered name of the call class.
const ClassName = "ParticleDataCall"

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

// Class is ParticleDataCall v1.0.0.
var Class = call.NewClass(ClassName, "1.0.0",
	"Particle positions and intensities for one frame",
	func() call.Payload { return &Payload{} },
	GetData, GetExtent,
)

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// EmptyBounds returns a box that contains nothing; Include grows it.
func EmptyBounds() Bounds {
	inf := float32(math.Inf(1))
	return Bounds{
		Min: [3]float32{inf, inf, inf},
		Max: [3]float32{-inf, -inf, -inf},
	}
}

// Valid reports whether the box contains at least one point.
func (b Bounds) Valid() bool {
	return b.Min[0] <= b.Max[0] && b.Min[1] <= b.Max[1] && b.Min[2] <= b.Max[2]
}

// Include grows the box to contain p.
func (b *Bounds) Include(p [3]float32) {
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
}

// Union returns the smallest box containing b and o.
func (b Bounds) Union(o Bounds) Bounds {
	if !b.Valid() {
		return o
	}
	if !o.Valid() {
		return b
	}
	b.Include(o.Min)
	b.Include(o.Max)
	return b
}

// Grow pads the box by r on every side.
func (b Bounds) Grow(r float32) Bounds {
	if !b.Valid() {
		return b
	}
	for i := 0; i < 3; i++ {
		b.Min[i] -= r
		b.Max[i] += r
	}
	return b
}

// String renders the box for logs.
func (b Bounds) String() string {
	if !b.Valid() {
		return "(empty)"
	}
	return fmt.Sprintf("[%.3g %.3g %.3g]..[%.3g %.3g %.3g]",
		b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2])
}

// Particles is the committed output of a producer. It is shared between
// consumers and must be treated as read-only.
type Particles struct {
	Positions   [][3]float32
	Intensities []float32
	Radius      float32
	Bounds      Bounds
}

// Len returns the particle count.
func (p *Particles) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Positions)
}

// Payload is the record exchanged through ParticleDataCall.
//
// The caller sets Frame. GetExtent fills FrameCount, Bounds and Hash;
// GetData additionally fills Data and Unlocker. Data stays valid until
// Unlock is called.
type Payload struct {
	Frame      int
	FrameCount int
	Bounds     Bounds
	Hash       uint64
	Data       *Particles
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

// ClampFrame maps a requested frame into [0, count).
func ClampFrame(frame, count int) int {
	if count <= 0 {
		return 0
	}
	frame %= count
	if frame < 0 {
		frame += count
	}
	return frame
}
