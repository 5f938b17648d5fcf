// Package particlescale provides a filter module that scales particle
// positions around a center point.
package particlescale

import (
	"context"
	"math"

	"github.com/specialistvlad/pullgridgo/calls/particles"
	"github.com/specialistvlad/pullgridgo/internal/call"
	"github.com/specialistvlad/pullgridgo/internal/module"
	"github.com/specialistvlad/pullgridgo/internal/param"
	"github.com/specialistvlad/pullgridgo/internal/pull"
	"github.com/specialistvlad/pullgridgo/internal/registry"
)

// ClassName is the registered module class.
const ClassName = "ParticleScale"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the module class and its call class.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterCall(particles.Class)
	r.RegisterModule(&registry.ModuleClass{
		Name:        ClassName,
		Description: "Scales particle positions and radius around a center point.",
		Calls:       []string{particles.ClassName},
		New:         New,
	})
}

// Scale pulls from "input" and serves the scaled particles on "output".
type Scale struct {
	module.Base

	factor *param.Node
	center *param.Node

	input    *module.Outbound
	producer *pull.Producer[*particles.Particles]
}

// New creates an uncreated scale filter.
func New(name string) module.Module {
	s := &Scale{}
	s.Init(ClassName, name, "Scales particle positions and radius around a center point.")
	return s
}

// OnCreate declares the parameters and both slots.
func (s *Scale) OnCreate(ctx context.Context) error {
	s.factor = s.AddParam(param.NewFloat("factor", 1, 0, math.MaxFloat32).WithDescription("Scale factor."))
	s.center = s.AddParam(param.NewVector3f("center", 0, 0, 0).WithDescription("Fixed point of the scaling."))

	s.producer = pull.NewProducer[*particles.Particles](s.Name()+"/output",
		pull.WithParams[*particles.Particles](s.factor, s.center),
		pull.WithRecorder[*particles.Particles](pull.RecorderFrom(ctx)),
	)

	s.input = s.AddOutbound("input", "Particles to scale.").SetCompatibleCall(particles.ClassName, "^1")
	s.AddInbound("output", "Scaled particles.").
		SetCallback(particles.Class, particles.GetData, s.getData).
		SetCallback(particles.Class, particles.GetExtent, s.getExtent)
	return nil
}

// OnRelease has nothing to free.
func (s *Scale) OnRelease(ctx context.Context) {}

type transform struct {
	factor float32
	center [3]float32
}

func (s *Scale) transform() transform {
	c := s.center.Floats()
	return transform{
		factor: float32(s.factor.Float()),
		center: [3]float32{float32(c[0]), float32(c[1]), float32(c[2])},
	}
}

func (t transform) apply(p [3]float32) [3]float32 {
	var out [3]float32
	for i := 0; i < 3; i++ {
		out[i] = t.center[i] + (p[i]-t.center[i])*t.factor
	}
	return out
}

func (t transform) bounds(b particles.Bounds) particles.Bounds {
	if !b.Valid() {
		return b
	}
	out := particles.EmptyBounds()
	out.Include(t.apply(b.Min))
	out.Include(t.apply(b.Max))
	return out
}

func (s *Scale) getExtent(ctx context.Context, raw call.Payload) error {
	p, err := call.As[*particles.Payload](raw)
	if err != nil {
		return err
	}
	up, err := particles.Extent(ctx, s.input, p.Frame)
	if err != nil {
		return s.producer.Upstream(err)
	}
	p.Frame = up.Frame
	p.FrameCount = up.FrameCount
	p.Bounds = s.transform().bounds(up.Bounds)
	p.Hash = s.producer.Hash()
	return nil
}

func (s *Scale) getData(ctx context.Context, raw call.Payload) error {
	p, err := call.As[*particles.Payload](raw)
	if err != nil {
		return err
	}
	var up *particles.Payload
	snap, unlocker, err := s.producer.Do(ctx, func(ctx context.Context) ([]uint64, func(context.Context) (*particles.Particles, error), error) {
		var err error
		if up, err = particles.Fetch(ctx, s.input, p.Frame); err != nil {
			return nil, nil, s.producer.Upstream(err)
		}
		return []uint64{up.Hash}, func(ctx context.Context) (*particles.Particles, error) {
			return scaled(up.Data, s.transform()), nil
		}, nil
	})
	if up != nil {
		defer up.Unlock()
	}
	if err != nil {
		return err
	}

	p.Frame = up.Frame
	p.FrameCount = up.FrameCount
	p.Bounds = snap.Data.Bounds
	p.Hash = snap.Hash
	p.Data = snap.Data
	p.Unlocker = unlocker
	return nil
}

// scaled returns a scaled copy of in. in is never modified.
func scaled(in *particles.Particles, t transform) *particles.Particles {
	out := &particles.Particles{
		Positions:   make([][3]float32, in.Len()),
		Intensities: append([]float32(nil), in.Intensities...),
		Radius:      in.Radius * t.factor,
		Bounds:      particles.EmptyBounds(),
	}
	for i, pos := range in.Positions {
		out.Positions[i] = t.apply(pos)
		out.Bounds.Include(out.Positions[i])
	}
	out.Bounds = out.Bounds.Grow(out.Radius)
	return out
}
