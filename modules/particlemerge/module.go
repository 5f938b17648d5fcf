// Package particlemerge provides a filter module that concatenates the
// particles of two upstream modules.
package particlemerge

import (
	"context"
	"fmt"

	"github.com/specialistvlad/pullgridgo/calls/particles"
	"github.com/specialistvlad/pullgridgo/internal/call"
	"github.com/specialistvlad/pullgridgo/internal/module"
	"github.com/specialistvlad/pullgridgo/internal/param"
	"github.com/specialistvlad/pullgridgo/internal/pull"
	"github.com/specialistvlad/pullgridgo/internal/registry"
)

// ClassName is the registered module class.
const ClassName = "ParticleMerge"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the module class and its call class.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterCall(particles.Class)
	r.RegisterModule(&registry.ModuleClass{
		Name:        ClassName,
		Description: "Concatenates the particles of two inputs.",
		Calls:       []string{particles.ClassName},
		New:         New,
	})
}

// Merge pulls from "inputA" and "inputB" and serves the union on "output".
type Merge struct {
	module.Base

	tagInputs *param.Node

	inputA   *module.Outbound
	inputB   *module.Outbound
	producer *pull.Producer[*particles.Particles]
}

// New creates an uncreated merge filter.
func New(name string) module.Module {
	m := &Merge{}
	m.Init(ClassName, name, "Concatenates the particles of two inputs.")
	return m
}

// OnCreate declares the parameters and the three slots.
func (m *Merge) OnCreate(ctx context.Context) error {
	m.tagInputs = m.AddParam(param.NewBool("tagInputs", false).
		WithDescription("Replace intensities with 0 for input A and 1 for input B."))

	m.producer = pull.NewProducer[*particles.Particles](m.Name()+"/output",
		pull.WithParams[*particles.Particles](m.tagInputs),
		pull.WithRecorder[*particles.Particles](pull.RecorderFrom(ctx)),
	)

	m.inputA = m.AddOutbound("inputA", "First particle set.").SetCompatibleCall(particles.ClassName, "^1")
	m.inputB = m.AddOutbound("inputB", "Second particle set.").SetCompatibleCall(particles.ClassName, "^1")
	m.AddInbound("output", "Merged particles.").
		SetCallback(particles.Class, particles.GetData, m.getData).
		SetCallback(particles.Class, particles.GetExtent, m.getExtent)
	return nil
}

// OnRelease has nothing to free.
func (m *Merge) OnRelease(ctx context.Context) {}

func (m *Merge) getExtent(ctx context.Context, raw call.Payload) error {
	p, err := call.As[*particles.Payload](raw)
	if err != nil {
		return err
	}
	a, err := particles.Extent(ctx, m.inputA, p.Frame)
	if err != nil {
		return m.producer.Upstream(fmt.Errorf("inputA: %w", err))
	}
	b, err := particles.Extent(ctx, m.inputB, p.Frame)
	if err != nil {
		return m.producer.Upstream(fmt.Errorf("inputB: %w", err))
	}
	p.FrameCount = max(a.FrameCount, b.FrameCount)
	p.Bounds = a.Bounds.Union(b.Bounds)
	p.Hash = m.producer.Hash()
	return nil
}

func (m *Merge) getData(ctx context.Context, raw call.Payload) error {
	p, err := call.As[*particles.Payload](raw)
	if err != nil {
		return err
	}
	var a, b *particles.Payload
	defer func() {
		for _, up := range []*particles.Payload{a, b} {
			if up != nil {
				up.Unlock()
			}
		}
	}()
	snap, unlocker, err := m.producer.Do(ctx, func(ctx context.Context) ([]uint64, func(context.Context) (*particles.Particles, error), error) {
		var err error
		if a, err = particles.Fetch(ctx, m.inputA, p.Frame); err != nil {
			return nil, nil, m.producer.Upstream(fmt.Errorf("inputA: %w", err))
		}
		if b, err = particles.Fetch(ctx, m.inputB, p.Frame); err != nil {
			return nil, nil, m.producer.Upstream(fmt.Errorf("inputB: %w", err))
		}
		return []uint64{a.Hash, b.Hash}, func(ctx context.Context) (*particles.Particles, error) {
			return merged(a.Data, b.Data, m.tagInputs.Bool())
		}, nil
	})
	if err != nil {
		return err
	}

	p.FrameCount = max(a.FrameCount, b.FrameCount)
	p.Bounds = snap.Data.Bounds
	p.Hash = snap.Hash
	p.Data = snap.Data
	p.Unlocker = unlocker
	return nil
}

func merged(a, b *particles.Particles, tag bool) (*particles.Particles, error) {
	if a.Radius != b.Radius && a.Len() > 0 && b.Len() > 0 {
		return nil, fmt.Errorf("inputs disagree on particle radius (%g vs %g)", a.Radius, b.Radius)
	}
	radius := a.Radius
	if a.Len() == 0 {
		radius = b.Radius
	}

	n := a.Len() + b.Len()
	out := &particles.Particles{
		Positions:   make([][3]float32, 0, n),
		Intensities: make([]float32, 0, n),
		Radius:      radius,
		Bounds:      a.Bounds.Union(b.Bounds),
	}
	out.Positions = append(append(out.Positions, a.Positions...), b.Positions...)
	if tag {
		for range a.Positions {
			out.Intensities = append(out.Intensities, 0)
		}
		for range b.Positions {
			out.Intensities = append(out.Intensities, 1)
		}
	} else {
		out.Intensities = append(append(out.Intensities, a.Intensities...), b.Intensities...)
	}
	return out, nil
}
