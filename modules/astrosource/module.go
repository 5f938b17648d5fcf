// Package astrosource provides a module generating a synthetic
// cosmological snapshot per frame.
package astrosource

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/specialistvlad/pullgridgo/calls/astro"
	"github.com/specialistvlad/pullgridgo/calls/particles"
	"github.com/specialistvlad/pullgridgo/internal/call"
	"github.com/specialistvlad/pullgridgo/internal/module"
	"github.com/specialistvlad/pullgridgo/internal/param"
	"github.com/specialistvlad/pullgridgo/internal/pull"
	"github.com/specialistvlad/pullgridgo/internal/registry"
)

// ClassName is the registered module class.
const ClassName = "AstroSource"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the module class and its call class.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterCall(astro.Class)
	r.RegisterModule(&registry.ModuleClass{
		Name:        ClassName,
		Description: "Generates a synthetic astrophysical snapshot for every frame.",
		Calls:       []string{astro.ClassName},
		New:         New,
	})
}

// Source serves AstroDataCall on its "data" slot.
type Source struct {
	module.Base

	count        *param.Node
	seed         *param.Node
	frames       *param.Node
	starFraction *param.Node
	boxSize      *param.Node

	producer *pull.Producer[*astro.Snapshot]
}

// New creates an uncreated source.
func New(name string) module.Module {
	s := &Source{}
	s.Init(ClassName, name, "Generates a synthetic astrophysical snapshot for every frame.")
	return s
}

// OnCreate declares the parameters and the data slot.
func (s *Source) OnCreate(ctx context.Context) error {
	s.count = s.AddParam(param.NewInt("count", 256, 0, 1<<22))
	s.seed = s.AddParam(param.NewInt("seed", 1, 0, math.MaxInt32))
	s.frames = s.AddParam(param.NewInt("frames", 1, 1, 1<<20))
	s.starFraction = s.AddParam(param.NewFloat("starFraction", 0.1, 0, 1).WithDescription("Share of particles flagged as stars."))
	s.boxSize = s.AddParam(param.NewFloat("boxSize", 64, 0, math.MaxFloat32).WithDescription("Edge length of the periodic simulation box."))

	s.producer = pull.NewProducer[*astro.Snapshot](s.Name()+"/data",
		pull.WithParams[*astro.Snapshot](s.count, s.seed, s.frames, s.starFraction, s.boxSize),
		pull.WithRecorder[*astro.Snapshot](pull.RecorderFrom(ctx)),
	)

	s.AddInbound("data", "Snapshot of the requested frame.").
		SetCallback(astro.Class, astro.GetData, s.getData).
		SetCallback(astro.Class, astro.GetExtent, s.getExtent)
	return nil
}

// OnRelease has nothing to free.
func (s *Source) OnRelease(ctx context.Context) {}

func (s *Source) box() particles.Bounds {
	edge := float32(s.boxSize.Float())
	return particles.Bounds{Max: [3]float32{edge, edge, edge}}
}

func (s *Source) getExtent(ctx context.Context, raw call.Payload) error {
	p, err := call.As[*astro.Payload](raw)
	if err != nil {
		return err
	}
	p.FrameCount = s.frames.Int()
	p.Frame = particles.ClampFrame(p.Frame, p.FrameCount)
	p.Bounds = s.box()
	p.Hash = s.producer.Hash()
	return nil
}

func (s *Source) getData(ctx context.Context, raw call.Payload) error {
	p, err := call.As[*astro.Payload](raw)
	if err != nil {
		return err
	}
	var frames, frame int
	snap, unlocker, err := s.producer.Do(ctx, func(ctx context.Context) ([]uint64, func(context.Context) (*astro.Snapshot, error), error) {
		frames = s.frames.Int()
		frame = particles.ClampFrame(p.Frame, frames)
		return []uint64{uint64(frame)}, func(ctx context.Context) (*astro.Snapshot, error) {
			return Generate(s.count.Int(), s.seed.Int(), frame, s.starFraction.Float(), float32(s.boxSize.Float())), nil
		}, nil
	})
	if err != nil {
		return err
	}

	p.Frame = frame
	p.FrameCount = frames
	p.Bounds = snap.Data.Bounds
	p.Hash = snap.Hash
	p.Data = snap.Data
	p.Unlocker = unlocker
	return nil
}

// Generate builds a snapshot of count particles inside a box of the given
// edge length. Particles drift along their velocity with the frame index.
func Generate(count, seed, frame int, starFraction float64, edge float32) *astro.Snapshot {
	rng := rand.New(rand.NewPCG(uint64(seed), 0))
	out := &astro.Snapshot{
		Positions:    make([][3]float32, count),
		Velocities:   make([][3]float32, count),
		Temperatures: make([]float32, count),
		Masses:       make([]float32, count),
		Densities:    make([]float32, count),
		IsStar:       make([]bool, count),
		IDs:          make([]int64, count),
		Bounds:       particles.EmptyBounds(),
	}
	for i := 0; i < count; i++ {
		var pos, vel [3]float32
		for k := 0; k < 3; k++ {
			vel[k] = float32(rng.NormFloat64())
			start := rng.Float32() * edge
			pos[k] = wrap(start+vel[k]*float32(frame), edge)
		}
		out.Positions[i] = pos
		out.Velocities[i] = vel
		out.Masses[i] = float32(1 + rng.ExpFloat64())
		out.Densities[i] = float32(rng.ExpFloat64())
		out.Temperatures[i] = float32(1e4 * (1 + rng.Float64()*99))
		out.IsStar[i] = rng.Float64() < starFraction
		out.IDs[i] = int64(i)
		out.Bounds.Include(pos)
	}
	return out
}

func wrap(v, edge float32) float32 {
	if edge <= 0 {
		return 0
	}
	v = float32(math.Mod(float64(v), float64(edge)))
	if v < 0 {
		v += edge
	}
	if v >= edge {
		v = 0
	}
	return v
}
