// Package particlesource provides a module generating a deterministic
// particle cloud per frame.
package particlesource

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/specialistvlad/pullgridgo/calls/particles"
	"github.com/specialistvlad/pullgridgo/internal/call"
	"github.com/specialistvlad/pullgridgo/internal/ctxlog"
	"github.com/specialistvlad/pullgridgo/internal/module"
	"github.com/specialistvlad/pullgridgo/internal/param"
	"github.com/specialistvlad/pullgridgo/internal/pull"
	"github.com/specialistvlad/pullgridgo/internal/registry"
)

// ClassName is the registered module class.
const ClassName = "ParticleSource"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the module class and its call class.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterCall(particles.Class)
	r.RegisterModule(&registry.ModuleClass{
		Name:        ClassName,
		Description: "Generates a deterministic particle cloud for every frame.",
		Calls:       []string{particles.ClassName},
		New:         New,
	})
}

// Source serves ParticleDataCall on its "data" slot.
type Source struct {
	module.Base

	count  *param.Node
	radius *param.Node
	seed   *param.Node
	frames *param.Node

	producer *pull.Producer[*particles.Particles]
}

// New creates an uncreated source.
func New(name string) module.Module {
	s := &Source{}
	s.Init(ClassName, name, "Generates a deterministic particle cloud for every frame.")
	return s
}

// OnCreate declares the parameters and the data slot.
func (s *Source) OnCreate(ctx context.Context) error {
	s.count = s.AddParam(param.NewInt("count", 128, 0, 1<<22).WithDescription("Number of particles per frame."))
	s.radius = s.AddParam(param.NewFloat("radius", 0.01, 0, 1000).WithDescription("Global particle radius."))
	s.seed = s.AddParam(param.NewInt("seed", 42, 0, math.MaxInt32).WithDescription("Random seed of the generator."))
	s.frames = s.AddParam(param.NewInt("frames", 1, 1, 1<<20).WithDescription("Number of frames in the sequence."))

	s.producer = pull.NewProducer[*particles.Particles](s.Name()+"/data",
		pull.WithParams[*particles.Particles](s.count, s.radius, s.seed, s.frames),
		pull.WithRecorder[*particles.Particles](pull.RecorderFrom(ctx)),
	)

	s.AddInbound("data", "Particle data of the requested frame.").
		SetCallback(particles.Class, particles.GetData, s.getData).
		SetCallback(particles.Class, particles.GetExtent, s.getExtent)
	return nil
}

// OnRelease has nothing to free.
func (s *Source) OnRelease(ctx context.Context) {}

func (s *Source) extent() particles.Bounds {
	r := float32(s.radius.Float())
	return particles.Bounds{
		Min: [3]float32{-1, -1, -1},
		Max: [3]float32{1, 1, 1},
	}.Grow(r)
}

func (s *Source) getExtent(ctx context.Context, raw call.Payload) error {
	p, err := call.As[*particles.Payload](raw)
	if err != nil {
		return err
	}
	p.FrameCount = s.frames.Int()
	p.Frame = particles.ClampFrame(p.Frame, p.FrameCount)
	p.Bounds = s.extent()
	p.Hash = s.producer.Hash()
	return nil
}

func (s *Source) getData(ctx context.Context, raw call.Payload) error {
	p, err := call.As[*particles.Payload](raw)
	if err != nil {
		return err
	}
	var frames, frame int
	snap, unlocker, err := s.producer.Do(ctx, func(ctx context.Context) ([]uint64, func(context.Context) (*particles.Particles, error), error) {
		frames = s.frames.Int()
		frame = particles.ClampFrame(p.Frame, frames)
		return []uint64{uint64(frame)}, func(ctx context.Context) (*particles.Particles, error) {
			ctxlog.FromContext(ctx).Debug("Generating particles.", "module", s.Name(), "frame", frame, "count", s.count.Int())
			return Generate(s.count.Int(), s.seed.Int(), frame, float32(s.radius.Float())), nil
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

// Generate builds count particles in the cube [-1, 1]^3. The same seed and
// frame always yield the same cloud. Intensity is the normalized distance
// from the origin.
func Generate(count, seed, frame int, radius float32) *particles.Particles {
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(frame)))
	out := &particles.Particles{
		Positions:   make([][3]float32, count),
		Intensities: make([]float32, count),
		Radius:      radius,
		Bounds:      particles.EmptyBounds(),
	}
	for i := 0; i < count; i++ {
		pos := [3]float32{
			rng.Float32()*2 - 1,
			rng.Float32()*2 - 1,
			rng.Float32()*2 - 1,
		}
		out.Positions[i] = pos
		d := math.Sqrt(float64(pos[0]*pos[0] + pos[1]*pos[1] + pos[2]*pos[2]))
		out.Intensities[i] = float32(d / math.Sqrt(3))
		out.Bounds.Include(pos)
	}
	out.Bounds = out.Bounds.Grow(radius)
	return out
}
