// Package astroconverter provides a module converting AstroDataCall
// snapshots into ParticleDataCall particles, mapping one attribute to the
// particle intensity.
package astroconverter

import (
	"context"
	"fmt"
	"math"

	"github.com/specialistvlad/pullgridgo/calls/astro"
	"github.com/specialistvlad/pullgridgo/calls/particles"
	"github.com/specialistvlad/pullgridgo/internal/call"
	"github.com/specialistvlad/pullgridgo/internal/module"
	"github.com/specialistvlad/pullgridgo/internal/param"
	"github.com/specialistvlad/pullgridgo/internal/pull"
	"github.com/specialistvlad/pullgridgo/internal/registry"
)

// ClassName is the registered module class.
const ClassName = "AstroParticleConverter"

// Color modes.
const (
	ColorMass = iota
	ColorTemperature
	ColorDensity
	ColorSpeed
	ColorStar
)

var colorModes = map[int]string{
	ColorMass:        "Mass",
	ColorTemperature: "Temperature",
	ColorDensity:     "Density",
	ColorSpeed:       "Speed",
	ColorStar:        "Star",
}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the module class and both call classes it speaks.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterCall(astro.Class)
	r.RegisterCall(particles.Class)
	r.RegisterModule(&registry.ModuleClass{
		Name:        ClassName,
		Description: "Converts data contained in an AstroDataCall to a ParticleDataCall.",
		Calls:       []string{astro.ClassName, particles.ClassName},
		New:         New,
	})
}

// Converter pulls from "astroData" and serves "particleData".
type Converter struct {
	module.Base

	colorMode *param.Node
	autoRange *param.Node
	minValue  *param.Node
	maxValue  *param.Node
	radius    *param.Node

	input    *module.Outbound
	producer *pull.Producer[*particles.Particles]
}

// New creates an uncreated converter.
func New(name string) module.Module {
	c := &Converter{}
	c.Init(ClassName, name, "Converts data contained in an AstroDataCall to a ParticleDataCall.")
	return c
}

// OnCreate declares the parameters and both slots.
func (c *Converter) OnCreate(ctx context.Context) error {
	c.colorMode = c.AddParam(param.NewEnum("colorMode", ColorMass, colorModes).WithDescription("Attribute mapped to intensity."))
	c.autoRange = c.AddParam(param.NewBool("autoRange", true).WithDescription("Derive the intensity range from the data."))
	c.minValue = c.AddParam(param.NewFloat("min", 0, math.Inf(-1), math.Inf(1)))
	c.maxValue = c.AddParam(param.NewFloat("max", 1, math.Inf(-1), math.Inf(1)))
	c.radius = c.AddParam(param.NewFloat("radius", 0.5, 0, math.MaxFloat32))

	c.producer = pull.NewProducer[*particles.Particles](c.Name()+"/particleData",
		pull.WithParams[*particles.Particles](c.colorMode, c.autoRange, c.minValue, c.maxValue, c.radius),
		pull.WithRecorder[*particles.Particles](pull.RecorderFrom(ctx)),
	)

	c.input = c.AddOutbound("astroData", "Snapshot to convert.").SetCompatibleCall(astro.ClassName, "^1")
	c.AddInbound("particleData", "Converted particles.").
		SetCallback(particles.Class, particles.GetData, c.getData).
		SetCallback(particles.Class, particles.GetExtent, c.getExtent)
	return nil
}

// OnRelease has nothing to free.
func (c *Converter) OnRelease(ctx context.Context) {}

func (c *Converter) getExtent(ctx context.Context, raw call.Payload) error {
	p, err := call.As[*particles.Payload](raw)
	if err != nil {
		return err
	}
	up, err := astro.Extent(ctx, c.input, p.Frame)
	if err != nil {
		return c.producer.Upstream(err)
	}
	p.Frame = up.Frame
	p.FrameCount = up.FrameCount
	p.Bounds = up.Bounds.Grow(float32(c.radius.Float()))
	p.Hash = c.producer.Hash()
	return nil
}

func (c *Converter) getData(ctx context.Context, raw call.Payload) error {
	p, err := call.As[*particles.Payload](raw)
	if err != nil {
		return err
	}
	var up *astro.Payload
	snap, unlocker, err := c.producer.Do(ctx, func(ctx context.Context) ([]uint64, func(context.Context) (*particles.Particles, error), error) {
		var err error
		if up, err = astro.Fetch(ctx, c.input, p.Frame); err != nil {
			return nil, nil, c.producer.Upstream(err)
		}
		return []uint64{up.Hash}, func(ctx context.Context) (*particles.Particles, error) {
			return convert(up.Data, c.options())
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

type options struct {
	mode      int
	autoRange bool
	min, max  float32
	radius    float32
}

func (c *Converter) options() options {
	return options{
		mode:      c.colorMode.Int(),
		autoRange: c.autoRange.Bool(),
		min:       float32(c.minValue.Float()),
		max:       float32(c.maxValue.Float()),
		radius:    float32(c.radius.Float()),
	}
}

func attribute(s *astro.Snapshot, mode, i int) (float32, error) {
	switch mode {
	case ColorMass:
		return s.Masses[i], nil
	case ColorTemperature:
		return s.Temperatures[i], nil
	case ColorDensity:
		return s.Densities[i], nil
	case ColorSpeed:
		v := s.Velocities[i]
		return float32(math.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2]))), nil
	case ColorStar:
		if s.IsStar[i] {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("unsupported color mode %d", mode)
	}
}

func convert(s *astro.Snapshot, opts options) (*particles.Particles, error) {
	n := s.Len()
	values := make([]float32, n)
	lo, hi := opts.min, opts.max
	if opts.autoRange {
		lo, hi = float32(math.Inf(1)), float32(math.Inf(-1))
	}
	for i := 0; i < n; i++ {
		v, err := attribute(s, opts.mode, i)
		if err != nil {
			return nil, err
		}
		values[i] = v
		if opts.autoRange {
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}
	if !opts.autoRange && hi < lo {
		return nil, fmt.Errorf("intensity range is inverted (min %g > max %g)", lo, hi)
	}

	out := &particles.Particles{
		Positions:   append([][3]float32(nil), s.Positions...),
		Intensities: make([]float32, n),
		Radius:      opts.radius,
		Bounds:      s.Bounds.Grow(opts.radius),
	}
	span := hi - lo
	for i, v := range values {
		if span <= 0 {
			out.Intensities[i] = 0
			continue
		}
		out.Intensities[i] = min(max((v-lo)/span, 0), 1)
	}
	return out, nil
}
