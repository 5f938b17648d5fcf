// Package print provides a sink module that pulls particles every frame and
// prints a summary whenever the content hash changes.
package print

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/specialistvlad/pullgridgo/calls/particles"
	"github.com/specialistvlad/pullgridgo/internal/ctxlog"
	"github.com/specialistvlad/pullgridgo/internal/module"
	"github.com/specialistvlad/pullgridgo/internal/param"
	"github.com/specialistvlad/pullgridgo/internal/registry"
)

// ClassName is the registered module class.
const ClassName = "Print"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the module class and its call class.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterCall(particles.Class)
	r.RegisterModule(&registry.ModuleClass{
		Name:        ClassName,
		Description: "Prints a summary of the particles on its input.",
		Calls:       []string{particles.ClassName},
		New:         New,
	})
}

// Printer is a frame driven particle sink.
type Printer struct {
	module.Base

	verbose *param.Node
	limit   *param.Node
	input   *module.Outbound

	mu       sync.Mutex
	out      io.Writer
	lastHash uint64
	printed  bool
}

// New creates an uncreated printer writing to stdout.
func New(name string) module.Module {
	return NewWithWriter(name, os.Stdout)
}

// NewWithWriter creates an uncreated printer writing to w.
func NewWithWriter(name string, w io.Writer) *Printer {
	p := &Printer{out: w}
	p.Init(ClassName, name, "Prints a summary of the particles on its input.")
	return p
}

// OnCreate declares the parameters and the input slot.
func (p *Printer) OnCreate(ctx context.Context) error {
	p.verbose = p.AddParam(param.NewBool("verbose", false).WithDescription("Also list the first particles."))
	p.limit = p.AddParam(param.NewInt("limit", 3, 0, 1<<16).WithDescription("Number of particles listed in verbose mode."))
	p.input = p.AddOutbound("input", "Particles to print.").SetCompatibleCall(particles.ClassName, "^1")
	p.printed = false
	return nil
}

// OnRelease has nothing to free.
func (p *Printer) OnRelease(ctx context.Context) {}

// LastHash returns the hash of the last printed data.
func (p *Printer) LastHash() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastHash
}

// Frame pulls frame and prints it if its content changed since the last
// successful pull. A failed pull leaves the last printed state untouched.
func (p *Printer) Frame(ctx context.Context, frame int) error {
	logger := ctxlog.FromContext(ctx)

	data, err := particles.Fetch(ctx, p.input, frame)
	if err != nil {
		logger.Warn("Print failed to pull input.", "module", p.Name(), "frame", frame, "error", err)
		return err
	}
	defer data.Unlock()

	verboseGen, limitGen := p.verbose.Observe(), p.limit.Observe()
	optionsChanged := p.verbose.IsDirty() || p.limit.IsDirty()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.printed && data.Hash == p.lastHash && !optionsChanged {
		logger.Debug("Input unchanged.", "module", p.Name(), "frame", frame, "hash", data.Hash)
		return nil
	}

	p.write(data)
	p.lastHash = data.Hash
	p.printed = true
	p.verbose.Commit(verboseGen)
	p.limit.Commit(limitGen)
	logger.Info("Printed input.", "module", p.Name(), "frame", data.Frame, "hash", data.Hash)
	return nil
}

func (p *Printer) write(data *particles.Payload) {
	count := 0
	if data.Data != nil {
		count = data.Data.Len()
	}
	fmt.Fprintf(p.out, "%s: frame %d/%d hash %d particles %d bounds %s\n",
		p.Name(), data.Frame, data.FrameCount, data.Hash, count, data.Bounds)
	if !p.verbose.Bool() || data.Data == nil {
		return
	}
	n := min(p.limit.Int(), count)
	for i := 0; i < n; i++ {
		pos := data.Data.Positions[i]
		intensity := float32(0)
		if i < len(data.Data.Intensities) {
			intensity = data.Data.Intensities[i]
		}
		fmt.Fprintf(p.out, "      [%d] (%g, %g, %g) i=%g\n", i, pos[0], pos[1], pos[2], intensity)
	}
}
