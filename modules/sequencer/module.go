// Package sequencer provides a controller module that steps another
// module's parameter forwards or backwards on button presses. Integer
// targets are incremented; string and file path targets have the last
// number in their file name incremented, keeping its zero padding.
package sequencer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/specialistvlad/pullgridgo/internal/ctxlog"
	"github.com/specialistvlad/pullgridgo/internal/module"
	"github.com/specialistvlad/pullgridgo/internal/param"
	"github.com/specialistvlad/pullgridgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// ClassName is the registered module class.
const ClassName = "Sequencer"

// Sequencer errors.
var (
	ErrTargetNotFound    = errors.New("target parameter not found")
	ErrUnsupportedTarget = errors.New("target parameter type cannot be sequenced")
	ErrNoNumber          = errors.New("name contains no number to step")
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the module class.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterModule(&registry.ModuleClass{
		Name:        ClassName,
		Description: "Controller for a sequence of values or data files.",
		New:         New,
	})
}

// Sequencer runs once per frame and applies pending button presses.
type Sequencer struct {
	module.Base

	target *param.Node
	next   *param.Node
	prev   *param.Node

	lastNext int
	lastPrev int
}

// New creates an uncreated sequencer.
func New(name string) module.Module {
	s := &Sequencer{}
	s.Init(ClassName, name, "Controller for a sequence of values or data files.")
	return s
}

// OnCreate declares the parameters.
func (s *Sequencer) OnCreate(ctx context.Context) error {
	s.target = s.AddParam(param.NewString("target", "").WithDescription("Full name of the parameter to step, e.g. source/frame."))
	s.next = s.AddParam(param.NewButton("next").WithDescription("Step forward."))
	s.prev = s.AddParam(param.NewButton("prev").WithDescription("Step backward."))
	s.lastNext, s.lastPrev = 0, 0
	return nil
}

// OnRelease has nothing to free.
func (s *Sequencer) OnRelease(ctx context.Context) {}

// Frame applies the presses since the previous frame.
func (s *Sequencer) Frame(ctx context.Context, frame int) error {
	targetGen, nextGen, prevGen := s.target.Observe(), s.next.Observe(), s.prev.Observe()
	defer s.target.Commit(targetGen)

	next, prev := s.next.Int(), s.prev.Int()
	delta := (next - s.lastNext) - (prev - s.lastPrev)
	s.lastNext, s.lastPrev = next, prev
	s.next.Commit(nextGen)
	s.prev.Commit(prevGen)

	if delta == 0 {
		return nil
	}
	return s.Step(ctx, delta)
}

// Step moves the target by delta positions.
func (s *Sequencer) Step(ctx context.Context, delta int) error {
	logger := ctxlog.FromContext(ctx)
	name := s.target.Text()
	if name == "" {
		logger.Warn("Sequencer has no target parameter.", "module", s.Name())
		return nil
	}
	target, ok := s.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: '%s'", ErrTargetNotFound, name)
	}

	var next cty.Value
	switch target.Type() {
	case param.TypeInt:
		next = cty.NumberIntVal(int64(target.Int() + delta))
	case param.TypeString, param.TypeFilePath:
		stepped, err := StepName(target.Text(), delta)
		if err != nil {
			return fmt.Errorf("target '%s': %w", name, err)
		}
		if target.Type() == param.TypeFilePath {
			if _, err := os.Stat(stepped); err != nil {
				return fmt.Errorf("target '%s': next file: %w", name, err)
			}
		}
		next = cty.StringVal(stepped)
	default:
		return fmt.Errorf("%w: '%s' is a %s", ErrUnsupportedTarget, name, target.Type())
	}

	if err := target.Set(next); err != nil {
		return err
	}
	logger.Info("Sequence stepped.", "module", s.Name(), "target", name, "value", target.ValueString())
	return nil
}

var numbered = regexp.MustCompile(`^(.*?)(\d+)(\D*)$`)

// StepName adds delta to the last number in the base name of path,
// preserving its width, e.g. "data_009.bin" + 1 = "data_010.bin".
func StepName(path string, delta int) (string, error) {
	dir, base := filepath.Split(path)
	m := numbered.FindStringSubmatch(base)
	if m == nil {
		return "", fmt.Errorf("%w: '%s'", ErrNoNumber, base)
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return "", err
	}
	n += delta
	if n < 0 {
		return "", fmt.Errorf("stepping '%s' by %d goes below zero", base, delta)
	}
	return dir + m[1] + fmt.Sprintf("%0*d", len(m[2]), n) + m[3], nil
}
