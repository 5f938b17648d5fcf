package param

import (
	"context"
	"fmt"
	"math/bits"
	"strings"

	"github.com/specialistvlad/pullgridgo/internal/ctxlog"
)

// Presentation is a bit flag selecting how a parameter is shown to the user.
type Presentation uint32

const (
	ModeBasic Presentation = 1 << (iota + 1)
	ModeString
	ModeColor
	ModeFilePath
	ModeTransferFunction
	ModeKnob
	ModePinValueToMouse
	ModeRotation3DDirection
	ModeRotation3DAxes
	ModeGroupAnimation
)

var presentationNames = []struct {
	mode Presentation
	name string
}{
	{ModeBasic, "Basic"},
	{ModeString, "String"},
	{ModeColor, "Color"},
	{ModeFilePath, "File Path"},
	{ModeTransferFunction, "Transfer Function"},
	{ModeKnob, "Knob"},
	{ModePinValueToMouse, "Pin Value To Mouse"},
	{ModeRotation3DDirection, "3D Rotation - Direction"},
	{ModeRotation3DAxes, "3D Rotation - Axes"},
	{ModeGroupAnimation, "Animation"},
}

// String returns the human-readable names of the set flags joined by '|'.
func (p Presentation) String() string {
	if p == 0 {
		return "None"
	}
	var names []string
	for _, entry := range presentationNames {
		if p&entry.mode != 0 {
			names = append(names, entry.name)
		}
	}
	if len(names) == 0 {
		return fmt.Sprintf("Presentation(%d)", uint32(p))
	}
	return strings.Join(names, "|")
}

// Modes splits a set of flags into single modes, in declaration order.
func (p Presentation) Modes() []Presentation {
	var modes []Presentation
	for _, entry := range presentationNames {
		if p&entry.mode != 0 {
			modes = append(modes, entry.mode)
		}
	}
	return modes
}

// IsSingle reports whether exactly one flag is set.
func (p Presentation) IsSingle() bool {
	return bits.OnesCount32(uint32(p)) == 1
}

// PresentationFor returns the compatible set and the default mode of a type.
func PresentationFor(t Type) (compatible Presentation, def Presentation) {
	base := ModeBasic | ModeString
	switch t {
	case TypeColor:
		return base | ModeColor, ModeColor
	case TypeFilePath:
		return base | ModeFilePath, ModeFilePath
	case TypeFloat:
		return base | ModeKnob | ModePinValueToMouse, ModeBasic
	case TypeInt, TypeVector2f:
		return base | ModePinValueToMouse, ModeBasic
	case TypeTransferFunction:
		return base | ModeTransferFunction, ModeTransferFunction
	case TypeVector3f:
		return base | ModePinValueToMouse | ModeRotation3DDirection, ModeBasic
	case TypeVector4f:
		return base | ModePinValueToMouse | ModeColor | ModeRotation3DAxes, ModeBasic
	case TypeGroupAnimation:
		return ModeBasic | ModeGroupAnimation, ModeBasic
	default:
		return base, ModeBasic
	}
}

// presentation is the mutable presentation state of a node.
type presentation struct {
	visible     bool
	readOnly    bool
	mode        Presentation
	compatible  Presentation
	initialized bool
}

func newPresentation() presentation {
	return presentation{visible: true, mode: ModeBasic, compatible: ModeBasic}
}

func (p *presentation) accepts(mode Presentation) bool {
	return mode.IsSingle() && p.compatible&mode == mode
}

// InitPresentation computes the compatible set and default mode for the
// node's type. It runs once; later calls log a warning and return
// ErrAlreadyInitialized without changing anything.
func (n *Node) InitPresentation(ctx context.Context) error {
	n.presMu.Lock()
	defer n.presMu.Unlock()

	if n.pres.initialized {
		ctxlog.FromContext(ctx).Warn("Parameter presentation should only be initialized once.", "param", n.FullName())
		return fmt.Errorf("parameter '%s': %w", n.FullName(), ErrAlreadyInitialized)
	}
	n.pres.initialized = true
	n.pres.compatible, n.pres.mode = PresentationFor(n.typ)
	return nil
}

// PresentationInitialized reports whether InitPresentation has run.
func (n *Node) PresentationInitialized() bool {
	n.presMu.Lock()
	defer n.presMu.Unlock()
	return n.pres.initialized
}

// Visible reports whether the parameter is shown to the user.
func (n *Node) Visible() bool {
	n.presMu.Lock()
	defer n.presMu.Unlock()
	return n.pres.visible
}

// SetVisible shows or hides the parameter.
func (n *Node) SetVisible(visible bool) {
	n.presMu.Lock()
	defer n.presMu.Unlock()
	n.pres.visible = visible
}

// ReadOnly reports whether the user may edit the parameter.
func (n *Node) ReadOnly() bool {
	n.presMu.Lock()
	defer n.presMu.Unlock()
	return n.pres.readOnly
}

// SetReadOnly locks or unlocks the parameter for editing.
func (n *Node) SetReadOnly(readOnly bool) {
	n.presMu.Lock()
	defer n.presMu.Unlock()
	n.pres.readOnly = readOnly
}

// Presentation returns the current presentation mode.
func (n *Node) Presentation() Presentation {
	n.presMu.Lock()
	defer n.presMu.Unlock()
	return n.pres.mode
}

// CompatibleModes returns the set of modes this node accepts.
func (n *Node) CompatibleModes() Presentation {
	n.presMu.Lock()
	defer n.presMu.Unlock()
	return n.pres.compatible
}

// IsCompatible reports whether mode is a single mode from the compatible set.
func (n *Node) IsCompatible(mode Presentation) bool {
	n.presMu.Lock()
	defer n.presMu.Unlock()
	return n.pres.accepts(mode)
}

// SetPresentation switches the presentation mode. An incompatible mode is
// logged and rejected, leaving the current mode in place.
func (n *Node) SetPresentation(ctx context.Context, mode Presentation) error {
	n.presMu.Lock()
	defer n.presMu.Unlock()

	if !n.pres.accepts(mode) {
		ctxlog.FromContext(ctx).Warn("Incompatible parameter presentation.", "param", n.FullName(), "mode", mode.String(), "compatible", n.pres.compatible.String())
		return fmt.Errorf("parameter '%s': %w: %s", n.FullName(), ErrIncompatiblePresentation, mode)
	}
	n.pres.mode = mode
	return nil
}
