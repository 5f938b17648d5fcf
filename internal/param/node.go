package param

import (
	"fmt"
	"strings"
	"sync"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Node is a named, typed parameter owned by a module.
type Node struct {
	name        string
	owner       string
	typ         Type
	description string
	validate    func(cty.Value) error
	enumOptions map[int]string
	flexOptions []string

	mu       sync.RWMutex
	value    cty.Value
	def      cty.Value
	gen      uint64
	cleanGen uint64

	presMu sync.Mutex
	pres   presentation
}

func newNode(name string, typ Type, def cty.Value, validate func(cty.Value) error) *Node {
	return &Node{
		name:     name,
		typ:      typ,
		value:    def,
		def:      def,
		validate: validate,
		pres:     newPresentation(),
	}
}

// Name returns the parameter name local to its module.
func (n *Node) Name() string {
	return n.name
}

// FullName returns `module/name`, or just the name if the node is not owned.
func (n *Node) FullName() string {
	if n.owner == "" {
		return n.name
	}
	return n.owner + "/" + n.name
}

// SetOwner records the owning module. It is called once when the node is
// added to a module.
func (n *Node) SetOwner(owner string) {
	n.owner = owner
}

// Type returns the kind of value held by the node.
func (n *Node) Type() Type {
	return n.typ
}

// Description returns the help text of the parameter.
func (n *Node) Description() string {
	return n.description
}

// WithDescription sets the help text and returns the node.
func (n *Node) WithDescription(description string) *Node {
	n.description = description
	return n
}

// EnumOptions returns a copy of the enum value names.
func (n *Node) EnumOptions() map[int]string {
	out := make(map[int]string, len(n.enumOptions))
	for k, v := range n.enumOptions {
		out[k] = v
	}
	return out
}

// Set converts v to the node's type, validates it and stores it. Every
// successful call marks the node dirty, even if the value is unchanged.
func (n *Node) Set(v cty.Value) error {
	if n.typ == TypeButton {
		n.Press()
		return nil
	}

	converted, err := convert.Convert(v, n.typ.CtyType())
	if err != nil {
		return fmt.Errorf("parameter '%s': %w: %s", n.FullName(), ErrInvalidValue, err)
	}
	if converted.IsNull() || !converted.IsWhollyKnown() {
		return fmt.Errorf("parameter '%s': %w: value must be known and not null", n.FullName(), ErrInvalidValue)
	}
	if n.validate != nil {
		if err := n.validate(converted); err != nil {
			return fmt.Errorf("parameter '%s': %w: %s", n.FullName(), ErrInvalidValue, err)
		}
	}

	n.mu.Lock()
	n.value = converted
	n.gen++
	n.mu.Unlock()
	return nil
}

// Press triggers a button parameter. For other types it only marks the
// node dirty.
func (n *Node) Press() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.typ == TypeButton {
		presses, _ := n.value.AsBigFloat().Int64()
		n.value = cty.NumberIntVal(presses + 1)
	}
	n.gen++
}

// Reset restores the default value. It counts as a mutation.
func (n *Node) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.value = n.def
	n.gen++
}

// Value returns the current value.
func (n *Node) Value() cty.Value {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.value
}

// Default returns the value the node was created with.
func (n *Node) Default() cty.Value {
	return n.def
}

// Bool returns the value of a boolean parameter.
func (n *Node) Bool() bool {
	v := n.Value()
	return v.Type() == cty.Bool && v.True()
}

// Int returns the value of a numeric parameter truncated to an integer.
func (n *Node) Int() int {
	v := n.Value()
	if v.Type() != cty.Number {
		return 0
	}
	i, _ := v.AsBigFloat().Int64()
	return int(i)
}

// Float returns the value of a numeric parameter.
func (n *Node) Float() float64 {
	v := n.Value()
	if v.Type() != cty.Number {
		return 0
	}
	f, _ := v.AsBigFloat().Float64()
	return f
}

// Text returns the value of a string-like parameter.
func (n *Node) Text() string {
	v := n.Value()
	if v.Type() != cty.String {
		return ""
	}
	return v.AsString()
}

// Floats returns the components of a color or vector parameter.
func (n *Node) Floats() []float64 {
	var out []float64
	if err := gocty.FromCtyValue(n.Value(), &out); err != nil {
		return nil
	}
	return out
}

// Strings returns the members of a list-of-strings parameter.
func (n *Node) Strings() []string {
	var out []string
	if err := gocty.FromCtyValue(n.Value(), &out); err != nil {
		return nil
	}
	return out
}

// EnumName returns the name of the current enum value.
func (n *Node) EnumName() string {
	return n.enumOptions[n.Int()]
}

// ValueString formats the current value for display.
func (n *Node) ValueString() string {
	return FormatValue(n.Value())
}

// String returns `fullname=value`.
func (n *Node) String() string {
	return n.FullName() + "=" + n.ValueString()
}

// IsDirty reports whether the node has been mutated since its owner last
// committed.
func (n *Node) IsDirty() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.gen > n.cleanGen
}

// Observe returns the current mutation generation. Pass it to Commit once
// the owner has reacted to the value it read.
func (n *Node) Observe() uint64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.gen
}

// Commit marks every mutation up to gen as processed.
func (n *Node) Commit(gen uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if gen > n.gen {
		gen = n.gen
	}
	if gen > n.cleanGen {
		n.cleanGen = gen
	}
}

// Mutations returns the number of mutations the node has seen.
func (n *Node) Mutations() uint64 {
	return n.Observe()
}

// FormatValue renders a cty value the way it would be written in a graph file.
func FormatValue(v cty.Value) string {
	switch {
	case v.IsNull():
		return "null"
	case !v.IsKnown():
		return "(unknown)"
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString()
	case ty == cty.Bool:
		if v.True() {
			return "true"
		}
		return "false"
	case ty == cty.Number:
		return v.AsBigFloat().Text('g', -1)
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		parts := make([]string, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			if elem.Type() == cty.String {
				parts = append(parts, fmt.Sprintf("%q", elem.AsString()))
				continue
			}
			parts = append(parts, FormatValue(elem))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return v.GoString()
	}
}
