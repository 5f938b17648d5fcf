package param

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/zclconf/go-cty/cty"
)

func numberOf(v cty.Value) float64 {
	f, _ := v.AsBigFloat().Float64()
	return f
}

func floatList(values ...float64) cty.Value {
	elems := make([]cty.Value, len(values))
	for i, f := range values {
		elems[i] = cty.NumberFloatVal(f)
	}
	return cty.ListVal(elems)
}

func arity(n int, min, max float64) func(cty.Value) error {
	return func(v cty.Value) error {
		if v.LengthInt() != n {
			return fmt.Errorf("expected %d components, got %d", n, v.LengthInt())
		}
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			f := numberOf(elem)
			if f < min || f > max {
				return fmt.Errorf("component %g outside [%g, %g]", f, min, max)
			}
		}
		return nil
	}
}

// NewBool creates a boolean parameter.
func NewBool(name string, def bool) *Node {
	return newNode(name, TypeBool, cty.BoolVal(def), nil)
}

// NewButton creates a button parameter. Its value counts the presses.
func NewButton(name string) *Node {
	return newNode(name, TypeButton, cty.NumberIntVal(0), nil)
}

// NewColor creates an RGBA color parameter with components in [0, 1].
func NewColor(name string, r, g, b, a float64) *Node {
	return newNode(name, TypeColor, floatList(r, g, b, a), arity(4, 0, 1))
}

// NewEnum creates an enumerated parameter. options maps values to names.
func NewEnum(name string, def int, options map[int]string) *Node {
	if _, ok := options[def]; !ok {
		panic(fmt.Sprintf("enum parameter '%s': default %d is not an option", name, def))
	}
	opts := make(map[int]string, len(options))
	for k, v := range options {
		opts[k] = v
	}
	n := newNode(name, TypeEnum, cty.NumberIntVal(int64(def)), func(v cty.Value) error {
		bf := v.AsBigFloat()
		if !bf.IsInt() {
			return fmt.Errorf("enum value must be an integer")
		}
		i, _ := bf.Int64()
		if _, ok := opts[int(i)]; !ok {
			return fmt.Errorf("%d is not one of %v", i, sortedKeys(opts))
		}
		return nil
	})
	n.enumOptions = opts
	return n
}

// NewFilePath creates a file path parameter.
func NewFilePath(name, def string) *Node {
	return newNode(name, TypeFilePath, cty.StringVal(def), nil)
}

// NewFlexEnum creates a string parameter with suggested values. Values
// outside the suggestions are accepted.
func NewFlexEnum(name, def string, options ...string) *Node {
	n := newNode(name, TypeFlexEnum, cty.StringVal(def), nil)
	n.flexOptions = append([]string(nil), options...)
	return n
}

// NewFloat creates a bounded floating point parameter.
func NewFloat(name string, def, min, max float64) *Node {
	if math.IsNaN(min) {
		min = math.Inf(-1)
	}
	if math.IsNaN(max) {
		max = math.Inf(1)
	}
	return newNode(name, TypeFloat, cty.NumberFloatVal(def), func(v cty.Value) error {
		f := numberOf(v)
		if f < min || f > max {
			return fmt.Errorf("%g outside [%g, %g]", f, min, max)
		}
		return nil
	})
}

// NewInt creates a bounded integer parameter.
func NewInt(name string, def, min, max int) *Node {
	return newNode(name, TypeInt, cty.NumberIntVal(int64(def)), func(v cty.Value) error {
		bf := v.AsBigFloat()
		if !bf.IsInt() {
			return fmt.Errorf("%s is not an integer", bf.Text('g', -1))
		}
		i, _ := bf.Int64()
		if i < int64(min) || i > int64(max) {
			return fmt.Errorf("%d outside [%d, %d]", i, min, max)
		}
		return nil
	})
}

// NewString creates a free-form string parameter.
func NewString(name, def string) *Node {
	return newNode(name, TypeString, cty.StringVal(def), nil)
}

// NewTernary creates a true/false/unknown parameter.
func NewTernary(name, def string) *Node {
	validate := func(v cty.Value) error {
		switch v.AsString() {
		case TernaryTrue, TernaryFalse, TernaryUnknown:
			return nil
		}
		return fmt.Errorf("%q is not one of true, false, unknown", v.AsString())
	}
	if err := validate(cty.StringVal(def)); err != nil {
		panic(fmt.Sprintf("ternary parameter '%s': %v", name, err))
	}
	return newNode(name, TypeTernary, cty.StringVal(def), validate)
}

// NewTransferFunction creates a transfer function parameter holding a JSON
// document. An empty string selects the default function.
func NewTransferFunction(name, def string) *Node {
	return newNode(name, TypeTransferFunction, cty.StringVal(def), func(v cty.Value) error {
		s := v.AsString()
		if s != "" && !json.Valid([]byte(s)) {
			return fmt.Errorf("transfer function is not valid JSON")
		}
		return nil
	})
}

// NewVector2f creates a two-component vector parameter.
func NewVector2f(name string, x, y float64) *Node {
	return newNode(name, TypeVector2f, floatList(x, y), arity(2, math.Inf(-1), math.Inf(1)))
}

// NewVector3f creates a three-component vector parameter.
func NewVector3f(name string, x, y, z float64) *Node {
	return newNode(name, TypeVector3f, floatList(x, y, z), arity(3, math.Inf(-1), math.Inf(1)))
}

// NewVector4f creates a four-component vector parameter.
func NewVector4f(name string, x, y, z, w float64) *Node {
	return newNode(name, TypeVector4f, floatList(x, y, z, w), arity(4, math.Inf(-1), math.Inf(1)))
}

// NewGroupAnimation creates an animation group listing the full names of the
// parameters it animates.
func NewGroupAnimation(name string, members ...string) *Node {
	def := cty.ListValEmpty(cty.String)
	if len(members) > 0 {
		elems := make([]cty.Value, len(members))
		for i, m := range members {
			elems[i] = cty.StringVal(m)
		}
		def = cty.ListVal(elems)
	}
	return newNode(name, TypeGroupAnimation, def, nil)
}

func sortedKeys(m map[int]string) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
