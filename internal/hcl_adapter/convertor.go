package hcl_adapter

import (
	"fmt"
	"sort"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Converter is the HCL-specific implementation of the config.Converter interface.
type Converter struct{}

// NewConverter creates a new HCL converter.
func NewConverter() *Converter {
	return &Converter{}
}

// ToCtyValue converts a native Go value into its corresponding cty.Value.
// Generic JSON shapes ([]any, map[string]any) become tuples and objects;
// everything else goes through gocty's implied type.
func (c *Converter) ToCtyValue(v any) (cty.Value, error) {
	switch t := v.(type) {
	case nil:
		return cty.NilVal, nil
	case cty.Value:
		return t, nil
	case []any:
		elems := make([]cty.Value, len(t))
		for i, e := range t {
			ev, err := c.ToCtyValue(e)
			if err != nil {
				return cty.NilVal, fmt.Errorf("element %d: %w", i, err)
			}
			elems[i] = ev
		}
		return cty.TupleVal(elems), nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		attrs := make(map[string]cty.Value, len(t))
		for _, k := range keys {
			av, err := c.ToCtyValue(t[k])
			if err != nil {
				return cty.NilVal, fmt.Errorf("attribute '%s': %w", k, err)
			}
			attrs[k] = av
		}
		return cty.ObjectVal(attrs), nil
	}
	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty.Type: %w", err)
	}
	return gocty.ToCtyValue(v, ty)
}
