package param

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// Parse converts user input into a value for this node. String-like types
// take the input verbatim; enums also accept option names; everything else is
// parsed as an HCL expression, e.g. `0.5`, `true` or `[1, 0, 0, 1]`.
func (n *Node) Parse(input string) (cty.Value, error) {
	switch n.typ {
	case TypeButton:
		return cty.True, nil
	case TypeString, TypeFilePath, TypeFlexEnum, TypeTransferFunction:
		return cty.StringVal(input), nil
	case TypeTernary:
		return cty.StringVal(strings.ToLower(strings.TrimSpace(input))), nil
	case TypeEnum:
		trimmed := strings.TrimSpace(input)
		for value, name := range n.enumOptions {
			if strings.EqualFold(name, trimmed) {
				return cty.NumberIntVal(int64(value)), nil
			}
		}
	}
	return ParseExpression(input)
}

// SetString parses input and sets the result.
func (n *Node) SetString(input string) error {
	v, err := n.Parse(input)
	if err != nil {
		return fmt.Errorf("parameter '%s': %w: %s", n.FullName(), ErrInvalidValue, err)
	}
	return n.Set(v)
}

// ParseExpression evaluates a constant HCL expression.
func ParseExpression(input string) (cty.Value, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(input), "value", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	return v, nil
}
