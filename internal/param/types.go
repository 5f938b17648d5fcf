package param

import (
	"github.com/zclconf/go-cty/cty"
)

// Type identifies the kind of value a parameter node holds.
type Type int

const (
	TypeBool Type = iota
	TypeButton
	TypeColor
	TypeEnum
	TypeFilePath
	TypeFlexEnum
	TypeFloat
	TypeInt
	TypeString
	TypeTernary
	TypeTransferFunction
	TypeVector2f
	TypeVector3f
	TypeVector4f
	TypeGroupAnimation
)

var typeNames = map[Type]string{
	TypeBool:             "BoolParam",
	TypeButton:           "ButtonParam",
	TypeColor:            "ColorParam",
	TypeEnum:             "EnumParam",
	TypeFilePath:         "FilePathParam",
	TypeFlexEnum:         "FlexEnumParam",
	TypeFloat:            "FloatParam",
	TypeInt:              "IntParam",
	TypeString:           "StringParam",
	TypeTernary:          "TernaryParam",
	TypeTransferFunction: "TransferFunctionParam",
	TypeVector2f:         "Vector2fParam",
	TypeVector3f:         "Vector3fParam",
	TypeVector4f:         "Vector4fParam",
	TypeGroupAnimation:   "AnimationGroup",
}

// String returns the type name.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// CtyType returns the cty type used to store values of this kind.
func (t Type) CtyType() cty.Type {
	switch t {
	case TypeBool:
		return cty.Bool
	case TypeButton, TypeEnum, TypeFloat, TypeInt:
		return cty.Number
	case TypeColor, TypeVector2f, TypeVector3f, TypeVector4f:
		return cty.List(cty.Number)
	case TypeGroupAnimation:
		return cty.List(cty.String)
	default:
		return cty.String
	}
}

// Ternary values.
const (
	TernaryTrue    = "true"
	TernaryFalse   = "false"
	TernaryUnknown = "unknown"
)
