package call

import (
	"fmt"

	mm "github.com/Masterminds/semver/v3"
)

// Payload is the data record exchanged through a call. Every payload is
// tagged with the name of its call class.
type Payload interface {
	CallClass() string
}

// Class describes a call class: its name, its version and the ordered
// function table shared by every edge of this class.
type Class struct {
	Name        string
	Description string
	Version     *mm.Version
	Functions   []string
	NewPayload  func() Payload
}

// NewClass creates a call class. It panics if version is not a valid semantic
// version or the function list is empty, as both are programmer errors.
func NewClass(name, version, description string, newPayload func() Payload, functions ...string) *Class {
	v, err := mm.NewVersion(version)
	if err != nil {
		panic(fmt.Sprintf("call class '%s': invalid version %q: %v", name, version, err))
	}
	if len(functions) == 0 {
		panic(fmt.Sprintf("call class '%s' declares no functions", name))
	}
	seen := make(map[string]struct{}, len(functions))
	for _, fn := range functions {
		if _, dup := seen[fn]; dup {
			panic(fmt.Sprintf("call class '%s' declares function '%s' twice", name, fn))
		}
		seen[fn] = struct{}{}
	}
	return &Class{
		Name:        name,
		Description: description,
		Version:     v,
		Functions:   append([]string(nil), functions...),
		NewPayload:  newPayload,
	}
}

// FunctionIndex resolves a function name to its index. It is meant to be
// used at bind time only.
func (c *Class) FunctionIndex(name string) (int, bool) {
	for i, fn := range c.Functions {
		if fn == name {
			return i, true
		}
	}
	return -1, false
}

// FunctionName returns the name at idx, or an empty string if out of range.
func (c *Class) FunctionName(idx int) string {
	if idx < 0 || idx >= len(c.Functions) {
		return ""
	}
	return c.Functions[idx]
}

// FunctionCount returns the size of the function table.
func (c *Class) FunctionCount() int {
	return len(c.Functions)
}

// String returns `name@version`.
func (c *Class) String() string {
	return c.Name + "@" + c.Version.String()
}

// As matches a payload against the expected concrete type. A mismatch is
// reported as ErrWrongCallClass.
func As[T Payload](p Payload) (T, error) {
	var zero T
	if p == nil {
		return zero, fmt.Errorf("%w: nil payload", ErrWrongCallClass)
	}
	typed, ok := p.(T)
	if !ok {
		return zero, fmt.Errorf("%w: unexpected payload of class '%s' (%T)", ErrWrongCallClass, p.CallClass(), p)
	}
	return typed, nil
}
