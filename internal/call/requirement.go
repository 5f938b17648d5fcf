package call

import (
	"fmt"
	"strings"

	mm "github.com/Masterminds/semver/v3"
)

// Requirement is an entry in an outbound slot's compatibility descriptor: the
// class it accepts and the versions of that class it can talk to.
type Requirement struct {
	Class      string
	Constraint *mm.Constraints
	raw        string
}

// NewRequirement builds a requirement. An empty constraint accepts any
// version.
func NewRequirement(class, constraint string) (Requirement, error) {
	raw := strings.TrimSpace(constraint)
	if raw == "" {
		raw = "*"
	}
	c, err := mm.NewConstraint(raw)
	if err != nil {
		return Requirement{}, fmt.Errorf("call class '%s': parse constraint %q: %w", class, raw, err)
	}
	return Requirement{Class: class, Constraint: c, raw: raw}, nil
}

// MustRequirement is like NewRequirement but panics on an invalid constraint.
func MustRequirement(class, constraint string) Requirement {
	r, err := NewRequirement(class, constraint)
	if err != nil {
		panic(err)
	}
	return r
}

// Accepts reports whether the given class satisfies the requirement.
func (r Requirement) Accepts(c *Class) bool {
	if c == nil || c.Name != r.Class {
		return false
	}
	if r.Constraint == nil {
		return true
	}
	return r.Constraint.Check(c.Version)
}

// String returns `class (constraint)`.
func (r Requirement) String() string {
	if r.raw == "" || r.raw == "*" {
		return r.Class
	}
	return fmt.Sprintf("%s (%s)", r.Class, r.raw)
}
