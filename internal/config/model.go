package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// ErrMalformedOverride is returned for assignments not of the form
// "module/param=value".
var ErrMalformedOverride = errors.New("malformed parameter assignment")

// Model is the unified, format-agnostic representation of a module graph.
type Model struct {
	Modules     []*Module
	Connections []*Connection
}

// Module is one module instance to create.
type Module struct {
	Name   string
	Class  string
	Params map[string]cty.Value
	// Range names the source the definition came from.
	Range string
}

// Connection binds the outbound slot From to the inbound slot To.
type Connection struct {
	From  string
	To    string
	Range string
}

// Override assigns a textual value to a parameter after the model's own
// values have been applied.
type Override struct {
	Param  string
	Value  string
	Origin string
}

// String returns the override as "param=value".
func (o Override) String() string {
	return o.Param + "=" + o.Value
}

// ParseOverride parses "module/param=value".
func ParseOverride(s, origin string) (Override, error) {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" || !strings.Contains(name, "/") {
		return Override{}, fmt.Errorf("%w: '%s'", ErrMalformedOverride, s)
	}
	return Override{Param: name, Value: value, Origin: origin}, nil
}
