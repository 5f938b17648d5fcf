// internal/nodeid/types.go
package nodeid

// Separator splits the module segment from the member segment.
const Separator = "/"

// Address identifies a module, or a slot or parameter owned by a module.
type Address struct {
	Module string
	Name   string // empty when the address names the module itself.
}

// New creates an address for the member `name` of module `module`.
func New(module, name string) Address {
	return Address{Module: module, Name: name}
}

// IsModule returns true if the address names a module rather than a member.
func (a Address) IsModule() bool {
	return a.Name == ""
}
