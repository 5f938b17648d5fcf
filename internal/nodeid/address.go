// internal/nodeid/address.go
package nodeid

// String serializes the Address into its canonical `module/name` form.
func (a Address) String() string {
	if a.Name == "" {
		return a.Module
	}
	return a.Module + Separator + a.Name
}

// Equal checks whether two addresses point to the same target.
func (a Address) Equal(other Address) bool {
	return a.Module == other.Module && a.Name == other.Name
}

// Owner returns the address of the module owning this member.
func (a Address) Owner() Address {
	return Address{Module: a.Module}
}
