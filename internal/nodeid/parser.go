// internal/nodeid/parser.go
package nodeid

import (
	"fmt"
	"regexp"
	"strings"
)

// segmentRegex validates a single segment, e.g., `source` or `color.min`.
var segmentRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// isValidSegmentName checks for undesirable but technically valid names.
func isValidSegmentName(name string) bool {
	if name == "." || name == ".." || name == "-" {
		return false
	}
	return true
}

// ValidateSegment reports whether name may be used as a module, slot or
// parameter name.
func ValidateSegment(name string) error {
	if name == "" {
		return fmt.Errorf("identifier segment cannot be empty")
	}
	if !segmentRegex.MatchString(name) {
		return fmt.Errorf("invalid identifier segment format: %q", name)
	}
	if !isValidSegmentName(name) {
		return fmt.Errorf("invalid segment name: %q", name)
	}
	return nil
}

// Parse creates a new Address by parsing its canonical string representation.
func Parse(rawID string) (Address, error) {
	if rawID == "" {
		return Address{}, fmt.Errorf("identifier cannot be empty")
	}

	parts := strings.Split(rawID, Separator)
	if len(parts) > 2 {
		return Address{}, fmt.Errorf("identifier %q has too many segments", rawID)
	}
	for _, part := range parts {
		if err := ValidateSegment(part); err != nil {
			return Address{}, fmt.Errorf("identifier %q: %w", rawID, err)
		}
	}

	addr := Address{Module: parts[0]}
	if len(parts) == 2 {
		addr.Name = parts[1]
	}
	return addr, nil
}

// ParseMember parses an address that must name a slot or parameter.
func ParseMember(rawID string) (Address, error) {
	addr, err := Parse(rawID)
	if err != nil {
		return Address{}, err
	}
	if addr.IsModule() {
		return Address{}, fmt.Errorf("identifier %q must have the form module%sname", rawID, Separator)
	}
	return addr, nil
}
