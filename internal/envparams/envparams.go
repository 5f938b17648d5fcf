// Package envparams reads parameter overrides from the process environment.
//
// A variable PULLGRID_PARAM_<module>__<param>=<value> assigns <value> to the
// parameter <module>/<param>.
package envparams

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/specialistvlad/pullgridgo/internal/config"
)

// Prefix marks parameter override variables.
const Prefix = "PULLGRID_PARAM_"

// Separator splits the module from the parameter name.
const Separator = "__"

// ErrMalformedName is returned for prefixed variables without a separator.
var ErrMalformedName = errors.New("malformed parameter variable name")

// FromEnviron extracts the overrides from environ, given in the form
// returned by os.Environ. Overrides are sorted by parameter name. Malformed
// variables are reported together; the well formed ones are still returned.
func FromEnviron(environ []string) ([]config.Override, error) {
	var (
		overrides []config.Override
		errs      *multierror.Error
	)
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, Prefix) {
			continue
		}
		moduleName, paramName, ok := strings.Cut(strings.TrimPrefix(key, Prefix), Separator)
		if !ok || moduleName == "" || paramName == "" {
			errs = multierror.Append(errs, fmt.Errorf("%w: '%s'", ErrMalformedName, key))
			continue
		}
		overrides = append(overrides, config.Override{
			Param:  moduleName + "/" + paramName,
			Value:  value,
			Origin: "env:" + key,
		})
	}
	sort.SliceStable(overrides, func(i, j int) bool {
		return overrides[i].Param < overrides[j].Param
	})
	return overrides, errs.ErrorOrNil()
}
