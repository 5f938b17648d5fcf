package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/pullgridgo/internal/ctxlog"
)

// Validate checks that every module class only declares registered call
// classes and that its factory builds instances of the declared class.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, mc := range r.ModuleClasses() {
		for _, name := range mc.Calls {
			if _, ok := r.Call(name); !ok {
				errs = append(errs, fmt.Sprintf("module class '%s': call class '%s' is not registered", mc.Name, name))
			}
		}

		m := mc.New("validate")
		if m == nil {
			errs = append(errs, fmt.Sprintf("module class '%s': factory returned nil", mc.Name))
			continue
		}
		if got := m.Core().Class(); got != mc.Name {
			errs = append(errs, fmt.Sprintf("module class '%s': factory builds modules of class '%s'", mc.Name, got))
		}
		if len(mc.Calls) == 0 {
			logger.Debug("Module class declares no call classes; it cannot be connected.", "class", mc.Name)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
