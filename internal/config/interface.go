package config

import (
	"context"

	"github.com/zclconf/go-cty/cty"
)

// Loader is the interface for a format-specific graph description loader.
type Loader interface {
	// Load reads every description found under paths and merges them into
	// one model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}

// Converter is the interface for converting native Go values, such as
// decoded JSON received over the network, into parameter values.
type Converter interface {
	ToCtyValue(v any) (cty.Value, error)
}
