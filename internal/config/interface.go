package config

import "context"

// Loader is the interface for a format-specific run-request loader.
type Loader interface {
	// Load reads one or more request files, translates them into the
	// format-agnostic model and validates the result.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
