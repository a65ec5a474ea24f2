package config

import "context"

// Source supplies raw configuration data as a string-keyed map, possibly
// nested. Sources are read exactly once, before the first lifecycle phase;
// the kernel's configuration is a snapshot, not a live value.
type Source interface {
	// Load retrieves the source's data. Implementations must return a copy
	// the caller may mutate during merging.
	Load(ctx context.Context) (map[string]any, error)

	// Name identifies the source in error messages ("file", "env", "cli").
	Name() string
}
