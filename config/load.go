package config

import (
	"context"
	"fmt"
)

// Load reads every source in order, merges the results (later sources win),
// binds them into a Root, and fills in defaults. The returned snapshot is
// complete and validated; any failure is a configuration error and the
// process should not continue into a lifecycle phase.
func Load(ctx context.Context, sources ...Source) (Root, error) {
	var root Root
	merged := map[string]any{}
	for _, src := range sources {
		vals, err := src.Load(ctx)
		if err != nil {
			return root, fmt.Errorf("load config from %s: %w", src.Name(), err)
		}
		merge(merged, vals)
	}
	if err := NewBinder().Bind(merged, &root); err != nil {
		return Root{}, err
	}
	root.applyDefaults()
	return root, nil
}
