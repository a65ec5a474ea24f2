package source

import (
	"context"
	"os"
	"strings"
)

// EnvPrefix is the required prefix for environment variables; anything else
// is ignored.
const EnvPrefix = "MOSAIC_"

// EnvSource loads configuration from environment variables. Variable names
// are split on underscores into a nested map and lowercased:
//
//	MOSAIC_SERVER_ADDR=:9090   -> {server: {addr: ":9090"}}
//	MOSAIC_DATABASE_PATH=a.db  -> {database: {path: "a.db"}}
//
// All values stay strings; type conversion happens during binding.
type EnvSource struct{}

func (e *EnvSource) Name() string { return "env" }

func (e *EnvSource) Load(ctx context.Context) (map[string]any, error) {
	result := make(map[string]any)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		segments := strings.Split(key, "_")
		if len(segments) == 0 || segments[0] == "" {
			continue
		}
		setNested(result, segments, value)
	}
	return result, nil
}
