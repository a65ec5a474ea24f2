package source

import (
	"context"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileSource loads YAML configuration from a directory. It reads
// mosaic.yaml (or .yml) and, when Profile is set, overlays
// mosaic.<profile>.yaml on top.
//
//	configs/
//	  mosaic.yaml       # base
//	  mosaic.prod.yaml  # profile overlay
type FileSource struct {
	// BasePath is the directory holding the configuration files.
	BasePath string

	// Profile selects an optional overlay file. A missing overlay is ignored.
	Profile string

	// Optional makes a missing base file a non-error (defaults apply).
	Optional bool
}

func (f *FileSource) Name() string { return "file" }

func (f *FileSource) Load(ctx context.Context) (map[string]any, error) {
	data := map[string]any{}

	base := findYAML(f.BasePath, "mosaic")
	if base == "" {
		if f.Optional {
			return data, nil
		}
		return nil, os.ErrNotExist
	}
	if err := readYAML(base, data); err != nil {
		return nil, err
	}

	if f.Profile != "" {
		if overlay := findYAML(f.BasePath, "mosaic."+f.Profile); overlay != "" {
			layer := map[string]any{}
			if err := readYAML(overlay, layer); err != nil {
				return nil, err
			}
			overlayMap(data, layer)
		}
	}
	return data, nil
}

func findYAML(dir, basename string) string {
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(dir, basename+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func readYAML(path string, out map[string]any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, &out)
}

func overlayMap(dst, src map[string]any) {
	for k, v := range src {
		if sv, ok := v.(map[string]any); ok {
			if dv, ok := dst[k].(map[string]any); ok {
				overlayMap(dv, sv)
				continue
			}
		}
		dst[k] = v
	}
}
