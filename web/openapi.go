package web

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mosaicfw/mosaic/config"
	"github.com/mosaicfw/mosaic/core"
)

// MergeOpenAPI folds every module's API fragment into one OpenAPI document.
// Fragment paths are relative to the module's mount point, so "/" in the
// books fragment becomes "/api/books" in the merged document. Fragments may
// be YAML or JSON; the kernel validates nothing beyond their shape.
func MergeOpenAPI(app config.AppInfo, contribs []core.ModuleContribution) (map[string]any, error) {
	doc := map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   app.Name,
			"version": app.Version,
		},
		"paths":      map[string]any{},
		"components": map[string]any{},
	}
	paths := doc["paths"].(map[string]any)
	components := doc["components"].(map[string]any)

	for _, c := range contribs {
		if len(c.OpenAPI) == 0 {
			continue
		}
		frag := map[string]any{}
		if err := yaml.Unmarshal(c.OpenAPI, &frag); err != nil {
			return nil, fmt.Errorf("module %q openapi fragment: %w", c.Module, err)
		}
		if fragPaths, ok := frag["paths"].(map[string]any); ok {
			for p, v := range fragPaths {
				paths[mountPath(c.Module, p)] = v
			}
		}
		if fragComponents, ok := frag["components"].(map[string]any); ok {
			deepMerge(components, fragComponents)
		}
	}
	return doc, nil
}

func mountPath(module, p string) string {
	p = strings.TrimSuffix(p, "/")
	if p != "" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "/api/" + module + p
}

func deepMerge(dst, src map[string]any) {
	for k, v := range src {
		if sv, ok := v.(map[string]any); ok {
			if dv, ok := dst[k].(map[string]any); ok {
				deepMerge(dv, sv)
				continue
			}
		}
		dst[k] = v
	}
}
