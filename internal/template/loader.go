package template

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed templates
var builtinFS embed.FS

// DefaultTemplateName identifies the built-in character pack template.
const DefaultTemplateName = "character-pack"

// LoadDefault returns the embedded character-pack template with its
// blueprint instructions resolved and validated.
func LoadDefault() (*Template, error) {
	data, err := builtinFS.ReadFile("templates/character.yml")
	if err != nil {
		return nil, fmt.Errorf("failed to read built-in template: %w", err)
	}

	blueprints, err := loadBlueprintDir(builtinFS, "templates/blueprints")
	if err != nil {
		return nil, err
	}

	return parse(data, blueprints)
}

// LoadFile reads a custom template from path. Blueprint instructions are
// loaded from a "blueprints" directory next to the template file; blueprint
// references missing there fall back to the built-in set, so a custom
// template can override only the assets it changes.
func LoadFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}

	blueprints, err := loadBlueprintDir(builtinFS, "templates/blueprints")
	if err != nil {
		return nil, err
	}

	custom, err := loadBlueprintDir(os.DirFS(filepath.Dir(path)), "blueprints")
	if err != nil {
		return nil, err
	}
	for ref, text := range custom {
		blueprints[ref] = text
	}

	return parse(data, blueprints)
}

func parse(data []byte, blueprints map[string]string) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("failed to parse template YAML: %w", err)
	}
	tmpl.blueprints = blueprints

	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// loadBlueprintDir reads every .md file in dir as a blueprint keyed by its
// base name. A missing directory yields an empty map, not an error.
func loadBlueprintDir(fsys fs.FS, dir string) (map[string]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read blueprint directory: %w", err)
	}

	blueprints := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		data, err := fs.ReadFile(fsys, dir+"/"+e.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read blueprint %s: %w", e.Name(), err)
		}
		ref := strings.TrimSuffix(e.Name(), ".md")
		blueprints[ref] = strings.TrimSpace(string(data))
	}
	return blueprints, nil
}
