// Package template loads asset-definition sets (templates) and per-asset
// blueprint instructions from YAML, and validates them before any
// generation request is issued.
package template

import (
	"fmt"

	"github.com/packforge/packforge/pkg/pack"
)

// Template is a named, versioned collection of asset definitions plus the
// asset whose content carries the character's name. Templates are immutable
// once loaded.
type Template struct {
	Name          string                 `yaml:"name"`
	Version       string                 `yaml:"version"`
	IdentityAsset string                 `yaml:"identity_asset"` // Asset scanned for the "Name: ..." line
	IdentityKey   string                 `yaml:"identity_key,omitempty"`
	Assets        []pack.AssetDefinition `yaml:"assets"`

	// Blueprint instruction text keyed by blueprint reference, resolved at
	// load time so a missing blueprint fails before generation starts.
	blueprints map[string]string
}

// ConfigurationError reports missing or inconsistent template data. It is
// unrecoverable for the affected job or batch and is always raised before
// the first generation request.
type ConfigurationError struct {
	Template string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("template %q: %s", e.Template, e.Reason)
}

func (t *Template) configErr(format string, a ...any) error {
	return &ConfigurationError{Template: t.Name, Reason: fmt.Sprintf(format, a...)}
}

// Validate checks the template: unique asset names, resolvable dependencies,
// no cycles, a known identity asset, and blueprint instructions present for
// every required asset. Cycle detection reuses the resolver.
func (t *Template) Validate() error {
	if t.Name == "" {
		return &ConfigurationError{Template: "(unnamed)", Reason: "template name is required"}
	}
	if len(t.Assets) == 0 {
		return t.configErr("no assets defined")
	}

	if _, err := pack.Resolve(t.Assets); err != nil {
		return fmt.Errorf("template %q: %w", t.Name, err)
	}

	byName := make(map[string]pack.AssetDefinition, len(t.Assets))
	for _, a := range t.Assets {
		byName[a.Name] = a
	}

	// Required assets only ever consume required context: the active order
	// excludes optional assets, so a required asset must not depend on one.
	for _, a := range t.Assets {
		if !a.Required {
			continue
		}
		for _, dep := range a.DependsOn {
			if !byName[dep].Required {
				return t.configErr("required asset %q depends on optional asset %q", a.Name, dep)
			}
		}
	}

	if t.IdentityAsset != "" {
		if _, ok := byName[t.IdentityAsset]; !ok {
			return t.configErr("identity asset %q is not defined", t.IdentityAsset)
		}
	}

	for _, a := range t.Assets {
		if !a.Required {
			continue
		}
		if _, ok := t.blueprints[a.Blueprint]; !ok {
			return t.configErr("no blueprint instructions for required asset %q (blueprint %q)", a.Name, a.Blueprint)
		}
	}

	return nil
}

// ActiveOrder resolves the template and returns the generation order
// restricted to required assets.
func (t *Template) ActiveOrder() (pack.GenerationOrder, error) {
	full, err := pack.Resolve(t.Assets)
	if err != nil {
		return nil, err
	}

	required := make(map[string]bool, len(t.Assets))
	for _, a := range t.Assets {
		if a.Required {
			required[a.Name] = true
		}
	}

	active := make(pack.GenerationOrder, 0, len(full))
	for _, name := range full {
		if required[name] {
			active = append(active, name)
		}
	}
	return active, nil
}

// Instructions returns the blueprint instruction text for an asset name.
// A missing blueprint here means Validate was skipped; it is still a
// configuration error, not a runtime one.
func (t *Template) Instructions(assetName string) (string, error) {
	for _, a := range t.Assets {
		if a.Name != assetName {
			continue
		}
		text, ok := t.blueprints[a.Blueprint]
		if !ok {
			return "", t.configErr("no blueprint instructions for asset %q (blueprint %q)", assetName, a.Blueprint)
		}
		return text, nil
	}
	return "", t.configErr("asset %q is not defined", assetName)
}

// Asset returns the definition for name.
func (t *Template) Asset(name string) (pack.AssetDefinition, bool) {
	for _, a := range t.Assets {
		if a.Name == name {
			return a, true
		}
	}
	return pack.AssetDefinition{}, false
}

// NameKey returns the key scanned for the derived identifier, "Name" unless
// the template overrides it.
func (t *Template) NameKey() string {
	if t.IdentityKey != "" {
		return t.IdentityKey
	}
	return "Name"
}
