package pack

import "fmt"

// AssetDefinition declares one named artifact of a character pack and the
// assets whose content must exist before it can be generated.
type AssetDefinition struct {
	Name        string   `yaml:"name" json:"name"`                                 // Unique key within the definition set
	Required    bool     `yaml:"required" json:"required"`                         // Required assets form the active generation order
	DependsOn   []string `yaml:"depends_on,omitempty" json:"depends_on,omitempty"` // Names of assets fed back as context
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Blueprint   string   `yaml:"blueprint" json:"blueprint"` // Key used by the template loader to fetch instructions
}

// Validate checks a single asset definition in isolation.
// Cross-asset checks (unknown dependencies, cycles) belong to Resolve.
func (d *AssetDefinition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("asset name cannot be empty")
	}
	if d.Blueprint == "" {
		return fmt.Errorf("asset %q: blueprint reference cannot be empty", d.Name)
	}
	for _, dep := range d.DependsOn {
		if dep == d.Name {
			return fmt.Errorf("asset %q cannot depend on itself", d.Name)
		}
	}
	return nil
}

// GenerationOrder is a dependency-valid sequence of asset names.
// Every name appears after all of its declared dependencies.
type GenerationOrder []string

// AssetResults accumulates generated asset content during one job.
// Keys are write-once and iteration follows insertion order, so later assets
// always see strictly earlier ones as context, never siblings.
type AssetResults struct {
	order  []string
	values map[string]string
}

// NewAssetResults returns an empty accumulator.
func NewAssetResults() *AssetResults {
	return &AssetResults{values: make(map[string]string)}
}

// Set records content for an asset name. Overwriting an existing key is a
// programming error and is rejected.
func (r *AssetResults) Set(name, content string) error {
	if _, exists := r.values[name]; exists {
		return fmt.Errorf("asset %q already recorded", name)
	}
	r.order = append(r.order, name)
	r.values[name] = content
	return nil
}

// Get returns the recorded content for name.
func (r *AssetResults) Get(name string) (string, bool) {
	content, ok := r.values[name]
	return content, ok
}

// Names returns the asset names in insertion order.
func (r *AssetResults) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Len returns the number of recorded assets.
func (r *AssetResults) Len() int {
	return len(r.order)
}
