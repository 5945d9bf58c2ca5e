package endpoint

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// validate checks catalog entries against the Endpoint struct tags.
var validate = validator.New()

// Catalog is the on-disk endpoint inventory, an operator-editable YAML
// document loaded at startup and on reload.
type Catalog struct {
	Endpoints []Endpoint `json:"endpoints" yaml:"endpoints"`
}

// LoadCatalog reads and validates an endpoint catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Validate checks catalog-internal consistency. Per-field constraints
// (required IDs, known providers and tiers, sane cost and reliability
// ranges) live as validate tags on Endpoint; uniqueness across entries is
// checked here.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Endpoints))
	for i, ep := range c.Endpoints {
		if err := validate.Struct(ep); err != nil {
			return fmt.Errorf("catalog endpoint %d (%q): %w", i, ep.ID, err)
		}
		if seen[ep.ID] {
			return fmt.Errorf("catalog endpoint %q: duplicate id", ep.ID)
		}
		seen[ep.ID] = true
	}
	return nil
}

// Apply upserts every catalog entry into the registry. Existing endpoints
// keep their runtime status; new endpoints start as loading.
func (c *Catalog) Apply(r *Registry) error {
	for _, ep := range c.Endpoints {
		if err := r.Upsert(ep); err != nil {
			return fmt.Errorf("apply catalog: %w", err)
		}
	}
	return nil
}
