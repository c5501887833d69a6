package plan

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed plans.yaml
var defaultCatalogYAML []byte

// Spec holds the entitlements of one plan.
type Spec struct {
	MonthlyRequests int `yaml:"monthly_requests"`
}

// Catalog maps plans to their specs.
type Catalog struct {
	specs map[Plan]Spec
}

type catalogFile struct {
	Plans map[Plan]Spec `yaml:"plans"`
}

// Load parses a YAML catalog. Every known plan must be present with a
// non-negative allotment.
func Load(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Join(ErrInvalidCatalog, err)
	}

	for _, p := range All() {
		spec, ok := file.Plans[p]
		if !ok {
			return nil, fmt.Errorf("%w: plan %q missing", ErrInvalidCatalog, p)
		}
		if spec.MonthlyRequests < 0 {
			return nil, fmt.Errorf("%w: plan %q has negative allotment", ErrInvalidCatalog, p)
		}
	}
	for p := range file.Plans {
		if !p.Valid() {
			return nil, fmt.Errorf("%w: unknown plan %q", ErrInvalidCatalog, p)
		}
	}

	return &Catalog{specs: file.Plans}, nil
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// DefaultCatalog returns the catalog embedded in the binary. The embedded
// file is a build asset, so a parse failure is a programming error and
// panics at first use.
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := Load(defaultCatalogYAML)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Allotment returns the monthly request allotment for p, or 0 for plans
// outside the catalog.
func (c *Catalog) Allotment(p Plan) int {
	return c.specs[p].MonthlyRequests
}
