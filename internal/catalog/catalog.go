package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/spic/internal/domain"
)

//go:embed catalog.yaml
var embedded []byte

// PhaseTemplate is one catalog step instantiated as a phase on operation creation.
type PhaseTemplate struct {
	ID      int    `yaml:"id"`
	Name    string `yaml:"name"`
	Stage   string `yaml:"stage"`
	Order   int    `yaml:"order"`
	MinDays int    `yaml:"min_days"`
	MaxDays int    `yaml:"max_days"`
	Primary bool   `yaml:"primary"`
}

type schema struct {
	Types map[domain.OperationType][]PhaseTemplate `yaml:"types"`
}

// Catalog holds the ordered phase list of each operation type.
type Catalog struct {
	types map[domain.OperationType][]PhaseTemplate
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the embedded catalog, parsed and validated once.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = Parse(embedded)
	})
	return defaultCat, defaultErr
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var s schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, eris.Wrapf(domain.ErrConfiguration, "parsing phase catalog: %v", err)
	}
	if errs := Validate(s.Types); len(errs) > 0 {
		return nil, eris.Wrapf(domain.ErrConfiguration, "invalid phase catalog: %v", errors.Join(errs...))
	}
	for t := range s.Types {
		list := s.Types[t]
		sort.Slice(list, func(i, j int) bool { return list[i].Order < list[j].Order })
	}
	return &Catalog{types: s.Types}, nil
}

// For returns a copy of the ordered phase templates for t.
func (c *Catalog) For(t domain.OperationType) ([]PhaseTemplate, error) {
	list, ok := c.types[t]
	if !ok {
		return nil, fmt.Errorf("no phase catalog for operation type %q: %w", t, domain.ErrInvalidInput)
	}
	out := make([]PhaseTemplate, len(list))
	copy(out, list)
	return out, nil
}

// Size returns the total number of phase templates across all types.
func (c *Catalog) Size() int {
	n := 0
	for _, list := range c.types {
		n += len(list)
	}
	return n
}

// Validate checks catalog structure. Returns a slice of errors (empty if valid).
func Validate(types map[domain.OperationType][]PhaseTemplate) []error {
	var errs []error
	for _, t := range domain.OperationTypes {
		if len(types[t]) == 0 {
			errs = append(errs, fmt.Errorf("type %s: at least one phase is required", t))
		}
	}

	ids := map[int]bool{}
	for t, list := range types {
		if !t.Valid() {
			errs = append(errs, fmt.Errorf("type %q is not an operation type", t))
			continue
		}
		orders := map[int]bool{}
		for i, p := range list {
			if p.Name == "" {
				errs = append(errs, fmt.Errorf("%s[%d]: name is required", t, i))
			}
			if ids[p.ID] {
				errs = append(errs, fmt.Errorf("%s[%d]: duplicate id %d", t, i, p.ID))
			}
			ids[p.ID] = true
			if orders[p.Order] {
				errs = append(errs, fmt.Errorf("%s[%d]: duplicate order %d", t, i, p.Order))
			}
			orders[p.Order] = true
			if p.MinDays < 0 || p.MaxDays < p.MinDays {
				errs = append(errs, fmt.Errorf("%s[%d]: durations %d..%d are invalid", t, i, p.MinDays, p.MaxDays))
			}
		}
		for o := 1; o <= len(list); o++ {
			if !orders[o] {
				errs = append(errs, fmt.Errorf("%s: orders must run contiguously from 1, missing %d", t, o))
				break
			}
		}
	}
	return errs
}
