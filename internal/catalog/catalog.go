// Package catalog loads the filter catalog shown by the search UI.
// The catalog is a YAML document; an embedded default is used when no file
// is configured.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pkordes/rv-search/backend/internal/domain"
)

//go:embed filters.yaml
var defaultFilters []byte

type document struct {
	Filters []domain.Filter `yaml:"filters"`
}

// Default returns the embedded filter catalog.
func Default() (domain.FilterSet, error) {
	return Parse(defaultFilters)
}

// Load reads a filter catalog from path, or the embedded default when path is empty.
func Load(path string) (domain.FilterSet, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog.Load: %w", err)
	}
	fs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog.Load: %s: %w", path, err)
	}
	return fs, nil
}

// Parse decodes a catalog document. Ids must be non-empty and unique;
// labels default to the id.
func Parse(data []byte) (domain.FilterSet, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse filters: %w", err)
	}

	seen := make(map[string]struct{}, len(doc.Filters))
	out := make(domain.FilterSet, 0, len(doc.Filters))
	for i, f := range doc.Filters {
		f.ID = strings.TrimSpace(f.ID)
		f.Label = strings.TrimSpace(f.Label)
		if f.ID == "" {
			return nil, fmt.Errorf("%w: filter %d has no id", domain.ErrValidation, i)
		}
		if _, dup := seen[f.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate filter id %q", domain.ErrValidation, f.ID)
		}
		seen[f.ID] = struct{}{}
		if f.Label == "" {
			f.Label = f.ID
		}
		out = append(out, f)
	}
	return out, nil
}
