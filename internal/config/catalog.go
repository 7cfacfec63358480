package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/set-night/groqchat/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed models.yaml
var defaultCatalog []byte

// Catalog is the enumerated set of models offered in the UI. The first entry
// is the default selection.
type Catalog struct {
	Models []domain.AIModel `yaml:"models"`
}

// LoadCatalog parses the YAML catalog at path, or the built-in one when path
// is empty.
func LoadCatalog(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read models file: %w", err)
		}
		data = b
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse models: %w", err)
	}
	if len(c.Models) == 0 {
		return nil, errors.New("model catalog is empty")
	}
	seen := make(map[string]bool, len(c.Models))
	for i, m := range c.Models {
		if m.ID == "" {
			return nil, fmt.Errorf("model %d: missing id", i)
		}
		if seen[m.ID] {
			return nil, fmt.Errorf("model %q listed twice", m.ID)
		}
		seen[m.ID] = true
		if m.Name == "" {
			c.Models[i].Name = m.ID
		}
	}
	return &c, nil
}

func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.Models))
	for i, m := range c.Models {
		ids[i] = m.ID
	}
	return ids
}

func (c *Catalog) Default() domain.AIModel {
	return c.Models[0]
}

func (c *Catalog) Get(id string) (*domain.AIModel, error) {
	for i := range c.Models {
		if c.Models[i].ID == id {
			return &c.Models[i], nil
		}
	}
	return nil, domain.ErrModelNotFound
}

// DefaultSettings is what a fresh session starts with.
func (c *Catalog) DefaultSettings() domain.Settings {
	return domain.Settings{
		Model:  c.Default().ID,
		Window: domain.DefaultWindow,
	}
}
