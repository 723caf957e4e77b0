package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// #region seed-types
// SeedItem is the YAML form of one catalog record.
type SeedItem struct {
	ID         int             `yaml:"id"`
	Name       string          `yaml:"name"`
	Types      []string        `yaml:"types"`
	Color      string          `yaml:"color"`
	Region     string          `yaml:"region"`
	Generation int             `yaml:"generation"`
	Flags      map[string]bool `yaml:"flags,omitempty"`
	Popularity float64         `yaml:"popularity,omitempty"`
}

// Seed is the top-level YAML document.
type Seed struct {
	Items []SeedItem `yaml:"items"`
}

// #endregion seed-types

// #region seed-loader
// LoadSeed reads a YAML catalog seed file.
func LoadSeed(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes YAML seed bytes into catalog items.
func ParseSeed(data []byte) ([]Item, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	items := make([]Item, 0, len(s.Items))
	seen := make(map[int]bool, len(s.Items))
	for _, si := range s.Items {
		it, err := si.ToItem()
		if err != nil {
			return nil, err
		}
		if seen[it.ID] {
			return nil, fmt.Errorf("seed item %d: duplicate id", it.ID)
		}
		seen[it.ID] = true
		items = append(items, it)
	}
	return items, nil
}

// ToItem converts a SeedItem to a catalog Item, encoding flags as text tokens.
func (si SeedItem) ToItem() (Item, error) {
	if si.ID <= 0 {
		return Item{}, fmt.Errorf("seed item %q: id must be positive", si.Name)
	}
	if si.Name == "" {
		return Item{}, fmt.Errorf("seed item %d: missing name", si.ID)
	}
	if len(si.Types) == 0 || len(si.Types) > 2 {
		return Item{}, fmt.Errorf("seed item %d: expected one or two types, got %d", si.ID, len(si.Types))
	}
	it := Item{
		ID:         si.ID,
		Name:       si.Name,
		Type1:      si.Types[0],
		Color:      si.Color,
		Region:     si.Region,
		Generation: si.Generation,
		Popularity: si.Popularity,
		Flags:      make(map[string]string, len(FlagAttributes)),
	}
	if len(si.Types) == 2 {
		it.Type2 = si.Types[1]
	}
	for _, f := range FlagAttributes {
		it.Flags[f] = False
	}
	for name, v := range si.Flags {
		if !IsFlag(name) {
			return Item{}, fmt.Errorf("seed item %d flag %q: %w", si.ID, name, ErrUnknownAttribute)
		}
		if v {
			it.Flags[name] = True
		}
	}
	return it, nil
}

// #endregion seed-loader
