package pets

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

const (
	RARITY_COMMON    = "common"
	RARITY_RARE      = "rare"
	RARITY_EPIC      = "epic"
	RARITY_LEGENDARY = "legendary"
)

type Entry struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Emote       string `yaml:"emote"`
	Rarity      string `yaml:"rarity"`
	Price       int    `yaml:"price"`
	Attack      int    `yaml:"attack"`
	Defense     int    `yaml:"defense"`
}

type Catalog struct {
	Pets []Entry `yaml:"pets"`
}

// LoadCatalog reads the catalog at path, or the built in one if path is empty
func LoadCatalog(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
		}
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(catalog.Pets) == 0 {
		return nil, fmt.Errorf("catalog has no pets")
	}
	seen := make(map[string]struct{}, len(catalog.Pets))
	for i := range catalog.Pets {
		entry := &catalog.Pets[i]
		entry.Name = strings.ToLower(strings.TrimSpace(entry.Name))
		if entry.Name == "" {
			return nil, fmt.Errorf("catalog entry %d has no name", i)
		}
		if _, ok := seen[entry.Name]; ok {
			return nil, fmt.Errorf("duplicate pet %s in catalog", entry.Name)
		}
		seen[entry.Name] = struct{}{}
		switch entry.Rarity {
		case RARITY_COMMON, RARITY_RARE, RARITY_EPIC, RARITY_LEGENDARY:
		default:
			return nil, fmt.Errorf("pet %s has unknown rarity %q", entry.Name, entry.Rarity)
		}
		if entry.Price < 0 || entry.Attack < 0 || entry.Defense < 0 {
			return nil, fmt.Errorf("pet %s has negative values", entry.Name)
		}
	}
	return &catalog, nil
}

func (c *Catalog) Find(name string) (Entry, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, entry := range c.Pets {
		if entry.Name == name {
			return entry, true
		}
	}
	return Entry{}, false
}
