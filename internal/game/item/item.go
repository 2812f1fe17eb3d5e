// Package item provides the item definitions granted by treasure, quest
// completion and monster loot.
package item

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Kind constants for Def.Kind.
const (
	KindWeapon     = "weapon"
	KindArmor      = "armor"
	KindConsumable = "consumable"
	KindAccessory  = "accessory"
)

var validKinds = map[string]bool{
	KindWeapon:     true,
	KindArmor:      true,
	KindConsumable: true,
	KindAccessory:  true,
}

// Def defines the static properties of an item.
type Def struct {
	ID          string         `yaml:"id" json:"id"`
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description" json:"description,omitempty"`
	Kind        string         `yaml:"kind" json:"kind"`
	Price       int            `yaml:"price" json:"price"`
	Durability  int            `yaml:"durability" json:"durability,omitempty"`
	Bonuses     map[string]int `yaml:"bonuses" json:"bonuses,omitempty"`
}

// Validate checks that the Def satisfies its invariants.
//
// Postcondition: Returns nil iff all fields are valid; otherwise every violation is reported.
func (d *Def) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if !validKinds[d.Kind] {
		errs = append(errs, fmt.Errorf("kind must be one of weapon, armor, consumable, accessory; got %q", d.Kind))
	}
	if d.Price < 0 {
		errs = append(errs, errors.New("price must be >= 0"))
	}
	if d.Durability < 0 {
		errs = append(errs, errors.New("durability must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("item %q: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

// file is the on-disk shape: one YAML document per file holding a list of items.
type file struct {
	Items []*Def `yaml:"items"`
}

// LoadItems reads all *.yaml and *.yml files from dir. Each file holds an
// "items" list.
//
// Precondition: dir is a readable directory path.
// Postcondition: Returns all valid Defs or the first encountered error.
func LoadItems(dir string) ([]*Def, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadItems: cannot read directory %q: %w", dir, err)
	}

	var items []*Def
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadItems: cannot read file %q: %w", path, err)
		}
		var f file
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("LoadItems: cannot parse file %q: %w", path, err)
		}
		for _, d := range f.Items {
			if err := d.Validate(); err != nil {
				return nil, fmt.Errorf("LoadItems: invalid item in %q: %w", path, err)
			}
			items = append(items, d)
		}
	}
	return items, nil
}
