// Package monster provides monster template definitions and the catalog that
// spawns ephemeral mobs from them.
package monster

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/herobound/internal/game/combat"
	"github.com/cory-johannsen/herobound/internal/game/stats"
)

// Template defines a reusable monster archetype loaded from YAML.
type Template struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Race        string `yaml:"race" json:"race,omitempty"`
	Level       int    `yaml:"level" json:"level"`
	// Health is the authored hit points. Spawned mobs are clamped to the
	// derived base health of Stats.
	Health int          `yaml:"health" json:"health"`
	Stats  stats.Values `yaml:"stats" json:"stats"`
	Loot   *LootTable   `yaml:"loot" json:"-"`
}

// Validate checks that the template satisfies basic invariants.
//
// Postcondition: Returns nil iff ID and Name are non-empty, Level >= 1, Health >= 1,
// Stats are non-negative and any loot table is valid.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("monster template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("monster template %q: name must not be empty", t.ID)
	}
	if t.Level < 1 {
		return fmt.Errorf("monster template %q: level must be >= 1", t.ID)
	}
	if t.Health < 1 {
		return fmt.Errorf("monster template %q: health must be >= 1", t.ID)
	}
	block, err := stats.FromValues(t.Stats)
	if err != nil {
		return fmt.Errorf("monster template %q: %w", t.ID, err)
	}
	if block.BaseHealth() < 1 {
		return fmt.Errorf("monster template %q: stats yield zero base health", t.ID)
	}
	if t.Loot != nil {
		if err := t.Loot.Validate(); err != nil {
			return fmt.Errorf("monster template %q: %w", t.ID, err)
		}
	}
	return nil
}

// Spawn creates a fresh mob Combatant from the template.
//
// Precondition: t must have passed Validate.
// Postcondition: The mob has RoleMob and Health == min(t.Health, base health).
func (t *Template) Spawn() (*combat.Combatant, error) {
	block, err := stats.FromValues(t.Stats)
	if err != nil {
		return nil, fmt.Errorf("spawning %q: %w", t.ID, err)
	}
	mob, err := combat.NewCombatant(t.ID, t.Name, combat.RoleMob, t.Level, block, t.Health)
	if err != nil {
		return nil, fmt.Errorf("spawning %q: %w", t.ID, err)
	}
	mob.Race = t.Race
	return mob, nil
}

// LoadTemplateFromBytes parses and validates a single template.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing monster YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or validate failure.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading monster dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
