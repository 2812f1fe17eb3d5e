package monster

import (
	"fmt"

	"github.com/cory-johannsen/herobound/internal/game/dice"
)

// ItemDrop is one possible item drop with a percent chance.
type ItemDrop struct {
	ItemID string `yaml:"item"`
	// Chance is the drop probability in percent, 1..100.
	Chance int `yaml:"chance"`
}

// LootTable lists the extra items a monster may drop when a hero defeats it in battle.
type LootTable struct {
	Items []ItemDrop `yaml:"items"`
}

// Validate checks that every drop names an item and has a chance in 1..100.
func (lt *LootTable) Validate() error {
	for i, item := range lt.Items {
		if item.ItemID == "" {
			return fmt.Errorf("loot table: item[%d] must have a non-empty item id", i)
		}
		if item.Chance < 1 || item.Chance > 100 {
			return fmt.Errorf("loot table: item[%d] chance must be in [1, 100], got %d", i, item.Chance)
		}
	}
	return nil
}

// Roll returns the ids of the items that dropped.
//
// Precondition: lt must have passed Validate; src must be non-nil.
func (lt *LootTable) Roll(src dice.Source) []string {
	if lt == nil {
		return nil
	}
	var out []string
	for _, item := range lt.Items {
		if dice.Chance(src, item.Chance) {
			out = append(out, item.ItemID)
		}
	}
	return out
}
