package app

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/herobound/internal/config"
	"github.com/cory-johannsen/herobound/internal/game/item"
	"github.com/cory-johannsen/herobound/internal/game/monster"
	"github.com/cory-johannsen/herobound/internal/game/quest"
)

// Content is the static game data loaded from YAML.
type Content struct {
	Monsters *monster.Catalog
	Items    *item.Registry
	Quests   *quest.Registry
}

// LoadContent reads the monster, item and quest directories named by g and
// cross-checks every id they reference.
//
// Postcondition: Returns fully resolved Content or an error naming every
// dangling reference.
func LoadContent(g config.GameConfig, logger *zap.Logger) (*Content, error) {
	start := time.Now()

	defs, err := item.LoadItems(g.ItemsDir)
	if err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}
	items, err := item.NewRegistry(defs)
	if err != nil {
		return nil, fmt.Errorf("registering items: %w", err)
	}

	templates, err := monster.LoadTemplates(g.MonstersDir)
	if err != nil {
		return nil, fmt.Errorf("loading monsters: %w", err)
	}
	monsters, err := monster.NewCatalog(templates)
	if err != nil {
		return nil, fmt.Errorf("registering monsters: %w", err)
	}

	quests, err := quest.LoadQuests(g.QuestsDir)
	if err != nil {
		return nil, fmt.Errorf("loading quests: %w", err)
	}
	registry, err := quest.NewRegistry(quests)
	if err != nil {
		return nil, fmt.Errorf("registering quests: %w", err)
	}

	if err := errors.Join(registry.CheckReferences(monsters, items), checkLoot(monsters, items)); err != nil {
		return nil, fmt.Errorf("content references: %w", err)
	}

	logger.Info("content loaded",
		zap.Int("items", items.Len()),
		zap.Int("monsters", monsters.Len()),
		zap.Int("quests", len(registry.All())),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &Content{Monsters: monsters, Items: items, Quests: registry}, nil
}

func checkLoot(monsters *monster.Catalog, items *item.Registry) error {
	var errs []error
	for _, t := range monsters.All() {
		if t.Loot == nil {
			continue
		}
		for _, drop := range t.Loot.Items {
			if _, err := items.Item(drop.ItemID); err != nil {
				errs = append(errs, fmt.Errorf("monster %q: loot item %q not found", t.ID, drop.ItemID))
			}
		}
	}
	return errors.Join(errs...)
}
