package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/herobound/internal/app"
	"github.com/cory-johannsen/herobound/internal/config"
	"github.com/cory-johannsen/herobound/internal/game/arena"
	"github.com/cory-johannsen/herobound/internal/game/dice"
	"github.com/cory-johannsen/herobound/internal/game/hero"
	"github.com/cory-johannsen/herobound/internal/game/quest"
	"github.com/cory-johannsen/herobound/internal/game/stats"
)

func repoConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.LoadFromViper(config.Defaults())
	require.NoError(t, err)
	root := filepath.Join("..", "..", "content")
	cfg.Game.MonstersDir = filepath.Join(root, "monsters")
	cfg.Game.ItemsDir = filepath.Join(root, "items")
	cfg.Game.QuestsDir = filepath.Join(root, "quests")
	cfg.Storage = config.StorageConfig{Backend: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "hero.db")}
	return cfg
}

func TestLoadContent_ShippedContent(t *testing.T) {
	cfg := repoConfig(t)
	c, err := app.LoadContent(cfg.Game, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.Equal(t, 16, c.Monsters.Len())
	assert.Equal(t, 30, c.Items.Len())
	require.Len(t, c.Quests.All(), 5)

	forest, err := c.Quests.Quest("forest-of-shadows")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.Game.QuestsDir, "forest-of-shadows.lua"), forest.Script)
}

func TestLoadContent_DanglingReferences(t *testing.T) {
	dir := t.TempDir()
	for _, sub := range []string{"monsters", "items", "quests"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, sub), 0o755))
	}
	write := func(path, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, path), []byte(body), 0o644))
	}
	write("items/misc.yaml", "items:\n  - id: rope\n    name: Rope\n    kind: accessory\n")
	write("monsters/rat.yaml", `
id: rat
name: Rat
level: 1
health: 5
stats: {strength: 1, magic: 0, agility: 1, speed: 2, charisma: 0, luck: 1}
loot:
  items:
    - item: cheese
      chance: 50
`)
	write("quests/cellar.yaml", `
id: cellar
name: Cellar
difficulty: 1
board_size: 3
reward_items: [golden-key]
encounters:
  - position: 1
    type: monster
    monster:
      monster_id: giant-rat
`)

	_, err := app.LoadContent(config.GameConfig{
		MonstersDir: filepath.Join(dir, "monsters"),
		ItemsDir:    filepath.Join(dir, "items"),
		QuestsDir:   filepath.Join(dir, "quests"),
	}, zaptest.NewLogger(t))
	require.Error(t, err)
	for _, want := range []string{"golden-key", "giant-rat", "cheese"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestNew_WiresServices(t *testing.T) {
	ctx := context.Background()
	a, err := app.New(ctx, repoConfig(t), zaptest.NewLogger(t), app.WithSource(dice.NewSeededSource(7)))
	require.NoError(t, err)
	defer a.Close()

	h, err := hero.Build("Ronan", "human", "warrior", stats.Values{Strength: 50, Magic: 5, Agility: 50, Speed: 20, Charisma: 5, Luck: 10})
	require.NoError(t, err)
	require.NoError(t, a.Store.CreateHero(ctx, h))

	rec, err := a.Arena.Battle(ctx, h.ID, arena.Opponent{Type: arena.OpponentMob, ID: "wild-wolf"})
	require.NoError(t, err)
	assert.Equal(t, h.ID, rec.WinnerID)
	assert.Equal(t, 20, rec.RewardExp)
	assert.Equal(t, 5, rec.RewardGold)

	history, err := a.Arena.History(ctx, h.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, rec.UID, history[0].UID)

	p, err := a.Tracker.StartQuest(ctx, h.ID, "forest-of-shadows")
	require.NoError(t, err)
	assert.Equal(t, "The trees close in behind you as you enter the Forest of Shadows.", p.Log[0].Message,
		"the quest script narrates the start")

	var step *quest.StepResult
	for i := 0; i < 10; i++ {
		step, err = a.Tracker.AdvanceQuest(ctx, h.ID, "forest-of-shadows")
		require.NoError(t, err)
	}
	assert.True(t, step.Completed)
	p = step.Progress
	assert.True(t, p.IsCompleted)
	assert.False(t, p.IsActive)
	last := p.Log[len(p.Log)-1]
	assert.Equal(t, quest.EntryCompletion, last.EncounterType)
	assert.Equal(t, "You step out of the forest, the shadows finally behind you.", last.Message)

	items, err := a.Store.Items(ctx, h.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, items["healing-potion"], 2, "treasure plus quest reward")
	assert.GreaterOrEqual(t, items["mana-elixir"], 1)
}
