package monster_test

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/herobound/internal/game/combat"
	"github.com/cory-johannsen/herobound/internal/game/gameerr"
	"github.com/cory-johannsen/herobound/internal/game/monster"
	"github.com/cory-johannsen/herobound/internal/game/stats"
)

type fixedSrc struct{ val int }

func (f fixedSrc) Intn(n int) int {
	if f.val >= n {
		return n - 1
	}
	return f.val
}

const wolfYAML = `
id: wild-wolf
name: Wild Wolf
description: A starving wolf prowling the forest.
race: beast
level: 1
health: 30
stats:
  strength: 3
  magic: 1
  agility: 4
  speed: 5
  charisma: 1
  luck: 2
loot:
  items:
    - item: elven-bread
      chance: 50
`

func tmpl(id string, level int) *monster.Template {
	return &monster.Template{
		ID: id, Name: id, Level: level, Health: 10,
		Stats: stats.Values{Strength: 1, Agility: 1, Luck: 1},
	}
}

func TestLoadTemplateFromBytes(t *testing.T) {
	tm, err := monster.LoadTemplateFromBytes([]byte(wolfYAML))
	require.NoError(t, err)
	assert.Equal(t, "wild-wolf", tm.ID)
	assert.Equal(t, 1, tm.Level)
	assert.Equal(t, 4, tm.Stats.Agility)
	require.NotNil(t, tm.Loot)
	assert.Equal(t, "elven-bread", tm.Loot.Items[0].ItemID)
}

func TestTemplate_ValidateRejects(t *testing.T) {
	cases := map[string]*monster.Template{
		"empty id":      {Name: "x", Level: 1, Health: 1, Stats: stats.Values{Luck: 1}},
		"empty name":    {ID: "x", Level: 1, Health: 1, Stats: stats.Values{Luck: 1}},
		"level zero":    {ID: "x", Name: "x", Health: 1, Stats: stats.Values{Luck: 1}},
		"no health":     {ID: "x", Name: "x", Level: 1, Stats: stats.Values{Luck: 1}},
		"negative stat": {ID: "x", Name: "x", Level: 1, Health: 1, Stats: stats.Values{Luck: -1}},
		"zero base":     {ID: "x", Name: "x", Level: 1, Health: 1, Stats: stats.Values{Magic: 5}},
		"bad loot": {ID: "x", Name: "x", Level: 1, Health: 1, Stats: stats.Values{Luck: 1},
			Loot: &monster.LootTable{Items: []monster.ItemDrop{{ItemID: "a", Chance: 0}}}},
	}
	for name, tm := range cases {
		assert.Error(t, tm.Validate(), name)
	}
}

func TestSpawn_ClampsHealthToBaseHealth(t *testing.T) {
	tm, err := monster.LoadTemplateFromBytes([]byte(wolfYAML))
	require.NoError(t, err)
	mob, err := tm.Spawn()
	require.NoError(t, err)
	assert.Equal(t, combat.RoleMob, mob.Role)
	assert.Equal(t, "Wild Wolf", mob.Name)
	assert.Equal(t, 9, mob.Health, "strength 3 + agility 4 + luck 2")

	again, err := tm.Spawn()
	require.NoError(t, err)
	assert.NotSame(t, mob, again)
}

func TestLoadTemplates_Dir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wolf.yaml"), []byte(wolfYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	all, err := monster.LoadTemplates(dir)
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("id: x\n"), 0o644))
	_, err = monster.LoadTemplates(dir)
	assert.Error(t, err)

	_, err = monster.LoadTemplates(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestCatalog_ByID(t *testing.T) {
	c, err := monster.NewCatalog([]*monster.Template{tmpl("a", 1), tmpl("b", 2)})
	require.NoError(t, err)

	got, err := c.ByID("b")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Level)

	_, err = c.ByID("zzz")
	assert.True(t, gameerr.IsNotFound(err))

	_, err = monster.NewCatalog([]*monster.Template{tmpl("a", 1), tmpl("a", 2)})
	assert.Error(t, err)
}

func TestCatalog_NearestLevel_SameLevel(t *testing.T) {
	c, err := monster.NewCatalog([]*monster.Template{tmpl("a", 1), tmpl("b", 3), tmpl("c", 3), tmpl("d", 5)})
	require.NoError(t, err)
	first, ok := c.NearestLevel(3, fixedSrc{val: 0})
	require.True(t, ok)
	last, _ := c.NearestLevel(3, fixedSrc{val: 99})
	assert.Equal(t, "b", first.ID)
	assert.Equal(t, "c", last.ID)
}

func TestCatalog_NearestLevel_ClosestThree(t *testing.T) {
	c, err := monster.NewCatalog([]*monster.Template{
		tmpl("l1", 1), tmpl("l2", 2), tmpl("l6", 6), tmpl("l9", 9), tmpl("l10", 10),
	})
	require.NoError(t, err)
	seen := map[string]bool{}
	for v := 0; v < 3; v++ {
		got, ok := c.NearestLevel(4, fixedSrc{val: v})
		require.True(t, ok)
		seen[got.ID] = true
	}
	assert.Equal(t, map[string]bool{"l2": true, "l6": true, "l1": true}, seen)
}

func TestCatalog_NearestLevel_Empty(t *testing.T) {
	c, err := monster.NewCatalog(nil)
	require.NoError(t, err)
	_, ok := c.NearestLevel(1, fixedSrc{})
	assert.False(t, ok)
}

func TestPropertyNearestLevelIsWithinClosestDistance(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		levels := rapid.SliceOfN(rapid.IntRange(1, 20), 1, 15).Draw(rt, "levels")
		var ts []*monster.Template
		for i, l := range levels {
			ts = append(ts, tmpl(string(rune('a'+i)), l))
		}
		c, err := monster.NewCatalog(ts)
		require.NoError(rt, err)
		want := rapid.IntRange(1, 20).Draw(rt, "want")
		pick := rapid.IntRange(0, 99).Draw(rt, "pick")

		got, ok := c.NearestLevel(want, fixedSrc{val: pick})
		require.True(rt, ok)

		// The pick is never further than the third-closest template.
		dists := make([]int, 0, len(levels))
		for _, l := range levels {
			d := l - want
			if d < 0 {
				d = -d
			}
			dists = append(dists, d)
		}
		slices.Sort(dists)
		gd := got.Level - want
		if gd < 0 {
			gd = -gd
		}
		bound := dists[min(2, len(dists)-1)]
		if dists[0] == 0 {
			bound = 0
		}
		if gd > bound {
			rt.Fatalf("picked level %d (distance %d) beyond bound %d", got.Level, gd, bound)
		}
	})
}

func TestLootTable_Roll(t *testing.T) {
	lt := &monster.LootTable{Items: []monster.ItemDrop{{ItemID: "a", Chance: 50}, {ItemID: "b", Chance: 100}}}
	assert.Equal(t, []string{"a", "b"}, lt.Roll(fixedSrc{val: 0}))
	assert.Equal(t, []string{"b"}, lt.Roll(fixedSrc{val: 99}))
	var none *monster.LootTable
	assert.Nil(t, none.Roll(fixedSrc{}))
}
