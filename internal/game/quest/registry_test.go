package quest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/herobound/internal/game/gameerr"
	"github.com/cory-johannsen/herobound/internal/game/quest"
)

func questAt(id string, difficulty int) *quest.Quest {
	return &quest.Quest{ID: id, Name: id, Difficulty: difficulty, BoardSize: 5}
}

func TestLoadQuestFromBytes(t *testing.T) {
	q, err := quest.LoadQuestFromBytes([]byte(forestYAML))
	require.NoError(t, err)
	assert.Equal(t, "forest-of-shadows", q.ID)
	assert.Equal(t, 10, q.BoardSize)
	require.Len(t, q.Encounters, 4)

	enc, ok := q.EncounterAt(6)
	require.True(t, ok)
	assert.Equal(t, quest.EncounterTrap, enc.Type)
	assert.Equal(t, "Hidden Pit", enc.Trap.Name)

	_, ok = q.EncounterAt(5)
	assert.False(t, ok)
}

func TestQuest_ValidateRejects(t *testing.T) {
	cases := map[string]func(q *quest.Quest){
		"difficulty zero":    func(q *quest.Quest) { q.Difficulty = 0 },
		"difficulty eleven":  func(q *quest.Quest) { q.Difficulty = 11 },
		"empty board":        func(q *quest.Quest) { q.BoardSize = 0 },
		"position zero":      func(q *quest.Quest) { q.Encounters[0].Position = 0 },
		"position on finish": func(q *quest.Quest) { q.Encounters[0].Position = q.BoardSize },
		"duplicate position": func(q *quest.Quest) { q.Encounters[1].Position = q.Encounters[0].Position },
		"payload mismatch": func(q *quest.Quest) {
			q.Encounters[0].Monster = nil
			q.Encounters[0].Rest = &quest.RestEncounter{HealAmount: 1}
		},
		"two payloads":    func(q *quest.Quest) { q.Encounters[0].Rest = &quest.RestEncounter{HealAmount: 1} },
		"bad dice":        func(q *quest.Quest) { q.Encounters[2].Trap.DamageDice = "3x7" },
		"too many dice":   func(q *quest.Quest) { q.Encounters[2].Trap.DamageDice = "99999999999999d6" },
		"unknown type":    func(q *quest.Quest) { q.Encounters[3].Type = "portal" },
		"negative reward": func(q *quest.Quest) { q.RewardGold = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			q, err := quest.LoadQuestFromBytes([]byte(forestYAML))
			require.NoError(t, err)
			mutate(q)
			assert.Error(t, q.Validate())
		})
	}
}

func TestLoadQuests_ResolvesScriptPath(t *testing.T) {
	dir := t.TempDir()
	data := forestYAML + "script: forest.lua\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "forest.yaml"), []byte(data), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("ignored"), 0644))

	quests, err := quest.LoadQuests(dir)
	require.NoError(t, err)
	require.Len(t, quests, 1)
	assert.Equal(t, filepath.Join(dir, "forest.lua"), quests[0].Script)
}

func TestRegistry_Lookup(t *testing.T) {
	reg, err := quest.NewRegistry([]*quest.Quest{questAt("b", 3), questAt("a", 3), questAt("c", 1)})
	require.NoError(t, err)

	q, err := reg.Quest("a")
	require.NoError(t, err)
	assert.Equal(t, "a", q.ID)

	_, err = reg.Quest("zzz")
	assert.True(t, gameerr.IsNotFound(err))

	var ids []string
	for _, q := range reg.All() {
		ids = append(ids, q.ID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)

	_, err = quest.NewRegistry([]*quest.Quest{questAt("a", 1), questAt("a", 2)})
	assert.Error(t, err)
}

func TestRegistry_ForHeroLevel(t *testing.T) {
	reg, err := quest.NewRegistry([]*quest.Quest{
		questAt("forest", 1), questAt("caverns", 3), questAt("ruins", 5),
		questAt("tower", 7), questAt("lair", 10),
	})
	require.NoError(t, err)

	ids := func(qs []*quest.Quest) []string {
		var out []string
		for _, q := range qs {
			out = append(out, q.ID)
		}
		return out
	}
	assert.Equal(t, []string{"forest", "caverns"}, ids(reg.ForHeroLevel(1)))
	assert.Equal(t, []string{"caverns", "ruins", "tower"}, ids(reg.ForHeroLevel(5)))
	assert.Equal(t, []string{"lair"}, ids(reg.ForHeroLevel(12)))
	assert.Empty(t, reg.ForHeroLevel(20))
}

func TestRegistry_CheckReferences(t *testing.T) {
	assert.NoError(t, testQuests(t).CheckReferences(testMonsters(t), testItems(t)))

	q, err := quest.LoadQuestFromBytes([]byte(forestYAML))
	require.NoError(t, err)
	q.RewardItems = []string{"crown-of-ages"}
	q.Encounters[0].Monster.MonsterID = "kraken"
	reg, err := quest.NewRegistry([]*quest.Quest{q})
	require.NoError(t, err)

	err = reg.CheckReferences(testMonsters(t), testItems(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crown-of-ages")
	assert.Contains(t, err.Error(), "kraken")
}

func TestProgress_Status(t *testing.T) {
	var none *quest.Progress
	assert.Equal(t, quest.StatusNotStarted, none.Status())
	assert.Equal(t, quest.StatusActive, (&quest.Progress{IsActive: true}).Status())
	assert.Equal(t, quest.StatusCompleted, (&quest.Progress{IsCompleted: true}).Status())
	assert.Equal(t, quest.StatusAbandoned, (&quest.Progress{}).Status())
}
