package quest_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/herobound/internal/game/dice"
	"github.com/cory-johannsen/herobound/internal/game/gameerr"
	"github.com/cory-johannsen/herobound/internal/game/hero"
	"github.com/cory-johannsen/herobound/internal/game/herolock"
	"github.com/cory-johannsen/herobound/internal/game/item"
	"github.com/cory-johannsen/herobound/internal/game/monster"
	"github.com/cory-johannsen/herobound/internal/game/quest"
	"github.com/cory-johannsen/herobound/internal/game/reward"
	"github.com/cory-johannsen/herobound/internal/game/stats"
)

const forestYAML = `
id: forest-of-shadows
name: Forest of Shadows
description: A dark forest where strange creatures lurk.
difficulty: 1
reward_exp: 100
reward_gold: 50
reward_items: [elven-bread]
board_size: 10
encounters:
  - position: 2
    type: monster
    monster:
      monster_id: wild-wolf
  - position: 4
    type: treasure
    treasure:
      gold: 20
      items: [elven-bread]
  - position: 6
    type: trap
    trap:
      name: Hidden Pit
      damage: 3
  - position: 8
    type: rest
    rest:
      heal_amount: 10
`

const heroID int64 = 1

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	tracker  *quest.Tracker
	heroes   *heroStore
	progress *progressStore
	inv      *inventory
}

func testHero() *hero.Hero {
	return &hero.Hero{
		ID: heroID, Name: "Aria", Race: "elf", Class: "ranger",
		Level: 1, Health: 15,
		Stats: stats.MustNew(5, 5, 5, 5, 5, 5),
	}
}

func testItems(t *testing.T) *item.Registry {
	t.Helper()
	reg, err := item.NewRegistry([]*item.Def{
		{ID: "elven-bread", Name: "Elven Bread", Kind: item.KindConsumable, Price: 5},
	})
	require.NoError(t, err)
	return reg
}

func testMonsters(t *testing.T, templates ...*monster.Template) *monster.Catalog {
	t.Helper()
	if templates == nil {
		templates = []*monster.Template{
			{ID: "wild-wolf", Name: "Wild Wolf", Level: 1, Health: 30, Stats: stats.Values{Strength: 3, Magic: 1, Agility: 4, Speed: 5, Charisma: 1, Luck: 2}},
			{ID: "bandit", Name: "Bandit", Level: 2, Health: 40, Stats: stats.Values{Strength: 5, Magic: 1, Agility: 4, Speed: 4, Charisma: 2, Luck: 3}},
		}
	}
	cat, err := monster.NewCatalog(templates)
	require.NoError(t, err)
	return cat
}

func testQuests(t *testing.T) *quest.Registry {
	t.Helper()
	q, err := quest.LoadQuestFromBytes([]byte(forestYAML))
	require.NoError(t, err)
	reg, err := quest.NewRegistry([]*quest.Quest{q})
	require.NoError(t, err)
	return reg
}

func newFixture(t *testing.T, src dice.Source, monsters *monster.Catalog, opts ...quest.Option) *fixture {
	t.Helper()
	items := testItems(t)
	f := &fixture{
		heroes: newHeroStore(testHero()),
		inv:    &inventory{},
	}
	f.progress = &progressStore{heroes: f.heroes, inv: f.inv}
	opts = append([]quest.Option{quest.WithClock(func() time.Time { return epoch })}, opts...)
	f.tracker = quest.NewTracker(quest.Deps{
		Quests:    testQuests(t),
		Heroes:    f.heroes,
		Progress:  f.progress,
		Monsters:  monsters,
		Items:     items,
		Generator: quest.NewGenerator(quest.DefaultWeights, items),
		Rewards:   reward.NewCalculator(),
		Locks:     herolock.New(),
		Source:    src,
		Logger:    zaptest.NewLogger(t),
	}, opts...)
	return f
}

func TestStartQuest(t *testing.T) {
	f := newFixture(t, fixedSrc{}, testMonsters(t))
	p, err := f.tracker.StartQuest(context.Background(), heroID, "forest-of-shadows")
	require.NoError(t, err)

	assert.NotZero(t, p.ID)
	assert.Equal(t, 0, p.CurrentPosition)
	assert.Equal(t, quest.StatusActive, p.Status())
	require.Len(t, p.Log, 1)
	assert.Equal(t, quest.EntryStart, p.Log[0].EncounterType)
	assert.Equal(t, "You begin your quest.", p.Log[0].Message)
	assert.Equal(t, epoch, p.Log[0].Timestamp)
}

func TestStartQuest_Duplicate(t *testing.T) {
	f := newFixture(t, fixedSrc{}, testMonsters(t))
	ctx := context.Background()
	_, err := f.tracker.StartQuest(ctx, heroID, "forest-of-shadows")
	require.NoError(t, err)

	_, err = f.tracker.StartQuest(ctx, heroID, "forest-of-shadows")
	assert.True(t, gameerr.IsDuplicateActiveQuest(err), "got %v", err)
}

func TestStartQuest_NotFound(t *testing.T) {
	f := newFixture(t, fixedSrc{}, testMonsters(t))
	ctx := context.Background()

	_, err := f.tracker.StartQuest(ctx, heroID, "no-such-quest")
	assert.True(t, gameerr.IsNotFound(err), "unknown quest: %v", err)

	_, err = f.tracker.StartQuest(ctx, 99, "forest-of-shadows")
	assert.True(t, gameerr.IsNotFound(err), "unknown hero: %v", err)
}

func TestAdvanceQuest_NoActiveQuest(t *testing.T) {
	f := newFixture(t, fixedSrc{}, testMonsters(t))
	_, err := f.tracker.AdvanceQuest(context.Background(), heroID, "forest-of-shadows")
	assert.True(t, gameerr.IsNoActiveQuest(err), "got %v", err)
}

func TestAdvanceQuest_FailedSaveGrantsNothing(t *testing.T) {
	f := newFixture(t, fixedSrc{}, testMonsters(t))
	ctx := context.Background()
	_, err := f.tracker.StartQuest(ctx, heroID, "forest-of-shadows")
	require.NoError(t, err)

	f.progress.failCommits = 1
	_, err = f.tracker.AdvanceQuest(ctx, heroID, "forest-of-shadows")
	require.Error(t, err)

	p, err := f.tracker.Progress(ctx, heroID, "forest-of-shadows")
	require.NoError(t, err)
	assert.Equal(t, 0, p.CurrentPosition)
	assert.Len(t, p.Log, 1)
	h := f.heroes.get(heroID)
	assert.Equal(t, 0, h.Money)
	assert.Equal(t, 0, h.Experience)

	// The retry pays the position-1 wolf exactly once.
	res, err := f.tracker.AdvanceQuest(ctx, heroID, "forest-of-shadows")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Progress.CurrentPosition)
	assert.Equal(t, quest.EncounterMonster, res.Entry.EncounterType)
	h = f.heroes.get(heroID)
	assert.Equal(t, quest.MonsterGoldPerLevel, h.Money)
	assert.Equal(t, quest.MonsterExperiencePerLevel, h.Experience)
}

// With every draw at zero each generated position is a monster at the
// hero's level, so the whole run is deterministic.
func TestAdvanceQuest_TenStepsCompletes(t *testing.T) {
	f := newFixture(t, fixedSrc{}, testMonsters(t))
	ctx := context.Background()
	_, err := f.tracker.StartQuest(ctx, heroID, "forest-of-shadows")
	require.NoError(t, err)

	want := []quest.EncounterType{
		quest.EncounterMonster, quest.EncounterMonster, quest.EncounterMonster,
		quest.EncounterTreasure, quest.EncounterMonster, quest.EncounterTrap,
		quest.EncounterMonster, quest.EncounterRest, quest.EncounterMonster,
		quest.EntryCompletion,
	}
	var last *quest.StepResult
	for i, typ := range want {
		res, err := f.tracker.AdvanceQuest(ctx, heroID, "forest-of-shadows")
		require.NoError(t, err, "step %d", i+1)
		assert.Equal(t, i+1, res.Progress.CurrentPosition)
		assert.Equal(t, typ, res.Entry.EncounterType, "step %d", i+1)
		assert.Equal(t, i == len(want)-1, res.Completed)
		if !res.Completed {
			require.NotNil(t, res.Encounter, "step %d", i+1)
			assert.Equal(t, typ, res.Encounter.Type)
			assert.Equal(t, i+1, res.Encounter.Position)
		}
		last = res
	}

	p := last.Progress
	assert.Equal(t, quest.StatusCompleted, p.Status())
	assert.False(t, p.IsActive)
	assert.Len(t, p.Log, 11)
	assert.Nil(t, last.Encounter)
	require.NotNil(t, last.Entry.Result.Completion)
	assert.Equal(t, 100, last.Entry.Result.Completion.Experience)
	assert.True(t, last.Entry.Result.Completion.LeveledUp)
	assert.Equal(t, "You completed the quest successfully!", last.Entry.Message)

	h := f.heroes.get(heroID)
	// Wolves at positions 1-5 reach 100 experience (level 2); bandits at
	// 7 and 9 give 100 more and completion pushes the hero to 200 (level 3).
	assert.Equal(t, 3, h.Level)
	assert.Equal(t, 0, h.Experience)
	assert.Equal(t, 15*4+20+30*2+50, h.Money)
	// Trap for 3, then a rest for 10 under the flat cap.
	assert.Equal(t, 22, h.Health)
	assert.Equal(t, stats.MustNew(9, 9, 9, 9, 5, 5), h.Stats)
	assert.Equal(t, []string{"elven-bread", "elven-bread"}, f.inv.of(heroID))

	_, err = f.tracker.AdvanceQuest(ctx, heroID, "forest-of-shadows")
	assert.True(t, gameerr.IsNoActiveQuest(err))
}

func TestAdvanceQuest_MonsterMessage(t *testing.T) {
	f := newFixture(t, fixedSrc{}, testMonsters(t))
	ctx := context.Background()
	_, err := f.tracker.StartQuest(ctx, heroID, "forest-of-shadows")
	require.NoError(t, err)

	res, err := f.tracker.AdvanceQuest(ctx, heroID, "forest-of-shadows")
	require.NoError(t, err)
	assert.Equal(t, "You encounter Wild Wolf (level 1). Prepare for battle!", res.Entry.Message)
	require.NotNil(t, res.Entry.Result.Monster)
	assert.Equal(t, quest.MonsterOutcome{
		MonsterID: "wild-wolf", Name: "Wild Wolf", Level: 1,
		Victory: true, Experience: 25, Gold: 15,
	}, *res.Entry.Result.Monster)
}

func TestAdvanceQuest_EmptyCatalogFallsBack(t *testing.T) {
	empty, err := monster.NewCatalog(nil)
	require.NoError(t, err)
	f := newFixture(t, fixedSrc{}, empty)
	ctx := context.Background()
	_, err = f.tracker.StartQuest(ctx, heroID, "forest-of-shadows")
	require.NoError(t, err)

	res, err := f.tracker.AdvanceQuest(ctx, heroID, "forest-of-shadows")
	require.NoError(t, err)
	assert.Equal(t, "Strange Creature", res.Entry.Result.Monster.Name)
	assert.Equal(t, 1, res.Entry.Result.Monster.Level)

	// Position 2 names wild-wolf explicitly, which the empty catalog lacks.
	_, err = f.tracker.AdvanceQuest(ctx, heroID, "forest-of-shadows")
	assert.True(t, gameerr.IsNotFound(err), "got %v", err)

	p, err := f.tracker.Progress(ctx, heroID, "forest-of-shadows")
	require.NoError(t, err)
	assert.Equal(t, 1, p.CurrentPosition, "failed step must not be persisted")
}

func TestAdvanceQuest_TrapFloorsHealthAtZero(t *testing.T) {
	f := newFixture(t, fixedSrc{}, testMonsters(t))
	h := testHero()
	h.Health = 2
	f.heroes.heroes[heroID] = *h
	ctx := context.Background()
	_, err := f.tracker.StartQuest(ctx, heroID, "forest-of-shadows")
	require.NoError(t, err)

	var trap *quest.StepResult
	for i := 0; i < 6; i++ {
		trap, err = f.tracker.AdvanceQuest(ctx, heroID, "forest-of-shadows")
		require.NoError(t, err)
	}
	require.NotNil(t, trap.Entry.Result.Trap)
	assert.Equal(t, "You are caught in Hidden Pit!", trap.Entry.Message)
	assert.Equal(t, 3, trap.Entry.Result.Trap.Damage)
	assert.Equal(t, 0, trap.Entry.Result.Trap.Health)
	assert.Equal(t, 0, f.heroes.get(heroID).Health)
}

func TestAdvanceQuest_RestCapZeroUsesBaseHealth(t *testing.T) {
	f := newFixture(t, fixedSrc{}, testMonsters(t), quest.WithRestHealCap(0))
	ctx := context.Background()
	_, err := f.tracker.StartQuest(ctx, heroID, "forest-of-shadows")
	require.NoError(t, err)

	var rest *quest.StepResult
	for i := 0; i < 8; i++ {
		rest, err = f.tracker.AdvanceQuest(ctx, heroID, "forest-of-shadows")
		require.NoError(t, err)
	}
	out := rest.Entry.Result.Rest
	require.NotNil(t, out)
	// Level 2 stats (7,7,7,7,5,5) give a base health of 19; the trap left 12.
	assert.Equal(t, 10, out.HealAmount)
	assert.Equal(t, 7, out.Healed)
	assert.Equal(t, 19, out.Health)
}

func TestAdvanceQuest_NarratorOverridesMessage(t *testing.T) {
	n := narrator{quest.EntryStart: "The trees close in.", quest.EncounterMonster: "Eyes in the dark."}
	f := newFixture(t, fixedSrc{}, testMonsters(t))
	f.tracker.Narrator = n
	ctx := context.Background()

	p, err := f.tracker.StartQuest(ctx, heroID, "forest-of-shadows")
	require.NoError(t, err)
	assert.Equal(t, "The trees close in.", p.Log[0].Message)

	res, err := f.tracker.AdvanceQuest(ctx, heroID, "forest-of-shadows")
	require.NoError(t, err)
	assert.Equal(t, "Eyes in the dark.", res.Entry.Message)
}

func TestAbandonQuest_Idempotent(t *testing.T) {
	f := newFixture(t, fixedSrc{}, testMonsters(t))
	ctx := context.Background()
	_, err := f.tracker.StartQuest(ctx, heroID, "forest-of-shadows")
	require.NoError(t, err)
	_, err = f.tracker.AdvanceQuest(ctx, heroID, "forest-of-shadows")
	require.NoError(t, err)
	before := f.heroes.get(heroID)

	require.NoError(t, f.tracker.AbandonQuest(ctx, heroID, "forest-of-shadows"))
	p, err := f.tracker.Progress(ctx, heroID, "forest-of-shadows")
	require.NoError(t, err)
	assert.Equal(t, quest.StatusAbandoned, p.Status())
	assert.Equal(t, 1, p.CurrentPosition)
	require.Len(t, p.Log, 3)
	assert.Equal(t, quest.EntryAbandon, p.Log[2].EncounterType)
	assert.Equal(t, "You abandoned the quest.", p.Log[2].Message)

	err = f.tracker.AbandonQuest(ctx, heroID, "forest-of-shadows")
	assert.True(t, gameerr.IsNoActiveQuest(err), "got %v", err)
	again, err := f.tracker.Progress(ctx, heroID, "forest-of-shadows")
	require.NoError(t, err)
	assert.Equal(t, p, again)
	assert.Equal(t, before, f.heroes.get(heroID), "abandon grants nothing")
}

func TestAbandonQuest_ThenRestart(t *testing.T) {
	f := newFixture(t, fixedSrc{}, testMonsters(t))
	ctx := context.Background()
	first, err := f.tracker.StartQuest(ctx, heroID, "forest-of-shadows")
	require.NoError(t, err)
	require.NoError(t, f.tracker.AbandonQuest(ctx, heroID, "forest-of-shadows"))

	second, err := f.tracker.StartQuest(ctx, heroID, "forest-of-shadows")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	latest, err := f.tracker.Progress(ctx, heroID, "forest-of-shadows")
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
}

func TestProgress_NeverStarted(t *testing.T) {
	f := newFixture(t, fixedSrc{}, testMonsters(t))
	_, err := f.tracker.Progress(context.Background(), heroID, "forest-of-shadows")
	assert.True(t, gameerr.IsNotFound(err), "got %v", err)
}

func TestActiveQuests(t *testing.T) {
	f := newFixture(t, fixedSrc{}, testMonsters(t))
	ctx := context.Background()

	active, err := f.tracker.ActiveQuests(ctx, heroID)
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = f.tracker.StartQuest(ctx, heroID, "forest-of-shadows")
	require.NoError(t, err)
	active, err = f.tracker.ActiveQuests(ctx, heroID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Forest of Shadows", active[0].Quest.Name)
}

func TestAdvanceQuest_ConcurrentStepsAreSerialised(t *testing.T) {
	f := newFixture(t, dice.NewSeededSource(7), testMonsters(t))
	ctx := context.Background()
	_, err := f.tracker.StartQuest(ctx, heroID, "forest-of-shadows")
	require.NoError(t, err)

	const steps = 5
	var wg sync.WaitGroup
	for i := 0; i < steps; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.tracker.AdvanceQuest(ctx, heroID, "forest-of-shadows")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	p, err := f.tracker.Progress(ctx, heroID, "forest-of-shadows")
	require.NoError(t, err)
	assert.Equal(t, steps, p.CurrentPosition)
	require.Len(t, p.Log, steps+1)
	for i, e := range p.Log {
		assert.Equal(t, i, e.Position)
	}
}
