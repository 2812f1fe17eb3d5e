package hero_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/herobound/internal/game/combat"
	"github.com/cory-johannsen/herobound/internal/game/hero"
	"github.com/cory-johannsen/herobound/internal/game/stats"
)

func TestBuild(t *testing.T) {
	h, err := hero.Build(" Aria ", "elf", "mage", stats.Values{Strength: 4, Magic: 8, Agility: 3, Speed: 5, Charisma: 6, Luck: 6})
	require.NoError(t, err)
	assert.Equal(t, "Aria", h.Name)
	assert.Equal(t, 1, h.Level)
	assert.Equal(t, 13, h.Health)
	assert.Zero(t, h.Money)
	assert.Zero(t, h.ID)
}

func TestBuild_RejectsInvalid(t *testing.T) {
	_, err := hero.Build("", "elf", "mage", stats.Values{Strength: 0, Magic: 101, Agility: 1, Speed: 1, Charisma: 1, Luck: 1})
	require.Error(t, err)
	assert.Equal(t, "building hero: name must not be empty\n"+
		"strength must be in [1, 100], got 0\n"+
		"magic must be in [1, 100], got 101", err.Error())
}

func TestCombatantRoundTrip(t *testing.T) {
	h := &hero.Hero{ID: 42, Name: "Aria", Race: "elf", Class: "mage", Level: 4,
		Health: 50, Money: 7, Experience: 390, Stats: stats.MustNew(4, 8, 3, 5, 6, 6)}

	c, err := h.Combatant()
	require.NoError(t, err)
	assert.Equal(t, "42", c.ID)
	assert.Equal(t, combat.RoleHero, c.Role)
	assert.Equal(t, 13, c.Health, "clamped to base health")
	assert.Equal(t, "elf", c.Race)

	s := h.State()
	c.Level = 5
	c.Stats = c.Stats.LevelUp()
	c.Health = 2
	s.Money = 20
	s.Experience = 0
	h.Absorb(c, s)

	assert.Equal(t, 5, h.Level)
	assert.Equal(t, 2, h.Health)
	assert.Equal(t, 20, h.Money)
	assert.Equal(t, 0, h.Experience)
	assert.Equal(t, 6, h.Stats.Strength())
}

func TestCombatant_InvalidLevel(t *testing.T) {
	h := &hero.Hero{Name: "x", Level: 0, Stats: stats.MustNew(1, 1, 1, 1, 1, 1)}
	_, err := h.Combatant()
	assert.Error(t, err)
}
