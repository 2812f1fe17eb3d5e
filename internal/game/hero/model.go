// Package hero defines the persistent hero aggregate and its projection into
// combat types.
package hero

import (
	"strconv"
	"time"

	"github.com/cory-johannsen/herobound/internal/game/combat"
	"github.com/cory-johannsen/herobound/internal/game/stats"
)

// Hero is a player's persistent character.
//
// ID is set by the persistence layer; zero indicates an unsaved hero.
type Hero struct {
	ID int64 `json:"id"`

	Name  string `json:"name"`
	Race  string `json:"race"`
	Class string `json:"class"`

	Level      int         `json:"level"`
	Experience int         `json:"experience"`
	Money      int         `json:"money"`
	Health     int         `json:"health"`
	Stats      stats.Block `json:"stats"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CombatantID formats a hero id the way combatants and battle logs carry it.
func CombatantID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Combatant projects the hero into a fresh hero-role Combatant.
//
// Postcondition: The Combatant's health is clamped to the derived base health.
func (h *Hero) Combatant() (*combat.Combatant, error) {
	c, err := combat.NewCombatant(CombatantID(h.ID), h.Name, combat.RoleHero, h.Level, h.Stats, h.Health)
	if err != nil {
		return nil, err
	}
	c.Race, c.Class = h.Race, h.Class
	return c, nil
}

// State returns the hero's money and experience as a HeroState.
func (h *Hero) State() *combat.HeroState {
	return &combat.HeroState{Money: h.Money, Experience: h.Experience}
}

// Absorb writes combat results back into the hero.
//
// Precondition: c must have been produced by h.Combatant; s by h.State.
func (h *Hero) Absorb(c *combat.Combatant, s *combat.HeroState) {
	h.Level = c.Level
	h.Stats = c.Stats
	h.Health = c.Health
	h.Money = s.Money
	h.Experience = s.Experience
}
