// Package reward computes experience and gold payouts and applies leveling.
package reward

import (
	"github.com/cory-johannsen/herobound/internal/game/combat"
)

const (
	// ExperiencePerLevel is the battle experience granted per opponent level.
	ExperiencePerLevel = 20
	// GoldPerLevel is the battle gold granted per opponent level.
	GoldPerLevel = 5
	// ThresholdPerLevel is multiplied by the hero's level to get the experience needed to level up.
	ThresholdPerLevel = 100
)

// Grant is a payout before it is applied to a hero.
type Grant struct {
	Experience int      `json:"experience"`
	Gold       int      `json:"gold"`
	Items      []string `json:"items,omitempty"`
}

// Calculator implements combat.Rewarder and is shared by the quest tracker.
type Calculator struct{}

// NewCalculator returns a Calculator.
func NewCalculator() *Calculator { return &Calculator{} }

// ForVictory returns the battle payout for defeating an opponent of the given level.
//
// Postcondition: Experience == level*20, Gold == level*5.
func (c *Calculator) ForVictory(opponentLevel int) Grant {
	return Grant{
		Experience: opponentLevel * ExperiencePerLevel,
		Gold:       opponentLevel * GoldPerLevel,
	}
}

// Loot previews the payout for an opponent level without applying it.
func (c *Calculator) Loot(opponentLevel int) Grant {
	return c.ForVictory(opponentLevel)
}

// Apply credits g to the hero. When experience reaches level*100 the hero
// gains exactly one level, experience resets to zero and the surplus is
// discarded.
//
// Precondition: hero and purse must be non-nil; g amounts must be >= 0.
// Postcondition: purse.Money and purse.Experience stay >= 0.
func (c *Calculator) Apply(hero *combat.Combatant, purse *combat.HeroState, g Grant) combat.Reward {
	purse.Money += g.Gold
	purse.Experience += g.Experience

	out := combat.Reward{
		Experience: g.Experience,
		Gold:       g.Gold,
		Items:      g.Items,
		Level:      hero.Level,
	}
	if purse.Experience >= hero.Level*ThresholdPerLevel {
		hero.Level++
		purse.Experience = 0
		hero.Stats = hero.Stats.LevelUp()
		out.LeveledUp = true
		out.Level = hero.Level
	}
	return out
}

// Reward implements combat.Rewarder.
func (c *Calculator) Reward(hero *combat.Combatant, purse *combat.HeroState, opponentLevel int) combat.Reward {
	return c.Apply(hero, purse, c.ForVictory(opponentLevel))
}
