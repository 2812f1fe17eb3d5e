package combat

import "github.com/cory-johannsen/herobound/internal/game/dice"

// jitterSteps gives initiative jitter a resolution of 0.01 across [0, 10).
const jitterSteps = 1000

// RollInitiative returns speed plus a uniform jitter in [0, 10).
//
// Precondition: src must be non-nil.
func RollInitiative(c *Combatant, src dice.Source) float64 {
	return float64(c.Stats.Speed()) + float64(src.Intn(jitterSteps))/100
}

// turnOrder returns the two combatants in attack order. The hero only goes
// first when its roll is strictly higher; ties favour the opponent.
func turnOrder(hero, opponent *Combatant, heroRoll, opponentRoll float64) [2]*Combatant {
	if heroRoll > opponentRoll {
		return [2]*Combatant{hero, opponent}
	}
	return [2]*Combatant{opponent, hero}
}
