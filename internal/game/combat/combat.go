// Package combat implements the two-party alternating-turn battle engine.
package combat

import (
	"fmt"

	"github.com/cory-johannsen/herobound/internal/game/dice"
	"github.com/cory-johannsen/herobound/internal/game/gameerr"
	"github.com/cory-johannsen/herobound/internal/game/stats"
)

// Role distinguishes the reward-receiving hero from an ephemeral mob.
type Role int

const (
	RoleHero Role = iota
	RoleMob
)

// String returns "hero" or "mob".
func (r Role) String() string {
	switch r {
	case RoleHero:
		return "hero"
	case RoleMob:
		return "mob"
	default:
		return "unknown"
	}
}

// MarshalText encodes the role as its string form.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes "hero" or "mob".
func (r *Role) UnmarshalText(text []byte) error {
	switch string(text) {
	case "hero":
		*r = RoleHero
	case "mob":
		*r = RoleMob
	default:
		return fmt.Errorf("combat: unknown role %q", text)
	}
	return nil
}

// Combatant is one side of a battle.
//
// Invariant: 0 <= Health <= Stats.BaseHealth(); Level >= 1.
type Combatant struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Race   string      `json:"race,omitempty"`
	Class  string      `json:"class,omitempty"`
	Role   Role        `json:"role"`
	Level  int         `json:"level"`
	Stats  stats.Block `json:"stats"`
	Health int         `json:"health"`
}

// NewCombatant builds a Combatant, clamping health into [0, base health].
//
// Precondition: level >= 1.
// Postcondition: Returns a Combatant satisfying the type invariant or a *gameerr.PreconditionError.
func NewCombatant(id, name string, role Role, level int, block stats.Block, health int) (*Combatant, error) {
	if level < 1 {
		return nil, gameerr.Precondition("combatant", "level must be >= 1, got %d", level)
	}
	c := &Combatant{ID: id, Name: name, Role: role, Level: level, Stats: block}
	c.Health = clamp(health, 0, block.BaseHealth())
	return c, nil
}

// MaxHealth returns the combatant's derived base health.
func (c *Combatant) MaxHealth() int { return c.Stats.BaseHealth() }

// IsDead reports whether health has reached zero.
func (c *Combatant) IsDead() bool { return c.Health <= 0 }

// IsAlive is the negation of IsDead.
func (c *Combatant) IsAlive() bool { return !c.IsDead() }

// ApplyDamage reduces health by amount, flooring at zero.
//
// Precondition: amount >= 0.
func (c *Combatant) ApplyDamage(amount int) {
	c.Health = clamp(c.Health-amount, 0, c.Health)
}

// Heal raises health by amount without exceeding ceiling. It returns the amount actually healed.
//
// Precondition: amount >= 0.
// Postcondition: Health <= max(ceiling, previous Health).
func (c *Combatant) Heal(amount, ceiling int) int {
	before := c.Health
	if c.Health >= ceiling {
		return 0
	}
	c.Health = min(c.Health+amount, ceiling)
	return c.Health - before
}

// HeroState holds the hero-only counters that sit next to a hero Combatant.
//
// Invariant: Money >= 0 and Experience >= 0.
type HeroState struct {
	Money      int `json:"money"`
	Experience int `json:"experience"`
}

// AttackResult is the outcome of one attack roll.
type AttackResult struct {
	Damage   int  `json:"damage"`
	Critical bool `json:"critical"`
}

// DefenseResult is the outcome of absorbing one attack.
type DefenseResult struct {
	DamageTaken  int  `json:"damageTaken"`
	PartialDodge bool `json:"partialDodge"`
}

// Attack rolls one attack. A critical hit fires with probability luck/100 and
// doubles the attack power.
//
// Precondition: src must be non-nil.
func (c *Combatant) Attack(src dice.Source) AttackResult {
	damage := c.Stats.AttackPower()
	crit := dice.Chance(src, c.Stats.Luck())
	if crit {
		damage *= 2
	}
	return AttackResult{Damage: damage, Critical: crit}
}

// Defend absorbs incoming damage. A partial dodge fires with probability
// defensePower/100 and halves the damage, rounding half up. Health floors at zero.
//
// Precondition: incoming >= 0; src must be non-nil.
func (c *Combatant) Defend(incoming int, src dice.Source) DefenseResult {
	taken := incoming
	dodge := dice.Chance(src, c.Stats.DefensePower())
	if dodge {
		taken = (incoming + 1) / 2
	}
	c.ApplyDamage(taken)
	return DefenseResult{DamageTaken: taken, PartialDodge: dodge}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
