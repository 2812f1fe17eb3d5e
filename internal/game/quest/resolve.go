package quest

import (
	"fmt"

	"github.com/cory-johannsen/herobound/internal/game/combat"
	"github.com/cory-johannsen/herobound/internal/game/dice"
	"github.com/cory-johannsen/herobound/internal/game/hero"
	"github.com/cory-johannsen/herobound/internal/game/reward"
)

const (
	// MonsterExperiencePerLevel is the experience for an auto-resolved monster, per monster level.
	MonsterExperiencePerLevel = 25
	// MonsterGoldPerLevel is the gold for an auto-resolved monster, per monster level.
	MonsterGoldPerLevel = 15
)

// strangeCreature stands in when the monster catalog has nothing to offer.
const strangeCreature = "Strange Creature"

// resolve applies enc to h and builds the log entry. It returns the item ids
// to hand to the inventory.
func (t *Tracker) resolve(h *hero.Hero, q *Quest, enc *Encounter) (LogEntry, []string, error) {
	entry := LogEntry{
		Position:      enc.Position,
		EncounterType: enc.Type,
		Timestamp:     t.now(),
	}
	var (
		fallback string
		items    []string
	)

	switch enc.Type {
	case EncounterMonster:
		out, err := t.fightMonster(h, enc.Monster)
		if err != nil {
			return LogEntry{}, nil, err
		}
		fallback = fmt.Sprintf("You encounter %s (level %d). Prepare for battle!", out.Name, out.Level)
		entry.Result = &Outcome{Monster: out}

	case EncounterTreasure:
		if _, err := t.Items.Resolve(enc.Treasure.Items); err != nil {
			return LogEntry{}, nil, err
		}
		h.Money += enc.Treasure.Gold
		items = append(items, enc.Treasure.Items...)
		fallback = "You discover a treasure chest!"
		entry.Result = &Outcome{Treasure: &TreasureOutcome{Gold: enc.Treasure.Gold, Items: items}}

	case EncounterTrap:
		dmg, err := trapDamage(enc.Trap, t.Source)
		if err != nil {
			return LogEntry{}, nil, err
		}
		h.Health = max(h.Health-dmg, 0)
		name := enc.Trap.Name
		if name == "" {
			name = "a trap"
		}
		fallback = fmt.Sprintf("You are caught in %s!", name)
		entry.Result = &Outcome{Trap: &TrapOutcome{
			Name:        enc.Trap.Name,
			Description: enc.Trap.Description,
			Damage:      dmg,
			Health:      h.Health,
		}}

	case EncounterRest:
		ceiling := t.restHealCap
		if ceiling == 0 {
			ceiling = h.Stats.BaseHealth()
		}
		healed := 0
		if h.Health < ceiling {
			next := min(h.Health+enc.Rest.HealAmount, ceiling)
			healed = next - h.Health
			h.Health = next
		}
		fallback = "You find a safe place to rest."
		entry.Result = &Outcome{Rest: &RestOutcome{
			Description: enc.Rest.Description,
			HealAmount:  enc.Rest.HealAmount,
			Healed:      healed,
			Health:      h.Health,
		}}

	default:
		return LogEntry{}, nil, fmt.Errorf("resolving position %d: unknown encounter type %q", enc.Position, enc.Type)
	}

	entry.Message = t.message(q.ID, enc.Type, enc.Position, fallback)
	return entry, items, nil
}

// fightMonster picks the monster and credits the guaranteed victory.
func (t *Tracker) fightMonster(h *hero.Hero, m *MonsterEncounter) (*MonsterOutcome, error) {
	out := &MonsterOutcome{Victory: true}
	switch {
	case m.MonsterID != "":
		tmpl, err := t.Monsters.ByID(m.MonsterID)
		if err != nil {
			return nil, err
		}
		out.MonsterID, out.Name, out.Level = tmpl.ID, tmpl.Name, tmpl.Level
	default:
		level := m.Level
		if level <= 0 {
			level = h.Level
		}
		if tmpl, ok := t.Monsters.NearestLevel(level, t.Source); ok {
			out.MonsterID, out.Name, out.Level = tmpl.ID, tmpl.Name, tmpl.Level
		} else {
			out.Name, out.Level = strangeCreature, h.Level
		}
	}

	r, err := t.grant(h, reward.Grant{
		Experience: out.Level * MonsterExperiencePerLevel,
		Gold:       out.Level * MonsterGoldPerLevel,
	})
	if err != nil {
		return nil, err
	}
	out.Experience, out.Gold, out.LeveledUp = r.Experience, r.Gold, r.LeveledUp
	return out, nil
}

// complete grants the quest rewards and builds the completion entry.
func (t *Tracker) complete(h *hero.Hero, q *Quest, position int) (LogEntry, []string, error) {
	if _, err := t.Items.Resolve(q.RewardItems); err != nil {
		return LogEntry{}, nil, err
	}
	r, err := t.grant(h, reward.Grant{Experience: q.RewardExp, Gold: q.RewardGold, Items: q.RewardItems})
	if err != nil {
		return LogEntry{}, nil, err
	}
	items := append([]string(nil), q.RewardItems...)
	return LogEntry{
		Position:      position,
		Message:       t.message(q.ID, EntryCompletion, position, "You completed the quest successfully!"),
		EncounterType: EntryCompletion,
		Result: &Outcome{Completion: &CompletionOutcome{
			Experience: r.Experience,
			Gold:       r.Gold,
			Items:      items,
			LeveledUp:  r.LeveledUp,
		}},
		Timestamp: t.now(),
	}, items, nil
}

// grant routes g through the shared leveling rules. Quest rewards never touch health.
func (t *Tracker) grant(h *hero.Hero, g reward.Grant) (combat.Reward, error) {
	c, err := h.Combatant()
	if err != nil {
		return combat.Reward{}, fmt.Errorf("granting reward to hero %d: %w", h.ID, err)
	}
	health := h.Health
	purse := h.State()
	r := t.Rewards.Apply(c, purse, g)
	h.Absorb(c, purse)
	h.Health = health
	return r, nil
}

func trapDamage(trap *TrapEncounter, src dice.Source) (int, error) {
	if trap.DamageDice == "" {
		return max(trap.Damage, 0), nil
	}
	expr, err := dice.Parse(trap.DamageDice)
	if err != nil {
		return 0, fmt.Errorf("trap %q: %w", trap.Name, err)
	}
	return max(dice.Roll(expr, src).Total(), 0), nil
}
