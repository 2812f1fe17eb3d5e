package quest

import (
	"github.com/cory-johannsen/herobound/internal/game/dice"
)

// Weights are the relative draw weights of generated encounter types.
type Weights struct {
	Monster  int
	Treasure int
	Trap     int
	Rest     int
}

// DefaultWeights draws monster 40%, treasure 25%, trap 15% and rest 20%.
var DefaultWeights = Weights{Monster: 40, Treasure: 25, Trap: 15, Rest: 20}

// Total returns the sum of all weights.
func (w Weights) Total() int {
	return w.Monster + w.Treasure + w.Trap + w.Rest
}

type namedHazard struct {
	name        string
	description string
}

var generatedTraps = []namedHazard{
	{"Spike Trap", "Spikes burst suddenly from the ground."},
	{"Toxic Gas", "A toxic vapour spreads through the air."},
	{"Trapped Flagstone", "The flagstone under your feet suddenly gives way."},
	{"Explosive Rune", "A magic symbol lights up and explodes."},
	{"Arrow Trap", "Arrows fly out of the walls."},
}

var generatedRests = []string{
	"A small spring of clear water with healing properties.",
	"A sanctuary protected by ancient, benevolent magic.",
	"An abandoned but secure campsite.",
	"A peaceful cave sheltered from danger.",
	"A quiet grove bathed in light.",
}

// Generator draws random encounters for positions with no authored encounter.
type Generator struct {
	weights Weights
	items   ItemCatalog
}

// NewGenerator creates a Generator. Weights with a non-positive total fall back to DefaultWeights.
//
// Precondition: items must be non-nil.
func NewGenerator(weights Weights, items ItemCatalog) *Generator {
	if weights.Total() <= 0 {
		weights = DefaultWeights
	}
	return &Generator{weights: weights, items: items}
}

// Draw picks an encounter type with probability proportional to its weight.
//
// Precondition: src must be non-nil.
func (g *Generator) Draw(src dice.Source) EncounterType {
	r := src.Intn(g.weights.Total())
	switch {
	case r < g.weights.Monster:
		return EncounterMonster
	case r < g.weights.Monster+g.weights.Treasure:
		return EncounterTreasure
	case r < g.weights.Monster+g.weights.Treasure+g.weights.Trap:
		return EncounterTrap
	default:
		return EncounterRest
	}
}

// Generate draws a full encounter scaled to heroLevel.
//
// Monster payloads are left for the resolver, which picks the nearest-level monster.
// Treasure holds 10 + [0, 10*level) gold and, with chance min(30 + 5*level, 80)%,
// one or two random items. Traps deal 5 + [0, 3*level) damage. Rests heal
// 15 + [0, 2*level).
//
// Precondition: heroLevel >= 1; src must be non-nil.
func (g *Generator) Generate(heroLevel, position int, src dice.Source) Encounter {
	return g.Fill(Encounter{Position: position, Type: g.Draw(src)}, heroLevel, src)
}

// Fill generates the payload of an encounter that has none. Authored payloads
// are returned untouched.
func (g *Generator) Fill(enc Encounter, heroLevel int, src dice.Source) Encounter {
	switch enc.Type {
	case EncounterMonster:
		if enc.Monster == nil {
			enc.Monster = &MonsterEncounter{Level: heroLevel}
		}
	case EncounterTreasure:
		if enc.Treasure == nil {
			enc.Treasure = g.treasure(heroLevel, src)
		}
	case EncounterTrap:
		if enc.Trap == nil {
			t := generatedTraps[src.Intn(len(generatedTraps))]
			enc.Trap = &TrapEncounter{
				Name:        t.name,
				Description: t.description,
				Damage:      dice.Between(src, 5, 3*heroLevel),
			}
		}
	case EncounterRest:
		if enc.Rest == nil {
			enc.Rest = &RestEncounter{
				HealAmount:  dice.Between(src, 15, 2*heroLevel),
				Description: generatedRests[src.Intn(len(generatedRests))],
			}
		}
	}
	return enc
}

func (g *Generator) treasure(heroLevel int, src dice.Source) *TreasureEncounter {
	t := &TreasureEncounter{Gold: dice.Between(src, 10, 10*heroLevel)}
	itemChance := min(30+5*heroLevel, 80)
	if !dice.Chance(src, itemChance) {
		return t
	}
	count := 1 + src.Intn(2)
	for i := 0; i < count; i++ {
		if id, ok := g.items.Random(src); ok {
			t.Items = append(t.Items, id)
		}
	}
	return t
}
