// Package stats holds the six base attributes of a combatant and the pure
// functions that derive combat values from them.
package stats

import (
	"encoding/json"

	"github.com/cory-johannsen/herobound/internal/game/gameerr"
)

// LevelUpGain is added to strength, magic, agility and speed on each level-up.
const LevelUpGain = 2

// Block is an immutable set of base attributes.
//
// Invariant: every field is >= 0 when built through New.
type Block struct {
	strength int
	magic    int
	agility  int
	speed    int
	charisma int
	luck     int
}

// Values is the exported, serialisable form of a Block.
type Values struct {
	Strength int `json:"strength" yaml:"strength"`
	Magic    int `json:"magic" yaml:"magic"`
	Agility  int `json:"agility" yaml:"agility"`
	Speed    int `json:"speed" yaml:"speed"`
	Charisma int `json:"charisma" yaml:"charisma"`
	Luck     int `json:"luck" yaml:"luck"`
}

// Field is one named base stat.
type Field struct {
	Name  string
	Value int
}

// Fields lists the base stats in declaration order.
func (v Values) Fields() []Field {
	return []Field{
		{"strength", v.Strength},
		{"magic", v.Magic},
		{"agility", v.Agility},
		{"speed", v.Speed},
		{"charisma", v.Charisma},
		{"luck", v.Luck},
	}
}

// New builds a Block.
//
// Precondition: all arguments must be >= 0.
// Postcondition: Returns a valid Block or a *gameerr.PreconditionError.
func New(strength, magic, agility, speed, charisma, luck int) (Block, error) {
	return FromValues(Values{strength, magic, agility, speed, charisma, luck})
}

// FromValues builds a Block from its serialised form.
func FromValues(v Values) (Block, error) {
	for _, f := range v.Fields() {
		if f.Value < 0 {
			return Block{}, gameerr.Precondition("stats", "%s must be >= 0, got %d", f.Name, f.Value)
		}
	}
	return Block{
		strength: v.Strength,
		magic:    v.Magic,
		agility:  v.Agility,
		speed:    v.Speed,
		charisma: v.Charisma,
		luck:     v.Luck,
	}, nil
}

// MustNew is New for literals known to be valid. Panics on a negative argument.
func MustNew(strength, magic, agility, speed, charisma, luck int) Block {
	b, err := New(strength, magic, agility, speed, charisma, luck)
	if err != nil {
		panic(err)
	}
	return b
}

// Values returns the serialisable form of b.
func (b Block) Values() Values {
	return Values{b.strength, b.magic, b.agility, b.speed, b.charisma, b.luck}
}

// Strength returns the base strength.
func (b Block) Strength() int { return b.strength }

// Magic returns the base magic.
func (b Block) Magic() int { return b.magic }

// Agility returns the base agility.
func (b Block) Agility() int { return b.agility }

// Speed returns the base speed.
func (b Block) Speed() int { return b.speed }

// Charisma returns the base charisma. No formula uses it.
func (b Block) Charisma() int { return b.charisma }

// Luck returns the base luck, which is also the critical hit percentage.
func (b Block) Luck() int { return b.luck }

// Endurance is strength + agility.
func (b Block) Endurance() int {
	return b.strength + b.agility
}

// BaseHealth is endurance + luck; it is also the maximum health of a combatant.
func (b Block) BaseHealth() int {
	return b.Endurance() + b.luck
}

// AttackPower is (strength + agility + magic) / 2 with halves rounded up.
func (b Block) AttackPower() int {
	return (b.strength + b.agility + b.magic + 1) / 2
}

// DefensePower is agility + speed + endurance.
func (b Block) DefensePower() int {
	return b.agility + b.speed + b.Endurance()
}

// LevelUp returns a copy with strength, magic, agility and speed raised by LevelUpGain.
// Charisma and luck are unchanged.
func (b Block) LevelUp() Block {
	b.strength += LevelUpGain
	b.magic += LevelUpGain
	b.agility += LevelUpGain
	b.speed += LevelUpGain
	return b
}

// MarshalJSON encodes b as its Values.
func (b Block) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Values())
}

// UnmarshalJSON decodes Values and validates them.
func (b *Block) UnmarshalJSON(data []byte) error {
	var v Values
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	nb, err := FromValues(v)
	if err != nil {
		return err
	}
	*b = nb
	return nil
}
