// Package quest implements quest content, the weighted encounter generator and
// the position-based progress tracker.
package quest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/herobound/internal/game/dice"
)

// EncounterType is the kind of event found on a board position.
type EncounterType string

const (
	EncounterMonster  EncounterType = "monster"
	EncounterTreasure EncounterType = "treasure"
	EncounterTrap     EncounterType = "trap"
	EncounterRest     EncounterType = "rest"
)

// Log-only entry types.
const (
	EntryStart      EncounterType = "start"
	EntryCompletion EncounterType = "completion"
	EntryAbandon    EncounterType = "abandon"
)

// MaxDifficulty is the highest quest difficulty accepted by Validate.
const MaxDifficulty = 10

// MonsterEncounter selects a monster. MonsterID wins when set; otherwise the
// catalog is searched for the nearest Level, or the hero's level when Level is zero.
type MonsterEncounter struct {
	MonsterID   string `yaml:"monster_id" json:"monsterId,omitempty"`
	Level       int    `yaml:"level" json:"level,omitempty"`
	Description string `yaml:"description" json:"description,omitempty"`
}

// TreasureEncounter grants fixed gold and items.
type TreasureEncounter struct {
	Gold  int      `yaml:"gold" json:"gold"`
	Items []string `yaml:"items" json:"items,omitempty"`
}

// TrapEncounter deals fixed damage, or rolls DamageDice when set.
type TrapEncounter struct {
	Name        string `yaml:"name" json:"name"`
	Damage      int    `yaml:"damage" json:"damage"`
	DamageDice  string `yaml:"damage_dice" json:"damageDice,omitempty"`
	Description string `yaml:"description" json:"description,omitempty"`
}

// RestEncounter heals a fixed amount.
type RestEncounter struct {
	HealAmount  int    `yaml:"heal_amount" json:"healAmount"`
	Description string `yaml:"description" json:"description,omitempty"`
}

// Encounter is one authored or generated board event. At most one payload
// matching Type is set; a missing payload means the values are generated.
type Encounter struct {
	Position int                `yaml:"position" json:"position"`
	Type     EncounterType      `yaml:"type" json:"type"`
	Monster  *MonsterEncounter  `yaml:"monster,omitempty" json:"monster,omitempty"`
	Treasure *TreasureEncounter `yaml:"treasure,omitempty" json:"treasure,omitempty"`
	Trap     *TrapEncounter     `yaml:"trap,omitempty" json:"trap,omitempty"`
	Rest     *RestEncounter     `yaml:"rest,omitempty" json:"rest,omitempty"`
}

// Quest is a quest definition loaded from YAML.
type Quest struct {
	ID          string      `yaml:"id" json:"id"`
	Name        string      `yaml:"name" json:"name"`
	Description string      `yaml:"description" json:"description"`
	Difficulty  int         `yaml:"difficulty" json:"difficulty"`
	RewardExp   int         `yaml:"reward_exp" json:"rewardExp"`
	RewardGold  int         `yaml:"reward_gold" json:"rewardGold"`
	RewardItems []string    `yaml:"reward_items" json:"rewardItems,omitempty"`
	BoardSize   int         `yaml:"board_size" json:"boardSize"`
	Encounters  []Encounter `yaml:"encounters" json:"encounters,omitempty"`
	// Script is an optional Lua file, relative to the quest file, defining encounter hooks.
	Script string `yaml:"script" json:"-"`
}

// EncounterAt returns the authored encounter at position.
//
// Postcondition: Returns (nil, false) when the position has no authored encounter.
func (q *Quest) EncounterAt(position int) (*Encounter, bool) {
	for i := range q.Encounters {
		if q.Encounters[i].Position == position {
			return &q.Encounters[i], true
		}
	}
	return nil, false
}

// Validate checks the quest and every authored encounter, reporting all violations.
func (q *Quest) Validate() error {
	var errs []error
	if q.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if q.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if q.Difficulty < 1 || q.Difficulty > MaxDifficulty {
		errs = append(errs, fmt.Errorf("difficulty must be in [1, %d], got %d", MaxDifficulty, q.Difficulty))
	}
	if q.RewardExp < 0 || q.RewardGold < 0 {
		errs = append(errs, errors.New("rewards must not be negative"))
	}
	if q.BoardSize < 1 {
		errs = append(errs, fmt.Errorf("board_size must be >= 1, got %d", q.BoardSize))
	}
	seen := make(map[int]bool, len(q.Encounters))
	for _, e := range q.Encounters {
		if e.Position < 1 || e.Position >= q.BoardSize {
			errs = append(errs, fmt.Errorf("encounter position %d must be in [1, %d)", e.Position, q.BoardSize))
		}
		if seen[e.Position] {
			errs = append(errs, fmt.Errorf("duplicate encounter at position %d", e.Position))
		}
		seen[e.Position] = true
		if err := e.validate(); err != nil {
			errs = append(errs, fmt.Errorf("encounter at position %d: %w", e.Position, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("quest %q: %w", q.ID, errors.Join(errs...))
	}
	return nil
}

func (e *Encounter) validate() error {
	payloads := 0
	for _, set := range []bool{e.Monster != nil, e.Treasure != nil, e.Trap != nil, e.Rest != nil} {
		if set {
			payloads++
		}
	}
	if payloads > 1 {
		return errors.New("at most one payload may be set")
	}
	switch e.Type {
	case EncounterMonster:
		if payloads == 1 && e.Monster == nil {
			return errors.New("payload does not match type monster")
		}
		if e.Monster != nil && e.Monster.Level < 0 {
			return errors.New("monster level must not be negative")
		}
	case EncounterTreasure:
		if payloads == 1 && e.Treasure == nil {
			return errors.New("payload does not match type treasure")
		}
		if e.Treasure != nil && e.Treasure.Gold < 0 {
			return errors.New("treasure gold must not be negative")
		}
	case EncounterTrap:
		if payloads == 1 && e.Trap == nil {
			return errors.New("payload does not match type trap")
		}
		if e.Trap != nil {
			if e.Trap.Damage < 0 {
				return errors.New("trap damage must not be negative")
			}
			if e.Trap.DamageDice != "" {
				if _, err := dice.Parse(e.Trap.DamageDice); err != nil {
					return err
				}
			}
		}
	case EncounterRest:
		if payloads == 1 && e.Rest == nil {
			return errors.New("payload does not match type rest")
		}
		if e.Rest != nil && e.Rest.HealAmount < 0 {
			return errors.New("rest heal_amount must not be negative")
		}
	default:
		return fmt.Errorf("unknown encounter type %q", e.Type)
	}
	return nil
}

// LoadQuestFromBytes parses and validates a single quest.
func LoadQuestFromBytes(data []byte) (*Quest, error) {
	var q Quest
	if err := yaml.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("parsing quest YAML: %w", err)
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return &q, nil
}

// LoadQuests reads all *.yaml files in dir. A quest's Script path is resolved
// relative to dir.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all quests or an error on the first failure.
func LoadQuests(dir string) ([]*Quest, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading quest dir %q: %w", dir, err)
	}
	var quests []*Quest
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		q, err := LoadQuestFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		if q.Script != "" && !filepath.IsAbs(q.Script) {
			q.Script = filepath.Join(dir, q.Script)
		}
		quests = append(quests, q)
	}
	return quests, nil
}
