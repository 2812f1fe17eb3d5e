package quest

import (
	"errors"
	"time"
)

// ErrNoProgress is returned by a ProgressStore when no matching record exists.
var ErrNoProgress = errors.New("quest progress not found")

// Status is the state of a (hero, quest) pair.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusActive     Status = "active"
	StatusCompleted  Status = "completed"
	StatusAbandoned  Status = "abandoned"
)

// MonsterOutcome records an auto-resolved monster encounter.
type MonsterOutcome struct {
	MonsterID  string `json:"monsterId,omitempty"`
	Name       string `json:"name"`
	Level      int    `json:"level"`
	Victory    bool   `json:"victory"`
	Experience int    `json:"experience"`
	Gold       int    `json:"gold"`
	LeveledUp  bool   `json:"leveledUp,omitempty"`
}

// TreasureOutcome records gold and items found.
type TreasureOutcome struct {
	Gold  int      `json:"gold"`
	Items []string `json:"items,omitempty"`
}

// TrapOutcome records trap damage and the resulting health.
type TrapOutcome struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Damage      int    `json:"damage"`
	Health      int    `json:"health"`
}

// RestOutcome records healing and the resulting health.
type RestOutcome struct {
	Description string `json:"description,omitempty"`
	HealAmount  int    `json:"healAmount"`
	Healed      int    `json:"healed"`
	Health      int    `json:"health"`
}

// CompletionOutcome records the quest rewards granted on completion.
type CompletionOutcome struct {
	Experience int      `json:"experience"`
	Gold       int      `json:"gold"`
	Items      []string `json:"items,omitempty"`
	LeveledUp  bool     `json:"leveledUp,omitempty"`
}

// Outcome is the result payload of a log entry. At most one field is set;
// start and abandon entries carry none.
type Outcome struct {
	Monster    *MonsterOutcome    `json:"monster,omitempty"`
	Treasure   *TreasureOutcome   `json:"treasure,omitempty"`
	Trap       *TrapOutcome       `json:"trap,omitempty"`
	Rest       *RestOutcome       `json:"rest,omitempty"`
	Completion *CompletionOutcome `json:"completion,omitempty"`
}

// LogEntry is one immutable quest log record.
type LogEntry struct {
	Position      int           `json:"position"`
	Message       string        `json:"message"`
	EncounterType EncounterType `json:"encounterType"`
	Result        *Outcome      `json:"result,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
}

// Progress is a hero's run through a quest.
//
// Invariant: at most one record per (HeroID, QuestID) has IsActive set.
type Progress struct {
	ID              int64      `json:"id"`
	HeroID          int64      `json:"heroId"`
	QuestID         string     `json:"questId"`
	CurrentPosition int        `json:"currentPosition"`
	IsActive        bool       `json:"isActive"`
	IsCompleted     bool       `json:"isCompleted"`
	Log             []LogEntry `json:"log"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Status derives the state machine position from the record's flags.
func (p *Progress) Status() Status {
	switch {
	case p == nil:
		return StatusNotStarted
	case p.IsActive:
		return StatusActive
	case p.IsCompleted:
		return StatusCompleted
	default:
		return StatusAbandoned
	}
}

// Clone returns a deep copy of p.
func (p *Progress) Clone() *Progress {
	c := *p
	c.Log = append([]LogEntry(nil), p.Log...)
	return &c
}

// StepResult is the outcome of one AdvanceQuest call.
type StepResult struct {
	Progress *Progress `json:"progress"`
	Entry    LogEntry  `json:"entry"`
	// Encounter is the resolved encounter; nil when the step completed the quest.
	Encounter *Encounter `json:"encounter,omitempty"`
	Completed bool       `json:"completed"`
}

// ActiveQuest pairs an active progress record with its quest.
type ActiveQuest struct {
	Progress *Progress `json:"progress"`
	Quest    *Quest    `json:"quest"`
}
