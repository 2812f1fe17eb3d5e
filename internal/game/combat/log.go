package combat

import "time"

// EntryKind classifies a battle log entry.
type EntryKind string

const (
	EntryInitiative EntryKind = "initiative"
	EntryRound      EntryKind = "round"
	EntryAttack     EntryKind = "attack"
	EntryDefeat     EntryKind = "defeat"
	EntryReward     EntryKind = "reward"
	EntryLevelUp    EntryKind = "level_up"
)

// LogEntry is one append-only record of the battle.
type LogEntry struct {
	Round          int       `json:"round"`
	Kind           EntryKind `json:"kind"`
	Attacker       string    `json:"attacker,omitempty"`
	Defender       string    `json:"defender,omitempty"`
	Damage         int       `json:"damage"`
	Critical       bool      `json:"critical"`
	PartialDodge   bool      `json:"partialDodge"`
	AttackerHealth int       `json:"attackerHealth"`
	DefenderHealth int       `json:"defenderHealth"`
	Message        string    `json:"message"`
	Timestamp      time.Time `json:"timestamp"`
}

// Log is an ordered battle log.
type Log []LogEntry

// Attacks returns only the attack entries, in order.
func (l Log) Attacks() []LogEntry {
	var out []LogEntry
	for _, e := range l {
		if e.Kind == EntryAttack {
			out = append(out, e)
		}
	}
	return out
}
