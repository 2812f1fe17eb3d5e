// Package arena orchestrates persisted battles between a hero and a monster
// or another hero.
package arena

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/herobound/internal/game/combat"
	"github.com/cory-johannsen/herobound/internal/game/dice"
	"github.com/cory-johannsen/herobound/internal/game/gameerr"
	"github.com/cory-johannsen/herobound/internal/game/hero"
	"github.com/cory-johannsen/herobound/internal/game/herolock"
	"github.com/cory-johannsen/herobound/internal/game/monster"
)

// OpponentType tells Battle where to find the opponent.
type OpponentType string

const (
	OpponentMob  OpponentType = "mob"
	OpponentHero OpponentType = "hero"
)

// Opponent names who the hero fights. ID is a monster template id for mobs
// and a decimal hero id for heroes.
type Opponent struct {
	Type OpponentType `json:"type"`
	ID   string       `json:"id"`
}

// BattleRecord is the persisted summary of one battle.
//
// WinnerID is the winning hero's id; it is zero when a mob won or the battle stalemated.
type BattleRecord struct {
	ID           int64        `json:"id"`
	UID          uuid.UUID    `json:"uid"`
	HeroID       int64        `json:"heroId"`
	OpponentType OpponentType `json:"opponentType"`
	OpponentID   string       `json:"opponentId"`
	WinnerID     int64        `json:"winnerId"`
	Rounds       int          `json:"rounds"`
	Log          combat.Log   `json:"log"`
	RewardExp    int          `json:"rewardExp"`
	RewardGold   int          `json:"rewardGold"`
	RewardItems  []string     `json:"rewardItems,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// HeroStore loads heroes.
type HeroStore interface {
	Hero(ctx context.Context, id int64) (*hero.Hero, error)
}

// BattleStore persists battle outcomes.
//
// RecordBattle saves h, adds itemIDs to h's inventory and inserts r in one
// transaction, assigning r.ID.
type BattleStore interface {
	RecordBattle(ctx context.Context, h *hero.Hero, itemIDs []string, r *BattleRecord) error
	Battles(ctx context.Context, heroID int64) ([]*BattleRecord, error)
}

// MonsterCatalog looks up monster templates by id.
type MonsterCatalog interface {
	ByID(id string) (*monster.Template, error)
}

// Deps are the collaborators of a Service. All fields are required.
type Deps struct {
	Heroes   HeroStore
	Battles  BattleStore
	Monsters MonsterCatalog
	Engine   *combat.Engine
	Locks    *herolock.Locker
	Source   dice.Source
	Logger   *zap.Logger
}

// Service runs battles and records their outcomes.
type Service struct {
	deps Deps
	now  func() time.Time
}

// NewService creates a Service.
//
// Precondition: every field of deps is non-nil.
func NewService(deps Deps) *Service {
	return &Service{deps: deps, now: time.Now}
}

// Battle fights one battle for heroID.
//
// The hero's level, stats, health, experience and money are saved whatever the
// outcome. A hero opponent is loaded and never modified. Monster loot rolled on
// a win goes to the inventory. The hero, the loot and the record are saved
// together or not at all.
//
// Postcondition: On a stalemate the stored record and a *gameerr.StalemateError
// are both returned.
func (s *Service) Battle(ctx context.Context, heroID int64, opp Opponent) (*BattleRecord, error) {
	unlock, err := s.deps.Locks.Lock(ctx, heroID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	h, err := s.deps.Heroes.Hero(ctx, heroID)
	if err != nil {
		return nil, fmt.Errorf("loading hero %d: %w", heroID, err)
	}
	fighter, err := h.Combatant()
	if err != nil {
		return nil, err
	}
	purse := h.State()

	foe, loot, err := s.opponent(ctx, heroID, opp)
	if err != nil {
		return nil, err
	}

	res, runErr := s.deps.Engine.Run(ctx, fighter, purse, foe)
	if runErr != nil && !gameerr.IsStalemate(runErr) {
		return nil, runErr
	}

	rec := &BattleRecord{
		UID:          res.ID,
		HeroID:       heroID,
		OpponentType: opp.Type,
		OpponentID:   opp.ID,
		Rounds:       res.Rounds,
		Log:          res.Log,
		CreatedAt:    s.now(),
	}
	switch {
	case res.HeroWon:
		rec.WinnerID = heroID
	case res.Winner != nil && opp.Type == OpponentHero:
		rec.WinnerID, _ = strconv.ParseInt(res.Winner.ID, 10, 64)
	}
	if res.Reward != nil {
		if res.HeroWon && loot != nil {
			res.Reward.Items = append(res.Reward.Items, loot.Roll(s.deps.Source)...)
		}
		rec.RewardExp, rec.RewardGold, rec.RewardItems = res.Reward.Experience, res.Reward.Gold, res.Reward.Items
	}

	h.Absorb(fighter, purse)
	if err := s.deps.Battles.RecordBattle(ctx, h, rec.RewardItems, rec); err != nil {
		return nil, fmt.Errorf("recording battle: %w", err)
	}

	s.deps.Logger.Info("battle recorded",
		zap.Int64("hero_id", heroID),
		zap.String("opponent_type", string(opp.Type)),
		zap.String("opponent_id", opp.ID),
		zap.Int64("winner_id", rec.WinnerID),
		zap.Int("rounds", rec.Rounds),
	)
	return rec, runErr
}

// History returns the hero's recorded battles, oldest first.
func (s *Service) History(ctx context.Context, heroID int64) ([]*BattleRecord, error) {
	recs, err := s.deps.Battles.Battles(ctx, heroID)
	if err != nil {
		return nil, fmt.Errorf("loading battle history for hero %d: %w", heroID, err)
	}
	return recs, nil
}

func (s *Service) opponent(ctx context.Context, heroID int64, opp Opponent) (*combat.Combatant, *monster.LootTable, error) {
	switch opp.Type {
	case OpponentMob:
		tmpl, err := s.deps.Monsters.ByID(opp.ID)
		if err != nil {
			return nil, nil, err
		}
		mob, err := tmpl.Spawn()
		if err != nil {
			return nil, nil, err
		}
		return mob, tmpl.Loot, nil
	case OpponentHero:
		id, err := strconv.ParseInt(opp.ID, 10, 64)
		if err != nil {
			return nil, nil, gameerr.Precondition("battle", "opponent hero id %q is not numeric", opp.ID)
		}
		if id == heroID {
			return nil, nil, gameerr.Precondition("battle", "hero %d cannot fight itself", heroID)
		}
		other, err := s.deps.Heroes.Hero(ctx, id)
		if err != nil {
			return nil, nil, fmt.Errorf("loading opponent hero %d: %w", id, err)
		}
		c, err := other.Combatant()
		if err != nil {
			return nil, nil, err
		}
		return c, nil, nil
	default:
		return nil, nil, gameerr.Precondition("battle", "unknown opponent type %q", opp.Type)
	}
}
