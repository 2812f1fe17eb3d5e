package combat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/herobound/internal/game/dice"
	"github.com/cory-johannsen/herobound/internal/game/gameerr"
)

// DefaultMaxRounds bounds a battle when no explicit cap is configured.
const DefaultMaxRounds = 1000

// Reward describes what a victorious hero received.
type Reward struct {
	Experience int      `json:"experience"`
	Gold       int      `json:"gold"`
	Items      []string `json:"items,omitempty"`
	LeveledUp  bool     `json:"leveledUp"`
	Level      int      `json:"level"`
}

// Rewarder grants the hero its payout for defeating an opponent of the given level.
type Rewarder interface {
	Reward(hero *Combatant, purse *HeroState, opponentLevel int) Reward
}

// Result is the outcome of a finished (or stalemated) battle.
type Result struct {
	ID      uuid.UUID  `json:"id"`
	Winner  *Combatant `json:"winner,omitempty"`
	Loser   *Combatant `json:"loser,omitempty"`
	HeroWon bool       `json:"heroWon"`
	Rounds  int        `json:"rounds"`
	Log     Log        `json:"log"`
	Reward  *Reward    `json:"reward,omitempty"`
}

// Option customises an Engine.
type Option func(*Engine)

// WithMaxRounds overrides DefaultMaxRounds. Values < 1 are ignored.
func WithMaxRounds(n int) Option {
	return func(e *Engine) {
		if n >= 1 {
			e.maxRounds = n
		}
	}
}

// WithClock sets the timestamp source for log entries.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine resolves battles. It holds no per-battle state and is safe for
// concurrent use when its Source is.
type Engine struct {
	src       dice.Source
	rewarder  Rewarder
	logger    *zap.Logger
	maxRounds int
	now       func() time.Time
}

// NewEngine creates an Engine.
//
// Precondition: src, rewarder and logger must be non-nil.
// Postcondition: Returns an Engine with DefaultMaxRounds unless overridden.
func NewEngine(src dice.Source, rewarder Rewarder, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		src:       src,
		rewarder:  rewarder,
		logger:    logger,
		maxRounds: DefaultMaxRounds,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// battle is the mutable state of a single Run call.
type battle struct {
	engine   *Engine
	hero     *Combatant
	purse    *HeroState
	opponent *Combatant
	round    int
	log      Log
}

func (b *battle) append(entry LogEntry) {
	entry.Round = b.round
	entry.Timestamp = b.engine.now()
	b.log = append(b.log, entry)
}

// Run fights hero against opponent until one side reaches zero health.
//
// The hero and purse are mutated in place: health, and on victory experience,
// money, level and stats. The opponent's health is mutated as well.
//
// Precondition: hero has RoleHero; both combatants are alive and distinct; purse is non-nil.
// Postcondition: On success exactly one of hero and opponent is dead and the
// returned Result names it as Loser. When the round cap is hit the partial
// Result is returned together with a *gameerr.StalemateError.
func (e *Engine) Run(ctx context.Context, hero *Combatant, purse *HeroState, opponent *Combatant) (*Result, error) {
	if err := validate(hero, purse, opponent); err != nil {
		return nil, err
	}

	b := &battle{engine: e, hero: hero, purse: purse, opponent: opponent}
	res := &Result{ID: uuid.New()}

	heroRoll := RollInitiative(hero, e.src)
	oppRoll := RollInitiative(opponent, e.src)
	order := turnOrder(hero, opponent, heroRoll, oppRoll)
	b.append(LogEntry{
		Kind:           EntryInitiative,
		Attacker:       order[0].Name,
		Defender:       order[1].Name,
		AttackerHealth: order[0].Health,
		DefenderHealth: order[1].Health,
		Message: fmt.Sprintf("%s rolls %.2f initiative, %s rolls %.2f; %s strikes first",
			hero.Name, heroRoll, opponent.Name, oppRoll, order[0].Name),
	})
	e.logger.Debug("battle started",
		zap.String("battle_id", res.ID.String()),
		zap.String("hero", hero.Name),
		zap.String("opponent", opponent.Name),
		zap.Float64("hero_initiative", heroRoll),
		zap.Float64("opponent_initiative", oppRoll),
	)

	for b.round = 1; b.round <= e.maxRounds; b.round++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("battle %s: %w", res.ID, err)
		}
		b.append(LogEntry{
			Kind:           EntryRound,
			Attacker:       order[0].Name,
			Defender:       order[1].Name,
			AttackerHealth: order[0].Health,
			DefenderHealth: order[1].Health,
			Message:        fmt.Sprintf("Round %d begins", b.round),
		})
		for slot := 0; slot < 2; slot++ {
			attacker, defender := order[slot], order[1-slot]
			if e.turn(b, attacker, defender) {
				e.finish(b, res, attacker, defender)
				return res, nil
			}
		}
	}

	res.Rounds = e.maxRounds
	res.Log = b.log
	e.logger.Warn("battle stalemate",
		zap.String("battle_id", res.ID.String()),
		zap.Int("rounds", e.maxRounds),
	)
	return res, &gameerr.StalemateError{Rounds: e.maxRounds}
}

// turn resolves a single attack and reports whether the defender died.
func (e *Engine) turn(b *battle, attacker, defender *Combatant) bool {
	atk := attacker.Attack(e.src)
	def := defender.Defend(atk.Damage, e.src)

	msg := fmt.Sprintf("%s hits %s for %d damage", attacker.Name, defender.Name, def.DamageTaken)
	switch {
	case atk.Critical && def.PartialDodge:
		msg = fmt.Sprintf("%s lands a critical hit but %s partially dodges, taking %d damage",
			attacker.Name, defender.Name, def.DamageTaken)
	case atk.Critical:
		msg = fmt.Sprintf("%s lands a critical hit on %s for %d damage", attacker.Name, defender.Name, def.DamageTaken)
	case def.PartialDodge:
		msg = fmt.Sprintf("%s partially dodges %s, taking %d damage", defender.Name, attacker.Name, def.DamageTaken)
	}
	b.append(LogEntry{
		Kind:           EntryAttack,
		Attacker:       attacker.Name,
		Defender:       defender.Name,
		Damage:         def.DamageTaken,
		Critical:       atk.Critical,
		PartialDodge:   def.PartialDodge,
		AttackerHealth: attacker.Health,
		DefenderHealth: defender.Health,
		Message:        msg,
	})
	return defender.IsDead()
}

func (e *Engine) finish(b *battle, res *Result, winner, loser *Combatant) {
	b.append(LogEntry{
		Kind:           EntryDefeat,
		Attacker:       winner.Name,
		Defender:       loser.Name,
		AttackerHealth: winner.Health,
		DefenderHealth: loser.Health,
		Message:        fmt.Sprintf("%s has been defeated by %s", loser.Name, winner.Name),
	})

	res.Winner, res.Loser = winner, loser
	res.HeroWon = winner == b.hero
	res.Rounds = b.round

	// Beating a hero opponent pays the same level-based reward as a mob.
	if res.HeroWon {
		reward := e.rewarder.Reward(b.hero, b.purse, loser.Level)
		res.Reward = &reward
		b.append(LogEntry{
			Kind:           EntryReward,
			Attacker:       winner.Name,
			Defender:       loser.Name,
			AttackerHealth: winner.Health,
			Message:        fmt.Sprintf("%s gains %d experience and %d gold", winner.Name, reward.Experience, reward.Gold),
		})
		if reward.LeveledUp {
			b.append(LogEntry{
				Kind:           EntryLevelUp,
				Attacker:       winner.Name,
				AttackerHealth: winner.Health,
				Message:        fmt.Sprintf("%s reached level %d", winner.Name, reward.Level),
			})
		}
	}
	res.Log = b.log

	e.logger.Info("battle finished",
		zap.String("battle_id", res.ID.String()),
		zap.String("winner", winner.Name),
		zap.String("loser", loser.Name),
		zap.Bool("hero_won", res.HeroWon),
		zap.Int("rounds", res.Rounds),
	)
}

func validate(hero *Combatant, purse *HeroState, opponent *Combatant) error {
	const op = "battle"
	switch {
	case hero == nil || opponent == nil:
		return gameerr.Precondition(op, "both combatants are required")
	case purse == nil:
		return gameerr.Precondition(op, "hero state is required")
	case hero == opponent:
		return gameerr.Precondition(op, "%s cannot fight itself", hero.Name)
	case hero.Role != RoleHero:
		return gameerr.Precondition(op, "%s is not a hero", hero.Name)
	case hero.IsDead():
		return gameerr.Precondition(op, "%s is not alive", hero.Name)
	case opponent.IsDead():
		return gameerr.Precondition(op, "%s is not alive", opponent.Name)
	}
	return nil
}
