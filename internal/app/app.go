// Package app assembles the game services from configuration: content
// catalogs, the store, the battle engine, the arena, the quest tracker and
// the quest scripts.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/herobound/internal/config"
	"github.com/cory-johannsen/herobound/internal/game/arena"
	"github.com/cory-johannsen/herobound/internal/game/combat"
	"github.com/cory-johannsen/herobound/internal/game/dice"
	"github.com/cory-johannsen/herobound/internal/game/herolock"
	"github.com/cory-johannsen/herobound/internal/game/quest"
	"github.com/cory-johannsen/herobound/internal/game/reward"
	"github.com/cory-johannsen/herobound/internal/observability"
	"github.com/cory-johannsen/herobound/internal/scripting"
	"github.com/cory-johannsen/herobound/internal/storage"
)

// App holds the wired game services.
type App struct {
	Content *Content
	Store   storage.Store
	Roller  *dice.Roller
	Engine  *combat.Engine
	Arena   *arena.Service
	Tracker *quest.Tracker
	Scripts *scripting.Manager
}

type options struct {
	source dice.Source
	store  storage.Store
}

// Option customises New.
type Option func(*options)

// WithSource replaces the crypto random source, e.g. with dice.NewSeededSource for replays.
func WithSource(src dice.Source) Option {
	return func(o *options) { o.source = src }
}

// WithStore uses s instead of opening cfg.Storage. App.Close closes it.
func WithStore(s storage.Store) Option {
	return func(o *options) { o.store = s }
}

// New loads content, opens the store and builds every service.
//
// Precondition: cfg must have passed Validate; logger must be non-nil.
// Postcondition: Returns a ready App or a non-nil error; nothing is left open on error.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	o := options{source: dice.NewCryptoSource()}
	for _, opt := range opts {
		opt(&o)
	}

	content, err := LoadContent(cfg.Game, observability.Component(logger, "content"))
	if err != nil {
		return nil, err
	}

	store := o.store
	if store == nil {
		if store, err = storage.Open(ctx, cfg, logger); err != nil {
			return nil, err
		}
	}

	roller := dice.NewRoller(o.source, observability.Component(logger, "dice"))
	scripts := scripting.NewManager(roller, observability.Component(logger, "scripting"))
	if err := scripts.LoadQuests(content.Quests.All(), scripting.DefaultInstructionLimit); err != nil {
		scripts.Close()
		return nil, errors.Join(fmt.Errorf("loading quest scripts: %w", err), store.Close())
	}

	rewards := reward.NewCalculator()
	engine := combat.NewEngine(roller, rewards, observability.Component(logger, "battle"),
		combat.WithMaxRounds(cfg.Game.MaxRounds),
	)
	locks := herolock.New()

	arenaSvc := arena.NewService(arena.Deps{
		Heroes:   store,
		Battles:  store,
		Monsters: content.Monsters,
		Engine:   engine,
		Locks:    locks,
		Source:   roller,
		Logger:   observability.Component(logger, "arena"),
	})

	w := cfg.Game.Encounters
	tracker := quest.NewTracker(quest.Deps{
		Quests:   content.Quests,
		Heroes:   store,
		Progress: store,
		Monsters: content.Monsters,
		Items:    content.Items,
		Generator: quest.NewGenerator(quest.Weights{
			Monster: w.Monster, Treasure: w.Treasure, Trap: w.Trap, Rest: w.Rest,
		}, content.Items),
		Rewards:  rewards,
		Locks:    locks,
		Source:   roller,
		Narrator: scripts,
		Logger:   observability.Component(logger, "quest"),
	}, quest.WithRestHealCap(cfg.Game.RestHealCap))

	return &App{
		Content: content,
		Store:   store,
		Roller:  roller,
		Engine:  engine,
		Arena:   arenaSvc,
		Tracker: tracker,
		Scripts: scripts,
	}, nil
}

// Close releases the quest scripts and the store.
func (a *App) Close() error {
	a.Scripts.Close()
	return a.Store.Close()
}
