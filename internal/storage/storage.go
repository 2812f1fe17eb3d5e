// Package storage opens the configured persistence backend.
package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/herobound/internal/config"
	"github.com/cory-johannsen/herobound/internal/game/arena"
	"github.com/cory-johannsen/herobound/internal/game/hero"
	"github.com/cory-johannsen/herobound/internal/game/quest"
	"github.com/cory-johannsen/herobound/internal/storage/postgres"
	"github.com/cory-johannsen/herobound/internal/storage/sqlite"
)

// Store is everything the game services persist, implemented by both backends.
type Store interface {
	quest.HeroStore
	quest.ProgressStore
	arena.BattleStore

	CreateHero(ctx context.Context, h *hero.Hero) error
	SaveHero(ctx context.Context, h *hero.Hero) error
	AddItems(ctx context.Context, heroID int64, itemIDs []string) error
	Items(ctx context.Context, heroID int64) (map[string]int, error)
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*postgres.Store)(nil)
	_ Store = (*sqlite.Store)(nil)
)

// Open connects to the backend named by cfg.Storage.Backend.
//
// Precondition: cfg must have passed Validate.
// Postcondition: Returns an open Store or a non-nil error.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (Store, error) {
	switch cfg.Storage.Backend {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		logger.Info("storage opened",
			zap.String("backend", "postgres"),
			zap.String("host", cfg.Database.Host),
		)
		return postgres.NewStore(pool), nil
	case "sqlite":
		s, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("storage opened",
			zap.String("backend", "sqlite"),
			zap.String("path", cfg.Storage.SQLitePath),
		)
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
