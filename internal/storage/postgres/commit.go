package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cory-johannsen/herobound/internal/game/arena"
	"github.com/cory-johannsen/herobound/internal/game/hero"
	"github.com/cory-johannsen/herobound/internal/game/quest"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CommitQuestStep saves h, grants itemIDs and updates p in one transaction.
//
// Postcondition: On error nothing is written; quest.ErrNoProgress when p.ID
// does not exist.
func (s *Store) CommitQuestStep(ctx context.Context, h *hero.Hero, itemIDs []string, p *quest.Progress) error {
	return pgx.BeginFunc(ctx, s.pool.DB(), func(tx pgx.Tx) error {
		if err := saveHero(ctx, tx, h); err != nil {
			return err
		}
		if err := addItems(ctx, tx, h.ID, itemIDs); err != nil {
			return err
		}
		if err := updateProgress(ctx, tx, p); err != nil {
			return fmt.Errorf("committing quest step: %w", err)
		}
		return nil
	})
}

// RecordBattle saves h, grants itemIDs and inserts rec in one transaction.
//
// Postcondition: On error nothing is written.
func (s *Store) RecordBattle(ctx context.Context, h *hero.Hero, itemIDs []string, rec *arena.BattleRecord) error {
	return pgx.BeginFunc(ctx, s.pool.DB(), func(tx pgx.Tx) error {
		if err := saveHero(ctx, tx, h); err != nil {
			return err
		}
		if err := addItems(ctx, tx, h.ID, itemIDs); err != nil {
			return err
		}
		return insertBattle(ctx, tx, rec)
	})
}
