package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cory-johannsen/herobound/internal/game/arena"
	"github.com/cory-johannsen/herobound/internal/game/hero"
	"github.com/cory-johannsen/herobound/internal/game/quest"
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CommitQuestStep saves h, grants itemIDs and updates p in one transaction.
//
// Postcondition: On error nothing is written; quest.ErrNoProgress when p.ID
// does not exist.
func (s *Store) CommitQuestStep(ctx context.Context, h *hero.Hero, itemIDs []string, p *quest.Progress) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
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
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := saveHero(ctx, tx, h); err != nil {
			return err
		}
		if err := addItems(ctx, tx, h.ID, itemIDs); err != nil {
			return err
		}
		return insertBattle(ctx, tx, rec)
	})
}

// inTx runs fn in a transaction, rolling back when fn or the commit fails.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
