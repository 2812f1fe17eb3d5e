package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cory-johannsen/herobound/internal/game/gameerr"
	"github.com/cory-johannsen/herobound/internal/game/quest"
)

const progressColumns = `id, hero_id, quest_id, current_position, is_active, is_completed, log, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// ActiveProgress returns the active record for the pair or quest.ErrNoProgress.
func (s *Store) ActiveProgress(ctx context.Context, heroID int64, questID string) (*quest.Progress, error) {
	return s.oneProgress(ctx, `SELECT `+progressColumns+` FROM quest_progress
		WHERE hero_id = ? AND quest_id = ? AND is_active = 1`, heroID, questID)
}

// LatestProgress returns the newest record for the pair or quest.ErrNoProgress.
func (s *Store) LatestProgress(ctx context.Context, heroID int64, questID string) (*quest.Progress, error) {
	return s.oneProgress(ctx, `SELECT `+progressColumns+` FROM quest_progress
		WHERE hero_id = ? AND quest_id = ? ORDER BY id DESC LIMIT 1`, heroID, questID)
}

// ActiveProgresses returns every active record of heroID ordered by quest id.
func (s *Store) ActiveProgresses(ctx context.Context, heroID int64) ([]*quest.Progress, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+progressColumns+` FROM quest_progress
		WHERE hero_id = ? AND is_active = 1 ORDER BY quest_id ASC`, heroID)
	if err != nil {
		return nil, fmt.Errorf("listing active quests: %w", err)
	}
	defer rows.Close()

	out := make([]*quest.Progress, 0)
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning quest progress row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreateProgress inserts p and sets its ID.
//
// Postcondition: Returns a *gameerr.DuplicateActiveQuestError when the partial
// unique index rejects a second active record.
func (s *Store) CreateProgress(ctx context.Context, p *quest.Progress) error {
	logJSON, err := json.Marshal(p.Log)
	if err != nil {
		return fmt.Errorf("encoding quest log: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO quest_progress
			(hero_id, quest_id, current_position, is_active, is_completed, log, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		p.HeroID, p.QuestID, p.CurrentPosition, boolInt(p.IsActive), boolInt(p.IsCompleted),
		string(logJSON), toMillis(p.CreatedAt), toMillis(p.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &gameerr.DuplicateActiveQuestError{HeroID: p.HeroID, QuestID: p.QuestID}
		}
		return fmt.Errorf("inserting quest progress: %w", err)
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("reading quest progress id: %w", err)
	}
	return nil
}

// UpdateProgress overwrites the mutable columns of record p.ID.
//
// Postcondition: Returns quest.ErrNoProgress when p.ID does not exist.
func (s *Store) UpdateProgress(ctx context.Context, p *quest.Progress) error {
	return updateProgress(ctx, s.db, p)
}

func updateProgress(ctx context.Context, ex execer, p *quest.Progress) error {
	logJSON, err := json.Marshal(p.Log)
	if err != nil {
		return fmt.Errorf("encoding quest log: %w", err)
	}
	res, err := ex.ExecContext(ctx, `
		UPDATE quest_progress SET
			current_position = ?, is_active = ?, is_completed = ?, log = ?, updated_at = ?
		WHERE id = ?`,
		p.CurrentPosition, boolInt(p.IsActive), boolInt(p.IsCompleted), string(logJSON),
		toMillis(p.UpdatedAt), p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating quest progress %d: %w", p.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating quest progress %d: %w", p.ID, err)
	}
	if n == 0 {
		return quest.ErrNoProgress
	}
	return nil
}

func (s *Store) oneProgress(ctx context.Context, query string, args ...any) (*quest.Progress, error) {
	p, err := scanProgress(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, quest.ErrNoProgress
	}
	if err != nil {
		return nil, fmt.Errorf("querying quest progress: %w", err)
	}
	return p, nil
}

func scanProgress(row rowScanner) (*quest.Progress, error) {
	var (
		p                 quest.Progress
		active, completed int
		logJSON           string
		created, updated  int64
	)
	if err := row.Scan(
		&p.ID, &p.HeroID, &p.QuestID, &p.CurrentPosition, &active, &completed,
		&logJSON, &created, &updated,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(logJSON), &p.Log); err != nil {
		return nil, fmt.Errorf("decoding quest log %d: %w", p.ID, err)
	}
	p.IsActive = active != 0
	p.IsCompleted = completed != 0
	p.CreatedAt = fromMillis(created)
	p.UpdatedAt = fromMillis(updated)
	return &p, nil
}
