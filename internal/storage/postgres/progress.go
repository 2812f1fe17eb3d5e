package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/herobound/internal/game/gameerr"
	"github.com/cory-johannsen/herobound/internal/game/quest"
)

const progressColumns = `id, hero_id, quest_id, current_position, is_active, is_completed, log, created_at, updated_at`

// ProgressRepository persists quest progress records with their logs as JSONB.
type ProgressRepository struct {
	db *pgxpool.Pool
}

// NewProgressRepository creates a ProgressRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewProgressRepository(db *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// ActiveProgress returns the active record for the pair or quest.ErrNoProgress.
func (r *ProgressRepository) ActiveProgress(ctx context.Context, heroID int64, questID string) (*quest.Progress, error) {
	return r.one(ctx, `SELECT `+progressColumns+` FROM quest_progress
		WHERE hero_id = $1 AND quest_id = $2 AND is_active`, heroID, questID)
}

// LatestProgress returns the newest record for the pair or quest.ErrNoProgress.
func (r *ProgressRepository) LatestProgress(ctx context.Context, heroID int64, questID string) (*quest.Progress, error) {
	return r.one(ctx, `SELECT `+progressColumns+` FROM quest_progress
		WHERE hero_id = $1 AND quest_id = $2 ORDER BY id DESC LIMIT 1`, heroID, questID)
}

// ActiveProgresses returns every active record of heroID ordered by quest id.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *ProgressRepository) ActiveProgresses(ctx context.Context, heroID int64) ([]*quest.Progress, error) {
	rows, err := r.db.Query(ctx, `SELECT `+progressColumns+` FROM quest_progress
		WHERE hero_id = $1 AND is_active ORDER BY quest_id ASC`, heroID)
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
func (r *ProgressRepository) CreateProgress(ctx context.Context, p *quest.Progress) error {
	logJSON, err := json.Marshal(p.Log)
	if err != nil {
		return fmt.Errorf("encoding quest log: %w", err)
	}
	err = r.db.QueryRow(ctx, `
		INSERT INTO quest_progress
			(hero_id, quest_id, current_position, is_active, is_completed, log, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id`,
		p.HeroID, p.QuestID, p.CurrentPosition, p.IsActive, p.IsCompleted, logJSON, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return &gameerr.DuplicateActiveQuestError{HeroID: p.HeroID, QuestID: p.QuestID}
		}
		return fmt.Errorf("inserting quest progress: %w", err)
	}
	return nil
}

// UpdateProgress overwrites the mutable columns of record p.ID.
//
// Postcondition: Returns quest.ErrNoProgress when p.ID does not exist.
func (r *ProgressRepository) UpdateProgress(ctx context.Context, p *quest.Progress) error {
	return updateProgress(ctx, r.db, p)
}

func updateProgress(ctx context.Context, q querier, p *quest.Progress) error {
	logJSON, err := json.Marshal(p.Log)
	if err != nil {
		return fmt.Errorf("encoding quest log: %w", err)
	}
	tag, err := q.Exec(ctx, `
		UPDATE quest_progress SET
			current_position = $2, is_active = $3, is_completed = $4, log = $5, updated_at = $6
		WHERE id = $1`,
		p.ID, p.CurrentPosition, p.IsActive, p.IsCompleted, logJSON, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("updating quest progress %d: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return quest.ErrNoProgress
	}
	return nil
}

func (r *ProgressRepository) one(ctx context.Context, query string, args ...any) (*quest.Progress, error) {
	p, err := scanProgress(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, quest.ErrNoProgress
	}
	if err != nil {
		return nil, fmt.Errorf("querying quest progress: %w", err)
	}
	return p, nil
}

func scanProgress(row pgx.Row) (*quest.Progress, error) {
	var (
		p       quest.Progress
		logJSON []byte
	)
	if err := row.Scan(
		&p.ID, &p.HeroID, &p.QuestID, &p.CurrentPosition, &p.IsActive, &p.IsCompleted,
		&logJSON, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(logJSON, &p.Log); err != nil {
		return nil, fmt.Errorf("decoding quest log %d: %w", p.ID, err)
	}
	return &p, nil
}
