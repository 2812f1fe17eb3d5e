package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/herobound/internal/game/arena"
)

// BattleRepository persists battle records with their logs as JSONB.
type BattleRepository struct {
	db *pgxpool.Pool
}

// NewBattleRepository creates a BattleRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewBattleRepository(db *pgxpool.Pool) *BattleRepository {
	return &BattleRepository{db: db}
}

// CreateBattle inserts rec and sets its ID and CreatedAt.
//
// Precondition: rec.HeroID must reference an existing hero; rec.UID must be unique.
func (r *BattleRepository) CreateBattle(ctx context.Context, rec *arena.BattleRecord) error {
	return insertBattle(ctx, r.db, rec)
}

func insertBattle(ctx context.Context, q querier, rec *arena.BattleRecord) error {
	logJSON, err := json.Marshal(rec.Log)
	if err != nil {
		return fmt.Errorf("encoding battle log: %w", err)
	}
	itemsJSON, err := json.Marshal(nonNil(rec.RewardItems))
	if err != nil {
		return fmt.Errorf("encoding reward items: %w", err)
	}
	err = q.QueryRow(ctx, `
		INSERT INTO battles
			(uid, hero_id, opponent_type, opponent_id, winner_id, rounds, log,
			 reward_exp, reward_gold, reward_items)
		VALUES ($1::uuid,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, created_at`,
		rec.UID.String(), rec.HeroID, string(rec.OpponentType), rec.OpponentID, rec.WinnerID,
		rec.Rounds, logJSON, rec.RewardExp, rec.RewardGold, itemsJSON,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting battle: %w", err)
	}
	return nil
}

// Battles returns every battle of heroID, oldest first.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *BattleRepository) Battles(ctx context.Context, heroID int64) ([]*arena.BattleRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, uid::text, hero_id, opponent_type, opponent_id, winner_id, rounds, log,
		       reward_exp, reward_gold, reward_items, created_at
		FROM battles WHERE hero_id = $1 ORDER BY id ASC`,
		heroID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing battles: %w", err)
	}
	defer rows.Close()

	out := make([]*arena.BattleRecord, 0)
	for rows.Next() {
		var (
			rec                arena.BattleRecord
			uid, opponentType  string
			logJSON, itemsJSON []byte
		)
		if err := rows.Scan(
			&rec.ID, &uid, &rec.HeroID, &opponentType, &rec.OpponentID, &rec.WinnerID, &rec.Rounds,
			&logJSON, &rec.RewardExp, &rec.RewardGold, &itemsJSON, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning battle row: %w", err)
		}
		if rec.UID, err = uuid.Parse(uid); err != nil {
			return nil, fmt.Errorf("battle %d uid: %w", rec.ID, err)
		}
		rec.OpponentType = arena.OpponentType(opponentType)
		if err := json.Unmarshal(logJSON, &rec.Log); err != nil {
			return nil, fmt.Errorf("decoding battle %d log: %w", rec.ID, err)
		}
		if err := json.Unmarshal(itemsJSON, &rec.RewardItems); err != nil {
			return nil, fmt.Errorf("decoding battle %d items: %w", rec.ID, err)
		}
		if len(rec.RewardItems) == 0 {
			rec.RewardItems = nil
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
