package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/herobound/internal/game/arena"
)

// CreateBattle inserts rec and sets its ID and CreatedAt.
//
// Precondition: rec.HeroID must reference an existing hero; rec.UID must be unique.
func (s *Store) CreateBattle(ctx context.Context, rec *arena.BattleRecord) error {
	return insertBattle(ctx, s.db, rec)
}

func insertBattle(ctx context.Context, ex execer, rec *arena.BattleRecord) error {
	logJSON, err := json.Marshal(rec.Log)
	if err != nil {
		return fmt.Errorf("encoding battle log: %w", err)
	}
	items := rec.RewardItems
	if items == nil {
		items = []string{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding reward items: %w", err)
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	res, err := ex.ExecContext(ctx, `
		INSERT INTO battles
			(uid, hero_id, opponent_type, opponent_id, winner_id, rounds, log,
			 reward_exp, reward_gold, reward_items, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		rec.UID.String(), rec.HeroID, string(rec.OpponentType), rec.OpponentID, rec.WinnerID,
		rec.Rounds, string(logJSON), rec.RewardExp, rec.RewardGold, string(itemsJSON), toMillis(now),
	)
	if err != nil {
		return fmt.Errorf("inserting battle: %w", err)
	}
	if rec.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("reading battle id: %w", err)
	}
	rec.CreatedAt = now
	return nil
}

// Battles returns every battle of heroID, oldest first.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (s *Store) Battles(ctx context.Context, heroID int64) ([]*arena.BattleRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, uid, hero_id, opponent_type, opponent_id, winner_id, rounds, log,
		       reward_exp, reward_gold, reward_items, created_at
		FROM battles WHERE hero_id = ? ORDER BY id ASC`,
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
			logJSON, itemsJSON string
			created            int64
		)
		if err := rows.Scan(
			&rec.ID, &uid, &rec.HeroID, &opponentType, &rec.OpponentID, &rec.WinnerID, &rec.Rounds,
			&logJSON, &rec.RewardExp, &rec.RewardGold, &itemsJSON, &created,
		); err != nil {
			return nil, fmt.Errorf("scanning battle row: %w", err)
		}
		if rec.UID, err = uuid.Parse(uid); err != nil {
			return nil, fmt.Errorf("battle %d uid: %w", rec.ID, err)
		}
		rec.OpponentType = arena.OpponentType(opponentType)
		if err := json.Unmarshal([]byte(logJSON), &rec.Log); err != nil {
			return nil, fmt.Errorf("decoding battle %d log: %w", rec.ID, err)
		}
		if err := json.Unmarshal([]byte(itemsJSON), &rec.RewardItems); err != nil {
			return nil, fmt.Errorf("decoding battle %d items: %w", rec.ID, err)
		}
		if len(rec.RewardItems) == 0 {
			rec.RewardItems = nil
		}
		rec.CreatedAt = fromMillis(created)
		out = append(out, &rec)
	}
	return out, rows.Err()
}
