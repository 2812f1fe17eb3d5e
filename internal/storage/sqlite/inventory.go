package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// AddItems increments the quantity of each id by one per occurrence, in one transaction.
//
// Precondition: heroID must reference an existing hero.
func (s *Store) AddItems(ctx context.Context, heroID int64, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return addItems(ctx, tx, heroID, itemIDs)
	})
}

func addItems(ctx context.Context, ex execer, heroID int64, itemIDs []string) error {
	for _, id := range itemIDs {
		if _, err := ex.ExecContext(ctx, `
			INSERT INTO hero_items (hero_id, item_id, quantity) VALUES (?, ?, 1)
			ON CONFLICT (hero_id, item_id) DO UPDATE SET quantity = hero_items.quantity + 1`,
			heroID, id,
		); err != nil {
			return fmt.Errorf("adding item %q to hero %d: %w", id, heroID, err)
		}
	}
	return nil
}

// Items returns the hero's item quantities keyed by item id.
func (s *Store) Items(ctx context.Context, heroID int64) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT item_id, quantity FROM hero_items WHERE hero_id = ?`, heroID)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			id  string
			qty int
		)
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, fmt.Errorf("scanning item row: %w", err)
		}
		out[id] = qty
	}
	return out, rows.Err()
}
