package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InventoryRepository stores item quantities per hero.
type InventoryRepository struct {
	db *pgxpool.Pool
}

// NewInventoryRepository creates an InventoryRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewInventoryRepository(db *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// AddItems increments the quantity of each id by one per occurrence, in one transaction.
//
// Precondition: heroID must reference an existing hero.
func (r *InventoryRepository) AddItems(ctx context.Context, heroID int64, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return addItems(ctx, tx, heroID, itemIDs)
	})
}

func addItems(ctx context.Context, q querier, heroID int64, itemIDs []string) error {
	for _, id := range itemIDs {
		if _, err := q.Exec(ctx, `
			INSERT INTO hero_items (hero_id, item_id, quantity) VALUES ($1, $2, 1)
			ON CONFLICT (hero_id, item_id) DO UPDATE SET quantity = hero_items.quantity + 1`,
			heroID, id,
		); err != nil {
			return fmt.Errorf("adding item %q to hero %d: %w", id, heroID, err)
		}
	}
	return nil
}

// Items returns the hero's item quantities keyed by item id.
func (r *InventoryRepository) Items(ctx context.Context, heroID int64) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `SELECT item_id, quantity FROM hero_items WHERE hero_id = $1`, heroID)
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
