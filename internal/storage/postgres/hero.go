package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/herobound/internal/game/gameerr"
	"github.com/cory-johannsen/herobound/internal/game/hero"
	"github.com/cory-johannsen/herobound/internal/game/stats"
)

const heroColumns = `id, name, race, class, level, experience, money, health,
	strength, magic, agility, speed, charisma, luck, created_at, updated_at`

// HeroRepository provides hero persistence operations.
type HeroRepository struct {
	db *pgxpool.Pool
}

// NewHeroRepository creates a HeroRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewHeroRepository(db *pgxpool.Pool) *HeroRepository {
	return &HeroRepository{db: db}
}

// CreateHero inserts h and sets its ID and timestamps.
//
// Precondition: h.ID must be zero.
func (r *HeroRepository) CreateHero(ctx context.Context, h *hero.Hero) error {
	v := h.Stats.Values()
	err := r.db.QueryRow(ctx, `
		INSERT INTO heroes
			(name, race, class, level, experience, money, health,
			 strength, magic, agility, speed, charisma, luck)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING id, created_at, updated_at`,
		h.Name, h.Race, h.Class, h.Level, h.Experience, h.Money, h.Health,
		v.Strength, v.Magic, v.Agility, v.Speed, v.Charisma, v.Luck,
	).Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting hero: %w", err)
	}
	return nil
}

// Hero retrieves a hero by id.
//
// Postcondition: Returns a *gameerr.NotFoundError when no row matches.
func (r *HeroRepository) Hero(ctx context.Context, id int64) (*hero.Hero, error) {
	h, err := scanHero(r.db.QueryRow(ctx, `SELECT `+heroColumns+` FROM heroes WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, gameerr.NotFound("hero", hero.CombatantID(id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying hero %d: %w", id, err)
	}
	return h, nil
}

// SaveHero writes every mutable hero column and refreshes h.UpdatedAt.
//
// Postcondition: Returns a *gameerr.NotFoundError when h.ID does not exist.
func (r *HeroRepository) SaveHero(ctx context.Context, h *hero.Hero) error {
	return saveHero(ctx, r.db, h)
}

func saveHero(ctx context.Context, q querier, h *hero.Hero) error {
	v := h.Stats.Values()
	err := q.QueryRow(ctx, `
		UPDATE heroes SET
			name = $2, race = $3, class = $4, level = $5, experience = $6, money = $7, health = $8,
			strength = $9, magic = $10, agility = $11, speed = $12, charisma = $13, luck = $14,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		h.ID, h.Name, h.Race, h.Class, h.Level, h.Experience, h.Money, h.Health,
		v.Strength, v.Magic, v.Agility, v.Speed, v.Charisma, v.Luck,
	).Scan(&h.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return gameerr.NotFound("hero", hero.CombatantID(h.ID))
	}
	if err != nil {
		return fmt.Errorf("updating hero %d: %w", h.ID, err)
	}
	return nil
}

func scanHero(row pgx.Row) (*hero.Hero, error) {
	var (
		h hero.Hero
		v stats.Values
	)
	if err := row.Scan(
		&h.ID, &h.Name, &h.Race, &h.Class, &h.Level, &h.Experience, &h.Money, &h.Health,
		&v.Strength, &v.Magic, &v.Agility, &v.Speed, &v.Charisma, &v.Luck,
		&h.CreatedAt, &h.UpdatedAt,
	); err != nil {
		return nil, err
	}
	block, err := stats.FromValues(v)
	if err != nil {
		return nil, fmt.Errorf("hero %d: %w", h.ID, err)
	}
	h.Stats = block
	return &h, nil
}
