package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cory-johannsen/herobound/internal/game/gameerr"
	"github.com/cory-johannsen/herobound/internal/game/hero"
	"github.com/cory-johannsen/herobound/internal/game/stats"
)

const heroColumns = `id, name, race, class, level, experience, money, health,
	strength, magic, agility, speed, charisma, luck, created_at, updated_at`

// CreateHero inserts h and sets its ID and timestamps.
//
// Precondition: h.ID must be zero.
func (s *Store) CreateHero(ctx context.Context, h *hero.Hero) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	v := h.Stats.Values()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO heroes
			(name, race, class, level, experience, money, health,
			 strength, magic, agility, speed, charisma, luck, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		h.Name, h.Race, h.Class, h.Level, h.Experience, h.Money, h.Health,
		v.Strength, v.Magic, v.Agility, v.Speed, v.Charisma, v.Luck,
		toMillis(now), toMillis(now),
	)
	if err != nil {
		return fmt.Errorf("inserting hero: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading hero id: %w", err)
	}
	h.ID = id
	h.CreatedAt = now
	h.UpdatedAt = now
	return nil
}

// Hero retrieves a hero by id.
//
// Postcondition: Returns a *gameerr.NotFoundError when no row matches.
func (s *Store) Hero(ctx context.Context, id int64) (*hero.Hero, error) {
	h, err := scanHero(s.db.QueryRowContext(ctx, `SELECT `+heroColumns+` FROM heroes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
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
func (s *Store) SaveHero(ctx context.Context, h *hero.Hero) error {
	return saveHero(ctx, s.db, h)
}

func saveHero(ctx context.Context, ex execer, h *hero.Hero) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	v := h.Stats.Values()
	res, err := ex.ExecContext(ctx, `
		UPDATE heroes SET
			name = ?, race = ?, class = ?, level = ?, experience = ?, money = ?, health = ?,
			strength = ?, magic = ?, agility = ?, speed = ?, charisma = ?, luck = ?,
			updated_at = ?
		WHERE id = ?`,
		h.Name, h.Race, h.Class, h.Level, h.Experience, h.Money, h.Health,
		v.Strength, v.Magic, v.Agility, v.Speed, v.Charisma, v.Luck,
		toMillis(now), h.ID,
	)
	if err != nil {
		return fmt.Errorf("updating hero %d: %w", h.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating hero %d: %w", h.ID, err)
	}
	if n == 0 {
		return gameerr.NotFound("hero", hero.CombatantID(h.ID))
	}
	h.UpdatedAt = now
	return nil
}

func scanHero(row *sql.Row) (*hero.Hero, error) {
	var (
		h                hero.Hero
		v                stats.Values
		created, updated int64
	)
	if err := row.Scan(
		&h.ID, &h.Name, &h.Race, &h.Class, &h.Level, &h.Experience, &h.Money, &h.Health,
		&v.Strength, &v.Magic, &v.Agility, &v.Speed, &v.Charisma, &v.Luck,
		&created, &updated,
	); err != nil {
		return nil, err
	}
	block, err := stats.FromValues(v)
	if err != nil {
		return nil, fmt.Errorf("hero %d: %w", h.ID, err)
	}
	h.Stats = block
	h.CreatedAt = fromMillis(created)
	h.UpdatedAt = fromMillis(updated)
	return &h, nil
}
