package quest

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/cory-johannsen/herobound/internal/game/gameerr"
)

// levelWindow is how far below and above a hero's level quest difficulty may be.
const levelWindow = 2

// Registry indexes quests by id. It is read-only after construction.
type Registry struct {
	quests map[string]*Quest
	order  []*Quest
}

// NewRegistry builds a registry.
//
// Postcondition: Returns an error when two quests share an id.
func NewRegistry(quests []*Quest) (*Registry, error) {
	r := &Registry{quests: make(map[string]*Quest, len(quests))}
	for _, q := range quests {
		if _, exists := r.quests[q.ID]; exists {
			return nil, fmt.Errorf("quest: id %q already registered", q.ID)
		}
		r.quests[q.ID] = q
		r.order = append(r.order, q)
	}
	slices.SortFunc(r.order, func(a, b *Quest) int {
		if n := cmp.Compare(a.Difficulty, b.Difficulty); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return r, nil
}

// Quest returns the quest with the given id.
//
// Postcondition: Returns a *gameerr.NotFoundError when id is unknown.
func (r *Registry) Quest(id string) (*Quest, error) {
	q, ok := r.quests[id]
	if !ok {
		return nil, gameerr.NotFound("quest", id)
	}
	return q, nil
}

// All returns every quest ordered by difficulty then id.
func (r *Registry) All() []*Quest {
	return slices.Clone(r.order)
}

// ForHeroLevel returns quests with difficulty in [max(1, level-2), level+2].
func (r *Registry) ForHeroLevel(level int) []*Quest {
	lo, hi := max(1, level-levelWindow), level+levelWindow
	var out []*Quest
	for _, q := range r.order {
		if q.Difficulty >= lo && q.Difficulty <= hi {
			out = append(out, q)
		}
	}
	return out
}

// CheckReferences verifies that every monster and item id named by a quest exists.
//
// Postcondition: Returns nil or an error listing every dangling reference.
func (r *Registry) CheckReferences(monsters MonsterCatalog, items ItemCatalog) error {
	hasItem := func(id string) bool { _, err := items.Resolve([]string{id}); return err == nil }
	var errs []error
	for _, q := range r.order {
		for _, id := range q.RewardItems {
			if !hasItem(id) {
				errs = append(errs, fmt.Errorf("quest %q: reward item %q not found", q.ID, id))
			}
		}
		for _, e := range q.Encounters {
			if e.Monster != nil && e.Monster.MonsterID != "" && !hasMonster(monsters, e.Monster.MonsterID) {
				errs = append(errs, fmt.Errorf("quest %q position %d: monster %q not found", q.ID, e.Position, e.Monster.MonsterID))
			}
			if e.Treasure != nil {
				for _, id := range e.Treasure.Items {
					if !hasItem(id) {
						errs = append(errs, fmt.Errorf("quest %q position %d: item %q not found", q.ID, e.Position, id))
					}
				}
			}
		}
	}
	return errors.Join(errs...)
}

func hasMonster(monsters MonsterCatalog, id string) bool {
	_, err := monsters.ByID(id)
	return err == nil
}
