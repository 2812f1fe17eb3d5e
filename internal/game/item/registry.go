package item

import (
	"fmt"
	"slices"

	"github.com/cory-johannsen/herobound/internal/game/dice"
	"github.com/cory-johannsen/herobound/internal/game/gameerr"
)

// Registry holds item definitions indexed by id. It is read-only after construction.
type Registry struct {
	items map[string]*Def
	ids   []string
}

// NewRegistry builds a registry from defs.
//
// Postcondition: Returns an error if two defs share an id.
func NewRegistry(defs []*Def) (*Registry, error) {
	r := &Registry{items: make(map[string]*Def, len(defs))}
	for _, d := range defs {
		if _, exists := r.items[d.ID]; exists {
			return nil, fmt.Errorf("item: Registry: item ID %q already registered", d.ID)
		}
		r.items[d.ID] = d
		r.ids = append(r.ids, d.ID)
	}
	slices.Sort(r.ids)
	return r, nil
}

// Item returns the Def for id.
//
// Postcondition: Returns a *gameerr.NotFoundError when id is unknown.
func (r *Registry) Item(id string) (*Def, error) {
	d, ok := r.items[id]
	if !ok {
		return nil, gameerr.NotFound("item", id)
	}
	return d, nil
}

// Resolve looks up every id, failing on the first unknown one.
func (r *Registry) Resolve(ids []string) ([]*Def, error) {
	out := make([]*Def, 0, len(ids))
	for _, id := range ids {
		d, err := r.Item(id)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Random picks a uniformly random item id.
//
// Postcondition: Returns ("", false) only when the registry is empty.
func (r *Registry) Random(src dice.Source) (string, bool) {
	if len(r.ids) == 0 {
		return "", false
	}
	return r.ids[src.Intn(len(r.ids))], true
}

// Len returns the number of registered items.
func (r *Registry) Len() int { return len(r.ids) }
