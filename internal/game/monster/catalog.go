package monster

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/cory-johannsen/herobound/internal/game/dice"
	"github.com/cory-johannsen/herobound/internal/game/gameerr"
)

// nearestPoolSize is how many closest-level templates are considered when no
// template matches the requested level exactly.
const nearestPoolSize = 3

// Catalog indexes monster templates by id. All methods are safe for concurrent use.
type Catalog struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewCatalog builds a catalog from templates.
//
// Postcondition: Returns an error if two templates share an id.
func NewCatalog(templates []*Template) (*Catalog, error) {
	c := &Catalog{templates: make(map[string]*Template, len(templates))}
	for _, t := range templates {
		if err := c.Register(t); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Register adds t to the catalog.
//
// Precondition: t must be non-nil and valid.
func (c *Catalog) Register(t *Template) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.templates[t.ID]; exists {
		return fmt.Errorf("monster: template id %q already registered", t.ID)
	}
	c.templates[t.ID] = t
	return nil
}

// ByID returns the template with the given id.
//
// Postcondition: Returns a *gameerr.NotFoundError when the id is unknown.
func (c *Catalog) ByID(id string) (*Template, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.templates[id]
	if !ok {
		return nil, gameerr.NotFound("monster", id)
	}
	return t, nil
}

// All returns every template ordered by level then id.
func (c *Catalog) All() []*Template {
	c.mu.RLock()
	out := make([]*Template, 0, len(c.templates))
	for _, t := range c.templates {
		out = append(out, t)
	}
	c.mu.RUnlock()
	slices.SortFunc(out, func(a, b *Template) int {
		if n := cmp.Compare(a.Level, b.Level); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Len returns the number of templates.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.templates)
}

// NearestLevel picks a random template whose level equals level. When none
// exists it picks among the three templates closest in level.
//
// Postcondition: Returns (nil, false) only when the catalog is empty.
func (c *Catalog) NearestLevel(level int, src dice.Source) (*Template, bool) {
	all := c.All()
	if len(all) == 0 {
		return nil, false
	}

	var pool []*Template
	for _, t := range all {
		if t.Level == level {
			pool = append(pool, t)
		}
	}
	if len(pool) == 0 {
		pool = slices.Clone(all)
		slices.SortStableFunc(pool, func(a, b *Template) int {
			return cmp.Compare(distance(a.Level, level), distance(b.Level, level))
		})
		pool = pool[:min(nearestPoolSize, len(pool))]
	}
	return pool[src.Intn(len(pool))], true
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
