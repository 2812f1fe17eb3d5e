package hero

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/herobound/internal/game/stats"
)

// MaxCreationStat is the highest value any base stat may have at creation.
const MaxCreationStat = 100

// Build constructs a new level 1 hero with full health.
//
// Precondition: name, race and class must be non-empty; every stat must be in [1, 100].
// Postcondition: Returns a Hero ready for persistence, or a non-nil error listing every violation.
func Build(name, race, class string, v stats.Values) (*Hero, error) {
	var errs []error
	for _, f := range []struct{ name, val string }{{"name", name}, {"race", race}, {"class", class}} {
		if strings.TrimSpace(f.val) == "" {
			errs = append(errs, fmt.Errorf("%s must not be empty", f.name))
		}
	}
	for _, f := range v.Fields() {
		if f.Value < 1 || f.Value > MaxCreationStat {
			errs = append(errs, fmt.Errorf("%s must be in [1, %d], got %d", f.Name, MaxCreationStat, f.Value))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("building hero: %w", errors.Join(errs...))
	}

	block, err := stats.FromValues(v)
	if err != nil {
		return nil, err
	}
	return &Hero{
		Name:   strings.TrimSpace(name),
		Race:   race,
		Class:  class,
		Level:  1,
		Health: block.BaseHealth(),
		Stats:  block,
	}, nil
}
