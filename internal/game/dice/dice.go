// Package dice provides the randomness abstraction shared by combat and quest
// resolution, plus a small dice-expression evaluator for authored content.
package dice

import "fmt"

// Source is the randomness provider for every roll in the engine.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Chance reports whether an event with the given percent probability fires.
// Percentages at or above 100 always fire and those at or below 0 never do.
//
// Precondition: src must be non-nil.
func Chance(src Source, percent int) bool {
	return src.Intn(100) < percent
}

// Between returns base plus a uniform draw in [0, spread). A spread <= 0 yields base.
//
// Precondition: src must be non-nil.
func Between(src Source, base, spread int) int {
	if spread <= 0 {
		return base
	}
	return base + src.Intn(spread)
}

// RollResult holds the audit trail for a single dice-expression evaluation.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string
	Dice       []int
	Modifier   int
}

// Total returns the sum of all die results plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String renders the roll as "2d6+3 [4 5] +3 = 12".
func (r RollResult) String() string {
	return fmt.Sprintf("%s %v %+d = %d", r.Expression, r.Dice, r.Modifier, r.Total())
}
