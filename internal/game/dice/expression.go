package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`^(\d*)d(\d+)([+-]\d+)?$`)

// Bounds accepted by Parse.
const (
	MaxCount    = 100
	MaxSides    = 1000
	MaxModifier = 1000
)

// Expression is a parsed "NdS+M" dice expression.
//
// Invariant: 1 <= Count <= MaxCount, 2 <= Sides <= MaxSides and
// |Modifier| <= MaxModifier after a successful Parse.
type Expression struct {
	Raw      string
	Count    int
	Sides    int
	Modifier int
}

// Parse parses "d6", "2d6", "2d6+3" or "3d4-1".
//
// Postcondition: Returns a valid Expression or a descriptive error.
func Parse(expr string) (Expression, error) {
	s := strings.ToLower(strings.TrimSpace(expr))
	m := exprPattern.FindStringSubmatch(s)
	if m == nil {
		return Expression{}, fmt.Errorf("dice: malformed expression %q", expr)
	}

	count := 1
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q: %w", expr, err)
		}
		count = n
	}
	if count < 1 || count > MaxCount {
		return Expression{}, fmt.Errorf("dice: die count in %q must be in [1, %d]", expr, MaxCount)
	}

	sides, err := strconv.Atoi(m[2])
	if err != nil {
		return Expression{}, fmt.Errorf("dice: invalid die sides in %q: %w", expr, err)
	}
	if sides < 2 || sides > MaxSides {
		return Expression{}, fmt.Errorf("dice: die sides in %q must be in [2, %d]", expr, MaxSides)
	}

	mod := 0
	if m[3] != "" {
		if mod, err = strconv.Atoi(m[3]); err != nil {
			return Expression{}, fmt.Errorf("dice: invalid modifier in %q: %w", expr, err)
		}
		if mod < -MaxModifier || mod > MaxModifier {
			return Expression{}, fmt.Errorf("dice: modifier in %q must be in [-%d, %d]", expr, MaxModifier, MaxModifier)
		}
	}

	return Expression{Raw: s, Count: count, Sides: sides, Modifier: mod}, nil
}

// Roll evaluates expr against src.
//
// Precondition: expr must come from Parse; src must be non-nil.
// Postcondition: len(result.Dice) == expr.Count.
func Roll(expr Expression, src Source) RollResult {
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = src.Intn(expr.Sides) + 1
	}
	return RollResult{Expression: expr.Raw, Dice: rolled, Modifier: expr.Modifier}
}
