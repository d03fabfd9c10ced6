// Package dice provides the randomness abstraction, expression parsing and
// pool resolution used by the sheet rules engine.
package dice

import (
	"fmt"
	"strings"
)

// RollResult holds the full audit trail for a single expression roll.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string `json:"expression"` // original expression string, e.g. "1d8+1d4+2"
	Dice       []int  `json:"dice"`       // individual die results in term order
	Modifier   int    `json:"modifier"`   // sum of flat terms (may be negative)
}

// Total returns the sum of all die results plus the modifier.
//
// Postcondition: return value == sum(r.Dice) + r.Modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String returns a human-readable audit string in the format:
//
//	"1d8+2 -> [5] +2 = 7"
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	return fmt.Sprintf("%s -> %v %+d = %d", r.Expression, r.Dice, r.Modifier, r.Total())
}

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Die rolls a single die with the given number of faces.
//
// Precondition: faces >= 1.
// Postcondition: 1 <= result <= faces.
func Die(faces int, src Source) int {
	return src.Intn(faces) + 1
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ",")
}
