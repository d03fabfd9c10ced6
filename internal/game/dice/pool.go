package dice

import "fmt"

// Keep selects which die of a pool decides the outcome.
type Keep int

const (
	// KeepHighest keeps the best die of the pool.
	KeepHighest Keep = iota
	// KeepLowest keeps the worst die of the pool.
	KeepLowest
)

// String returns "highest" or "lowest".
func (k Keep) String() string {
	if k == KeepHighest {
		return "highest"
	}
	return "lowest"
}

// PoolSides is the face count of every die in a resolution pool.
const PoolSides = 20

// PoolSize returns how many d20s a modifier m rolls.
//
// Postcondition: m > 0 yields m; m == 0 yields 2; m < 0 yields |m|+2.
func PoolSize(m int) int {
	switch {
	case m > 0:
		return m
	case m == 0:
		return 2
	default:
		return -m + 2
	}
}

// KeepFor returns KeepHighest only for strictly positive modifiers.
func KeepFor(m int) Keep {
	if m > 0 {
		return KeepHighest
	}
	return KeepLowest
}

// PoolResult is the audit trail of one pool roll.
type PoolResult struct {
	Count int   `json:"count"`
	Keep  Keep  `json:"keep"`
	Rolls []int `json:"rolls"`
	Kept  int   `json:"kept"`
}

// String renders "3d20 keep highest [4,17,9] = 17".
func (p PoolResult) String() string {
	return fmt.Sprintf("%dd%d keep %s [%s] = %d", p.Count, PoolSides, p.Keep, joinInts(p.Rolls), p.Kept)
}

// RollPool rolls count d20s and keeps the highest or lowest.
//
// Precondition: count >= 1; src must be non-nil.
// Postcondition: len(result.Rolls) == count and result.Kept is max or min of Rolls.
func RollPool(count int, keep Keep, src Source) PoolResult {
	if count < 1 {
		panic("dice: RollPool called with count < 1")
	}
	rolls := make([]int, count)
	for i := range rolls {
		rolls[i] = Die(PoolSides, src)
	}
	kept := rolls[0]
	for _, r := range rolls[1:] {
		if (keep == KeepHighest && r > kept) || (keep == KeepLowest && r < kept) {
			kept = r
		}
	}
	return PoolResult{Count: count, Keep: keep, Rolls: rolls, Kept: kept}
}

// RollModified rolls the pool implied by modifier m.
//
// Postcondition: equivalent to RollPool(PoolSize(m), KeepFor(m), src).
func RollModified(m int, src Source) PoolResult {
	return RollPool(PoolSize(m), KeepFor(m), src)
}
