package character

import "github.com/cory-johannsen/dvh/internal/game/dice"

// CheckResult is the outcome of an attribute or skill check.
type CheckResult struct {
	Attribute  int             `json:"attribute"`
	SkillTotal int             `json:"skill_total"`
	Pool       dice.PoolResult `json:"pool"`
	Result     int             `json:"result"`
}

// RollAttributeCheck rolls the pool for value and returns the kept die.
//
// Postcondition: result.Pool.Count == dice.PoolSize(value) and Result == Pool.Kept.
func RollAttributeCheck(value int, src dice.Source) CheckResult {
	pool := dice.RollModified(value, src)
	return CheckResult{Attribute: value, Pool: pool, Result: pool.Kept}
}

// RollSkillCheck sizes the pool by the governing attribute value, keeps the best
// die only when attribute plus skill total is positive, and adds the skill total.
//
// Postcondition: result.Pool.Count == dice.PoolSize(attrValue) and
// Result == Pool.Kept + skillTotal.
func RollSkillCheck(attrValue, skillTotal int, src dice.Source) CheckResult {
	pool := dice.RollPool(dice.PoolSize(attrValue), dice.KeepFor(attrValue+skillTotal), src)
	return CheckResult{
		Attribute:  attrValue,
		SkillTotal: skillTotal,
		Pool:       pool,
		Result:     pool.Kept + skillTotal,
	}
}
