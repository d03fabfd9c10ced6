package dice

// CritPolicy determines how a critical hit scales damage.
type CritPolicy int

const (
	// CritRollTwice rolls the damage expression twice and sums both results.
	CritRollTwice CritPolicy = iota
	// CritDouble multiplies one damage roll by 2.
	CritDouble
	// CritTriple multiplies one damage roll by 3.
	CritTriple
)

// String returns the policy's short name.
func (p CritPolicy) String() string {
	switch p {
	case CritDouble:
		return "x2"
	case CritTriple:
		return "x3"
	default:
		return "roll-twice"
	}
}

// CriticalResult is the audit trail of a critical damage roll.
type CriticalResult struct {
	Policy CritPolicy   `json:"policy"`
	Rolls  []RollResult `json:"rolls"`
	Total  int          `json:"total"`
}

// RollCritical rolls expr under policy.
//
// Precondition: src must be non-nil.
// Postcondition: CritRollTwice yields two rolls summed; CritDouble and CritTriple
// yield one roll multiplied by 2 or 3.
func RollCritical(expr Expression, policy CritPolicy, src Source) CriticalResult {
	first := Roll(expr, src)
	switch policy {
	case CritDouble:
		return CriticalResult{Policy: policy, Rolls: []RollResult{first}, Total: first.Total() * 2}
	case CritTriple:
		return CriticalResult{Policy: policy, Rolls: []RollResult{first}, Total: first.Total() * 3}
	default:
		second := Roll(expr, src)
		return CriticalResult{Policy: policy, Rolls: []RollResult{first, second}, Total: first.Total() + second.Total()}
	}
}
