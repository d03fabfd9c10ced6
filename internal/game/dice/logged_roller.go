package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged dice rolling.
// All rolls are logged at debug level.
//
// Roller itself satisfies Source so it can be handed to the rules engine.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Intn delegates to the underlying Source.
func (r *Roller) Intn(n int) int {
	return r.src.Intn(n)
}

// Roll evaluates expr and logs the result at debug level.
//
// Precondition: expr must come from Parse.
func (r *Roller) Roll(expr Expression) RollResult {
	result := Roll(expr, r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result
}

// RollExpr parses expr and rolls it, logging the result.
//
// Postcondition: Returns a RollResult or a parse error.
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return r.Roll(e), nil
}

// RollModified rolls the d20 pool for modifier m and logs it.
func (r *Roller) RollModified(m int) PoolResult {
	result := RollModified(m, r.src)
	r.logger.Debug("pool roll",
		zap.Int("modifier", m),
		zap.Int("count", result.Count),
		zap.Stringer("keep", result.Keep),
		zap.Ints("rolls", result.Rolls),
		zap.Int("kept", result.Kept),
	)
	return result
}

// RollCritical rolls expr under policy and logs the outcome.
func (r *Roller) RollCritical(expr Expression, policy CritPolicy) CriticalResult {
	result := RollCritical(expr, policy, r.src)
	r.logger.Debug("critical roll",
		zap.String("expression", expr.Raw),
		zap.Stringer("policy", policy),
		zap.Int("total", result.Total),
	)
	return result
}
