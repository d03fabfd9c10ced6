package character

import "fmt"

// MaxLevel is the top of the percentage level scale.
const MaxLevel = 100

// basePoints is the pool below the first band.
const basePoints = 13

// pointBands lists pool sizes by inclusive level threshold, highest first.
var pointBands = []struct {
	level  int
	points int
}{
	{100, 30}, {95, 28}, {80, 26}, {65, 24}, {50, 22}, {35, 20}, {20, 18}, {5, 16},
}

// ClampLevel bounds level to [0, MaxLevel].
func ClampLevel(level int) int {
	return clamp(level, 0, MaxLevel)
}

// TotalPoints returns the allocatable attribute points at level.
//
// Postcondition: 13 below 5, otherwise the pool of the highest threshold <= level.
func TotalPoints(level int) int {
	for _, b := range pointBands {
		if level >= b.level {
			return b.points
		}
	}
	return basePoints
}

// RemainingPoints returns TotalPoints(level) minus the sum of every attribute.
func RemainingPoints(level int, attrs Attributes) int {
	return TotalPoints(level) - attrs.Spent()
}

// AllocateAttribute returns a copy of attrs with delta added to id.
//
// Precondition: attrs must be non-nil.
// Postcondition: on error attrs is untouched and the returned map is nil.
// Increases fail with ErrPoolExhausted when RemainingPoints < delta; any change
// leaving [MinValue, MaxValue] fails with ErrAttributeOutOfRange.
func AllocateAttribute(attrs Attributes, level int, id AttributeID, delta int) (Attributes, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAttribute, id)
	}
	next := attrs.Get(id) + delta
	if next < MinValue || next > MaxValue {
		return nil, fmt.Errorf("%w: %s would become %d", ErrAttributeOutOfRange, id, next)
	}
	if delta > 0 {
		if remaining := RemainingPoints(level, attrs); remaining < delta {
			return nil, fmt.Errorf("%w: %d remaining, %d requested", ErrPoolExhausted, remaining, delta)
		}
	}
	out := attrs.Clone()
	out[id] = next
	return out, nil
}
