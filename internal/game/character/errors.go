package character

import "errors"

// Rejections returned by the rules engine. Every rejection leaves its inputs unchanged.
var (
	// ErrPoolExhausted is returned when an attribute increase exceeds the remaining point pool.
	ErrPoolExhausted = errors.New("point pool exhausted")
	// ErrAttributeOutOfRange is returned when a component would leave [-5, 5].
	ErrAttributeOutOfRange = errors.New("value out of range")
	// ErrDieUnavailable is returned when a die face is not unlocked at the current level.
	ErrDieUnavailable = errors.New("die unavailable")
	// ErrDieCapReached is returned when the active-die cap for a face is already met.
	ErrDieCapReached = errors.New("die cap reached")
	// ErrUnknownAttribute is returned for an attribute id outside the registry.
	ErrUnknownAttribute = errors.New("unknown attribute")
	// ErrUnknownSkill is returned for a skill id outside the registry.
	ErrUnknownSkill = errors.New("unknown skill")
	// ErrInvalidChoice is returned when a skill choice is not allowed for the selection.
	ErrInvalidChoice = errors.New("invalid choice")
)
