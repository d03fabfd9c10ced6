package character

import (
	"fmt"

	"github.com/cory-johannsen/dvh/internal/game/dice"
)

// Face is the number of sides on a skill die.
type Face int

const (
	D4  Face = 4
	D6  Face = 6
	D8  Face = 8
	D10 Face = 10
)

// BonusDice holds the current result of each optional extra die on a skill.
// Zero means unrolled.
type BonusDice struct {
	D4  int `json:"d4,omitempty" yaml:"d4,omitempty"`
	D6  int `json:"d6,omitempty" yaml:"d6,omitempty"`
	D8  int `json:"d8,omitempty" yaml:"d8,omitempty"`
	D10 int `json:"d10,omitempty" yaml:"d10,omitempty"`
}

// Get returns the result held for face.
func (b BonusDice) Get(face Face) int {
	switch face {
	case D4:
		return b.D4
	case D6:
		return b.D6
	case D8:
		return b.D8
	case D10:
		return b.D10
	}
	return 0
}

// With returns a copy of b holding v for face.
func (b BonusDice) With(face Face, v int) BonusDice {
	switch face {
	case D4:
		b.D4 = v
	case D6:
		b.D6 = v
	case D8:
		b.D8 = v
	case D10:
		b.D10 = v
	}
	return b
}

var bonusDieTable = []struct {
	face   Face
	unlock int
	cap    int
}{
	{D4, 15, 5},
	{D6, 45, 6},
	{D8, 75, 7},
	{D10, 100, 8},
}

// BonusFaces returns the bonus die faces in unlock order.
func BonusFaces() []Face {
	out := make([]Face, len(bonusDieTable))
	for i, row := range bonusDieTable {
		out[i] = row.face
	}
	return out
}

// BonusDieUnlocked reports whether face may be held at level.
func BonusDieUnlocked(face Face, level int) bool {
	for _, row := range bonusDieTable {
		if row.face == face {
			return level >= row.unlock
		}
	}
	return false
}

// BonusDieCap returns how many skills may hold an active die of face.
func BonusDieCap(face Face) (int, bool) {
	for _, row := range bonusDieTable {
		if row.face == face {
			return row.cap, true
		}
	}
	return 0, false
}

// AvailableBonusDice returns the cap of every face unlocked at level.
func AvailableBonusDice(level int) map[Face]int {
	out := make(map[Face]int)
	for _, row := range bonusDieTable {
		if level >= row.unlock {
			out[row.face] = row.cap
		}
	}
	return out
}

// CountBonusDie returns how many skills hold a nonzero die of face.
func CountBonusDie(skills Skills, face Face) int {
	n := 0
	for _, s := range skills {
		if s.Bonus.Get(face) != 0 {
			n++
		}
	}
	return n
}

// manualDieBands lists the manual d6 cap by inclusive level threshold, highest first.
var manualDieBands = []struct {
	level int
	cap   int
}{
	{100, 25}, {95, 23}, {75, 21}, {55, 19}, {35, 17}, {15, 15}, {5, 13},
}

const manualDieBase = 10

// ManualDieCap returns how many skills may hold a nonzero manual d6 at level,
// before any class extra slots.
func ManualDieCap(level int) int {
	for _, b := range manualDieBands {
		if level >= b.level {
			return b.cap
		}
	}
	return manualDieBase
}

// CountManualDie returns how many skills hold a nonzero manual d6.
func CountManualDie(skills Skills) int {
	n := 0
	for _, s := range skills {
		if s.Die != 0 {
			n++
		}
	}
	return n
}

// DieRoll reports the outcome of a skill die action.
type DieRoll struct {
	Skill   SkillID `json:"skill"`
	Face    Face    `json:"face"`
	Value   int     `json:"value"`
	Cleared bool    `json:"cleared"`
}

// RollBonusDie rolls or clears the extra die of face on skill id.
//
// A nonzero die is cleared instead of re-rolled. A new roll fails with
// ErrDieUnavailable below the face's unlock level and ErrDieCapReached when the
// face's cap is already met.
// Postcondition: on error skills is untouched and the returned map is nil.
func RollBonusDie(skills Skills, id SkillID, face Face, level int, src dice.Source) (Skills, DieRoll, error) {
	if !id.Valid() {
		return nil, DieRoll{}, fmt.Errorf("%w: %q", ErrUnknownSkill, id)
	}
	limit, known := BonusDieCap(face)
	if !known || !BonusDieUnlocked(face, level) {
		return nil, DieRoll{}, fmt.Errorf("%w: d%d at level %d", ErrDieUnavailable, face, level)
	}
	sk := skills[id]
	out := skills.Clone()
	if sk.Bonus.Get(face) != 0 {
		sk.Bonus = sk.Bonus.With(face, 0)
		out[id] = sk
		return out, DieRoll{Skill: id, Face: face, Cleared: true}, nil
	}
	if CountBonusDie(skills, face) >= limit {
		return nil, DieRoll{}, fmt.Errorf("%w: d%d cap %d", ErrDieCapReached, face, limit)
	}
	v := dice.Die(int(face), src)
	sk.Bonus = sk.Bonus.With(face, v)
	out[id] = sk
	return out, DieRoll{Skill: id, Face: face, Value: v}, nil
}

// RollSkillDie rolls or clears the manual d6 on skill id. The cap is
// ManualDieCap(level) plus the class's extraSlots.
//
// Postcondition: on error skills is untouched and the returned map is nil.
func RollSkillDie(skills Skills, id SkillID, level, extraSlots int, src dice.Source) (Skills, DieRoll, error) {
	if !id.Valid() {
		return nil, DieRoll{}, fmt.Errorf("%w: %q", ErrUnknownSkill, id)
	}
	sk := skills[id]
	out := skills.Clone()
	if sk.Die != 0 {
		sk.Die = 0
		out[id] = sk
		return out, DieRoll{Skill: id, Face: D6, Cleared: true}, nil
	}
	limit := ManualDieCap(level) + extraSlots
	if CountManualDie(skills) >= limit {
		return nil, DieRoll{}, fmt.Errorf("%w: d6 cap %d", ErrDieCapReached, limit)
	}
	sk.Die = dice.Die(int(D6), src)
	out[id] = sk
	return out, DieRoll{Skill: id, Face: D6, Value: sk.Die}, nil
}
