package character

import (
	"fmt"
	"slices"
)

// BonusKind identifies a selection source that writes into skills.
type BonusKind string

const (
	KindRace        BonusKind = "race"
	KindClass       BonusKind = "class"
	KindOrigin      BonusKind = "origin"
	KindClassChoice BonusKind = "class_choice"
)

// Kinds returns every bonus kind in application order.
func Kinds() []BonusKind {
	return []BonusKind{KindRace, KindClass, KindOrigin, KindClassChoice}
}

// Valid reports whether k is a known bonus kind.
func (k BonusKind) Valid() bool {
	return slices.Contains(Kinds(), k)
}

// StatBonus carries the flat derived-stat contributions of a class record.
type StatBonus struct {
	HP            int `json:"hp,omitempty" yaml:"hp,omitempty"`
	Mana          int `json:"mana,omitempty" yaml:"mana,omitempty"`
	Sanity        int `json:"sanity,omitempty" yaml:"sanity,omitempty"`
	Defense       int `json:"defense,omitempty" yaml:"defense,omitempty"`
	ExtraDieSlots int `json:"extra_die_slots,omitempty" yaml:"extra_die_slots,omitempty"`
}

// BonusRecord is the normalized effect of one race, class or origin selection.
// SkillPenalties values are negative.
type BonusRecord struct {
	ID             string          `json:"id"`
	SkillBonuses   map[SkillID]int `json:"skill_bonuses,omitempty"`
	SkillPenalties map[SkillID]int `json:"skill_penalties,omitempty"`
	SoulDelta      *int            `json:"soul_delta,omitempty"`
	Stats          StatBonus       `json:"stats"`
}

// LedgerEntry is an applied record plus the per-skill change it actually made
// after clamping.
type LedgerEntry struct {
	Record  BonusRecord     `json:"record"`
	Applied map[SkillID]int `json:"applied"`
}

// Ledger tracks at most one applied record per kind.
type Ledger map[BonusKind]LedgerEntry

// Clone returns a copy of l. Entries are treated as immutable once stored.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// Record returns the record applied for kind.
func (l Ledger) Record(kind BonusKind) (BonusRecord, bool) {
	e, ok := l[kind]
	return e.Record, ok
}

// SelectionID returns the id of the record applied for kind, "" when none.
func (l Ledger) SelectionID(kind BonusKind) string {
	return l[kind].Record.ID
}

// component returns the skill field kind writes into. The class choice shares
// the class field so both stay inside one [MinValue, MaxValue] clamp.
func component(s *Skill, kind BonusKind) *int {
	switch kind {
	case KindRace:
		return &s.Race
	case KindClass, KindClassChoice:
		return &s.Class
	case KindOrigin:
		return &s.Origin
	}
	return nil
}

// ApplyBonus applies record as the kind entry. Any record already applied for
// kind is reversed first; applying a class also reverses the class choice.
// Each delta is added to the kind's skill component and clamped to
// [MinValue, MaxValue]. Unregistered skill ids are ignored.
//
// Precondition: ledger and skills must be non-nil.
// Postcondition: inputs are untouched; an unknown kind returns unchanged copies.
func ApplyBonus(ledger Ledger, skills Skills, kind BonusKind, record BonusRecord) (Ledger, Skills) {
	if !kind.Valid() {
		return ledger.Clone(), skills.Clone()
	}
	l, s := RemoveBonus(ledger, skills, kind)
	applied := make(map[SkillID]int)
	apply := func(deltas map[SkillID]int) {
		for id, delta := range deltas {
			if !id.Valid() {
				continue
			}
			sk := s[id]
			field := component(&sk, kind)
			next := clamp(*field+delta, MinValue, MaxValue)
			applied[id] += next - *field
			*field = next
			s[id] = sk
		}
	}
	apply(record.SkillBonuses)
	apply(record.SkillPenalties)
	l[kind] = LedgerEntry{Record: record, Applied: applied}
	return l, s
}

// RemoveBonus reverses the kind entry. Reversing a positive change never takes
// the component below 0 and reversing a negative change never takes it above 0.
// The class choice sits on top of the class record, so removing the class
// removes the choice first, and the choice itself is reversed exactly.
//
// Precondition: ledger and skills must be non-nil.
// Postcondition: inputs are untouched; the kind entry is absent from the result.
func RemoveBonus(ledger Ledger, skills Skills, kind BonusKind) (Ledger, Skills) {
	if kind == KindClass {
		ledger, skills = RemoveBonus(ledger, skills, KindClassChoice)
	}
	l, s := ledger.Clone(), skills.Clone()
	entry, ok := l[kind]
	if !ok {
		return l, s
	}
	for id, delta := range entry.Applied {
		sk := s[id]
		field := component(&sk, kind)
		next := *field - delta
		switch {
		case kind == KindClassChoice:
			// exact: nothing else writes the class field while a choice is applied
		case delta > 0:
			next = max(0, next)
		case delta < 0:
			next = min(0, next)
		}
		*field = clamp(next, MinValue, MaxValue)
		s[id] = sk
	}
	delete(l, kind)
	return l, s
}

// OriginChoiceBonus is the amount granted to each skill picked for an origin.
const OriginChoiceBonus = 2

// ApplyOriginChoices replaces the origin entry with a record granting
// OriginChoiceBonus to each chosen skill. At most allowed distinct skills may be chosen.
//
// Postcondition: on error the returned ledger and skills are nil.
func ApplyOriginChoices(ledger Ledger, skills Skills, originID string, chosen []SkillID, allowed int) (Ledger, Skills, error) {
	if len(chosen) > allowed {
		return nil, nil, fmt.Errorf("%w: origin %q allows %d skills, got %d", ErrInvalidChoice, originID, allowed, len(chosen))
	}
	bonuses := make(map[SkillID]int, len(chosen))
	for _, id := range chosen {
		if !id.Valid() {
			return nil, nil, fmt.Errorf("%w: %q", ErrUnknownSkill, id)
		}
		if _, dup := bonuses[id]; dup {
			return nil, nil, fmt.Errorf("%w: skill %q chosen twice", ErrInvalidChoice, id)
		}
		bonuses[id] = OriginChoiceBonus
	}
	l, s := ApplyBonus(ledger, skills, KindOrigin, BonusRecord{ID: originID, SkillBonuses: bonuses})
	return l, s, nil
}

// ApplyClassChoice applies the single-choice bonus of classID to skill.
// The skill must be one of the class's candidates in rules.
//
// Postcondition: on error the returned ledger and skills are nil.
func ApplyClassChoice(ledger Ledger, skills Skills, rules *Rules, classID string, skill SkillID) (Ledger, Skills, error) {
	choice, ok := rules.classChoice(classID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: class %q has no skill choice", ErrInvalidChoice, classID)
	}
	if !slices.Contains(choice.Skills, skill) {
		return nil, nil, fmt.Errorf("%w: %q is not a choice for class %q", ErrInvalidChoice, skill, classID)
	}
	l, s := ApplyBonus(ledger, skills, KindClassChoice, BonusRecord{
		ID:           string(skill),
		SkillBonuses: map[SkillID]int{skill: choice.Bonus},
	})
	return l, s, nil
}
