package character

import (
	"fmt"
	"slices"
)

// SkillID names a skill in the registry.
type SkillID string

// Skills referenced directly by the derived-stat formulas.
const (
	Reflexes  SkillID = "reflexes"
	Fortitude SkillID = "fortitude"
)

// skillRegistry maps each governing attribute to its skills in display order.
var skillRegistry = []struct {
	attr   AttributeID
	skills []SkillID
}{
	{Strength, []SkillID{"acrobatics", "swords", "brawling", "shields"}},
	{Dexterity, []SkillID{"explosives", "marksmanship", "heavy_firearms", "light_firearms", "bows", "traps", "darts", "piloting", Reflexes, "stealth", "initiative"}},
	{Intellect, []SkillID{"investigation", "technology", "forensics", "genealogy", "sciences", "trickery", "crime", "medicine", "psychology"}},
	{Wisdom, []SkillID{"perception", "reasoning", "deception", "diplomacy", "willpower", "arts", "cooking", "alchemy", "current_affairs", "anthropology", "history", "herbology"}},
	{Magic, []SkillID{"religion", "arcane_knowledge", "conjuration", "enchantment", "illusion", "necromancy", "exorcism", "runes", "demonology", "astrology"}},
	{Constitution, []SkillID{"survival", "athletics", Fortitude}},
	{Charisma, []SkillID{"intimidation", "empathy", "seduction", "smooth_talk"}},
}

var skillIndex = func() map[SkillID]AttributeID {
	idx := make(map[SkillID]AttributeID)
	for _, group := range skillRegistry {
		for _, s := range group.skills {
			if _, dup := idx[s]; dup {
				panic(fmt.Sprintf("character: skill %q registered twice", s))
			}
			idx[s] = group.attr
		}
	}
	return idx
}()

// AllSkills returns every registered skill id in display order.
func AllSkills() []SkillID {
	out := make([]SkillID, 0, len(skillIndex))
	for _, group := range skillRegistry {
		out = append(out, group.skills...)
	}
	return out
}

// SkillsFor returns the skills governed by attr, nil for luck attributes.
func SkillsFor(attr AttributeID) []SkillID {
	for _, group := range skillRegistry {
		if group.attr == attr {
			return slices.Clone(group.skills)
		}
	}
	return nil
}

// GoverningAttribute returns the attribute that drives id's dice pool.
func GoverningAttribute(id SkillID) (AttributeID, bool) {
	attr, ok := skillIndex[id]
	return attr, ok
}

// Valid reports whether id is a registered skill.
func (id SkillID) Valid() bool {
	_, ok := skillIndex[id]
	return ok
}

// Skill holds the independently tracked components of one skill.
type Skill struct {
	Die      int       `json:"die" yaml:"die"`
	Personal int       `json:"personal" yaml:"personal"`
	Origin   int       `json:"origin" yaml:"origin"`
	Class    int       `json:"class" yaml:"class"`
	Race     int       `json:"race" yaml:"race"`
	Bonus    BonusDice `json:"bonus_dice" yaml:"bonus_dice"`
}

// Total returns the skill value at level: every component plus the bonus dice
// whose face is unlocked at level.
func (s Skill) Total(level int) int {
	total := s.Die + s.Personal + s.Origin + s.Class + s.Race
	for _, face := range BonusFaces() {
		if BonusDieUnlocked(face, level) {
			total += s.Bonus.Get(face)
		}
	}
	return total
}

// Skills maps skill ids to their components. Missing keys read as the zero Skill.
type Skills map[SkillID]Skill

// NewSkills returns a map holding every registered skill at zero.
func NewSkills() Skills {
	s := make(Skills, len(skillIndex))
	for id := range skillIndex {
		s[id] = Skill{}
	}
	return s
}

// Clone returns an independent copy of s.
func (s Skills) Clone() Skills {
	out := make(Skills, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Total returns the resolved total of id at level.
func (s Skills) Total(id SkillID, level int) int {
	return s[id].Total(level)
}

// AdjustPersonal returns a copy of skills with delta added to the personal
// component of id. Personal points do not draw from the attribute pool.
//
// Postcondition: on error skills is untouched and the returned map is nil.
func AdjustPersonal(skills Skills, id SkillID, delta int) (Skills, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSkill, id)
	}
	sk := skills[id]
	next := sk.Personal + delta
	if next < MinValue || next > MaxValue {
		return nil, fmt.Errorf("%w: %s personal would become %d", ErrAttributeOutOfRange, id, next)
	}
	out := skills.Clone()
	sk.Personal = next
	out[id] = sk
	return out, nil
}
