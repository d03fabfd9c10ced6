package character

import "slices"

// ProgressionStep names the attribute and multiplier a class uses to grow one stat.
type ProgressionStep struct {
	Attribute  AttributeID `yaml:"attribute" json:"attribute"`
	Multiplier int         `yaml:"multiplier" json:"multiplier"`
}

// ClassProgression is a class's per-stat growth table.
type ClassProgression struct {
	HP     ProgressionStep `yaml:"hp" json:"hp"`
	Mana   ProgressionStep `yaml:"mana" json:"mana"`
	Sanity ProgressionStep `yaml:"sanity" json:"sanity"`
}

// ClassChoice is a class's single-choice skill bonus.
type ClassChoice struct {
	Skills []SkillID `yaml:"skills" json:"skills"`
	Bonus  int       `yaml:"bonus" json:"bonus"`
}

// Rules holds the data-driven tables the engine consults. A nil *Rules behaves
// as empty tables.
type Rules struct {
	Progression      map[string]ClassProgression `yaml:"progression" json:"progression"`
	ClassChoices     map[string]ClassChoice      `yaml:"class_choices" json:"class_choices"`
	SoullessRaces    []string                    `yaml:"soulless_races" json:"soulless_races"`
	ClassSoulPenalty map[string]int              `yaml:"class_soul_penalty" json:"class_soul_penalty"`
}

// ProgressionInterval is the level span that grants one progression step.
const ProgressionInterval = 5

func (r *Rules) progression(classID string, level int, attrs Attributes, pick func(ClassProgression) ProgressionStep) int {
	if r == nil {
		return 0
	}
	p, ok := r.Progression[classID]
	if !ok {
		return 0
	}
	step := pick(p)
	return (level / ProgressionInterval) * attrs.Get(step.Attribute) * step.Multiplier
}

func (r *Rules) classChoice(classID string) (ClassChoice, bool) {
	if r == nil {
		return ClassChoice{}, false
	}
	c, ok := r.ClassChoices[classID]
	return c, ok
}

// ClassChoiceFor returns the single-choice bonus of classID.
func (r *Rules) ClassChoiceFor(classID string) (ClassChoice, bool) {
	return r.classChoice(classID)
}

func (r *Rules) soulless(raceID string) bool {
	return r != nil && slices.Contains(r.SoullessRaces, raceID)
}

func (r *Rules) soulPenalty(classID string) int {
	if r == nil {
		return 0
	}
	return r.ClassSoulPenalty[classID]
}
